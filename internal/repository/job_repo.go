package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"
)

const jobColumns = `id, creator_id, assigned_provider_id, description, end_date, start_date, state, created_at`

// PostgresJobRepository - реализация JobRepository для базы данных.
type PostgresJobRepository struct {
	DB Querier
}

// NewPostgresJobRepository создаёт новый экземпляр PostgresJobRepository.
func NewPostgresJobRepository(db Querier) *PostgresJobRepository {
	return &PostgresJobRepository{DB: db}
}

// CreateJob создает новую работу.
func (r *PostgresJobRepository) CreateJob(ctx context.Context, job models.Job) error {
	insertQuery := `INSERT INTO job (` + jobColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		job.ID,
		job.CreatorID,
		job.AssignedProviderID,
		job.Description,
		job.EndDate,
		job.StartDate,
		job.State,
		job.CreatedAt)
	return err
}

// GetJob возвращает работу по ID.
func (r *PostgresJobRepository) GetJob(ctx context.Context, jobId string) (*models.Job, error) {
	return r.getJob(ctx, `SELECT `+jobColumns+` FROM job WHERE id = $1`, jobId)
}

// GetJobForUpdate возвращает работу и блокирует строку до конца транзакции.
func (r *PostgresJobRepository) GetJobForUpdate(ctx context.Context, jobId string) (*models.Job, error) {
	return r.getJob(ctx, `SELECT `+jobColumns+` FROM job WHERE id = $1 FOR UPDATE`, jobId)
}

func (r *PostgresJobRepository) getJob(ctx context.Context, query, jobId string) (*models.Job, error) {
	job, err := scanJob(r.DB.QueryRow(ctx, query, jobId))
	if err != nil {
		return nil, notFoundOr(err, "job %s not found", jobId)
	}
	return job, nil
}

// StartJob назначает исполнителя и переводит работу из open в started.
func (r *PostgresJobRepository) StartJob(ctx context.Context, jobId, providerId string, startedAt time.Time) error {
	updateQuery := `
		UPDATE job SET assigned_provider_id = $1, start_date = $2, state = $3
		WHERE id = $4 AND state = $5`
	tag, err := r.DB.Exec(ctx, updateQuery, providerId, startedAt, models.StartedJob, jobId, models.OpenJob)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewConflict("job %s is not open", jobId)
	}
	return nil
}

// EndJob переводит работу из started в ended.
func (r *PostgresJobRepository) EndJob(ctx context.Context, jobId string, endedAt time.Time) error {
	updateQuery := `UPDATE job SET end_date = $1, state = $2 WHERE id = $3 AND state = $4`
	tag, err := r.DB.Exec(ctx, updateQuery, endedAt, models.EndedJob, jobId, models.StartedJob)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewConflict("job %s is not started", jobId)
	}
	return nil
}

// ListCreatedJobs возвращает работы, созданные юристом.
func (r *PostgresJobRepository) ListCreatedJobs(ctx context.Context, creatorId string) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE creator_id = $1 ORDER BY created_at, id`
	rows, err := r.DB.Query(ctx, query, creatorId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob читает строку работы. Неизвестное состояние в базе считается ошибкой данных.
func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job   models.Job
		state string
	)
	if err := row.Scan(
		&job.ID,
		&job.CreatorID,
		&job.AssignedProviderID,
		&job.Description,
		&job.EndDate,
		&job.StartDate,
		&state,
		&job.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if job.State, err = models.ParseJobState(state); err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}
	return &job, nil
}
