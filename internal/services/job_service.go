package services

import (
	"context"
	"strings"
	"time"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Допустимые форматы даты окончания работы.
var endDateLayouts = []string{time.RFC3339, time.DateOnly}

// JobService - жизненный цикл работы: open -> started -> ended.
type JobService struct {
	Store  repository.Store
	Policy models.EndJobPolicy
	notifier
}

// NewJobService создаёт новый экземпляр JobService.
func NewJobService(store repository.Store, policy models.EndJobPolicy, publisher events.Publisher, logger *zap.Logger) *JobService {
	if policy == "" {
		policy = models.EndByAssignee
	}
	return &JobService{Store: store, Policy: policy, notifier: newNotifier(publisher, logger)}
}

// CreateJob создаёт открытую работу от имени creatorId.
func (s *JobService) CreateJob(ctx context.Context, creatorId string, req models.JobRequest) (*models.Job, error) {
	creatorId, err := validateID("creatorId", creatorId)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, models.NewValidationError("job description is required")
	}
	endDate, err := parseEndDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	job := models.Job{
		ID:          uuid.NewString(),
		CreatorID:   creatorId,
		Description: description,
		EndDate:     endDate,
		State:       models.OpenJob,
		CreatedAt:   now(),
	}
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Providers.GetProvider(ctx, creatorId); err != nil {
			return err
		}
		return r.Jobs.CreateJob(ctx, job)
	})
	if err != nil {
		return nil, s.fail("create job", err)
	}

	s.notify(ctx, events.JobCreated, map[string]string{"jobId": job.ID, "creatorId": creatorId})
	return &job, nil
}

// GetJobById возвращает работу по ID.
func (s *JobService) GetJobById(ctx context.Context, jobId string) (*models.Job, error) {
	jobId, err := validateID("jobId", jobId)
	if err != nil {
		return nil, err
	}
	job, err := s.Store.Repositories().Jobs.GetJob(ctx, jobId)
	if err != nil {
		return nil, s.fail("get job", err)
	}
	return job, nil
}

// ListCreatedJobs возвращает работы, созданные юристом.
func (s *JobService) ListCreatedJobs(ctx context.Context, creatorId string) ([]models.Job, error) {
	creatorId, err := validateID("creatorId", creatorId)
	if err != nil {
		return nil, err
	}
	jobs, err := s.Store.Repositories().Jobs.ListCreatedJobs(ctx, creatorId)
	if err != nil {
		return nil, s.fail("list created jobs", err)
	}
	return jobs, nil
}

// EndJob завершает начатую работу и освобождает исполнителя.
func (s *JobService) EndJob(ctx context.Context, jobId, callerId string) (*models.Job, error) {
	jobId, err := validateID("jobId", jobId)
	if err != nil {
		return nil, err
	}
	callerId, err = validateID("callerId", callerId)
	if err != nil {
		return nil, err
	}

	var ended models.Job
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		job, err := r.Jobs.GetJobForUpdate(ctx, jobId)
		if err != nil {
			return err
		}
		if job.State == models.OpenJob {
			return models.NewConflict("job %s has not been started", jobId)
		}
		if !job.CanBeEndedBy(callerId, s.Policy) {
			return models.NewForbidden("provider %s is not allowed to end job %s", callerId, jobId)
		}
		if !job.State.CanTransitionTo(models.EndedJob) {
			return stateConflict("job", jobId, job.State, job.State.IsTerminal())
		}

		endedAt := now()
		if err := r.Jobs.EndJob(ctx, jobId, endedAt); err != nil {
			return err
		}
		if err := r.Providers.SetProviderStatus(ctx, *job.AssignedProviderID, models.ReservedProvider, models.AvailableProvider); err != nil {
			return err
		}

		ended = *job
		ended.State = models.EndedJob
		ended.EndDate = endedAt
		return nil
	})
	if err != nil {
		return nil, s.fail("end job", err)
	}

	s.notify(ctx, events.JobEnded, map[string]string{
		"jobId":      ended.ID,
		"creatorId":  ended.CreatorID,
		"providerId": *ended.AssignedProviderID,
	})
	return &ended, nil
}

// startJob назначает исполнителя и резервирует его. Вызывается внутри транзакции принятия предложения.
func (s *JobService) startJob(ctx context.Context, r repository.Repositories, job *models.Job, providerId string, startedAt time.Time) error {
	if !job.State.CanTransitionTo(models.StartedJob) {
		return stateConflict("job", job.ID, job.State, job.State.IsTerminal())
	}

	provider, err := r.Providers.GetProviderForUpdate(ctx, providerId)
	if err != nil {
		return err
	}
	if !provider.Status.CanTransitionTo(models.ReservedProvider) {
		return models.NewConflict("provider %s is already reserved", providerId)
	}

	if err := r.Jobs.StartJob(ctx, job.ID, providerId, startedAt); err != nil {
		return err
	}
	return r.Providers.SetProviderStatus(ctx, providerId, models.AvailableProvider, models.ReservedProvider)
}

// stateConflict описывает попытку перехода из состояния, где он запрещён.
func stateConflict[S ~string](kind, id string, state S, terminal bool) error {
	if terminal {
		return models.NewConflict("%s %s is already %s and can no longer change", kind, id, state)
	}
	return models.NewConflict("%s %s is already %s", kind, id, state)
}

func parseEndDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, models.NewValidationError("job end date is required")
	}
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, models.NewValidationError("invalid end date %q, expected RFC 3339 or YYYY-MM-DD", value)
}
