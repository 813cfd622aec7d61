package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/lib/pq"
)

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB Querier
}

// NewPostgresOfferRepository создает новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db Querier) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

// CreateOffer создает новое предложение.
func (r *PostgresOfferRepository) CreateOffer(ctx context.Context, offer models.Offer) error {
	insertQuery := `INSERT INTO offer (id, from_id, to_id, job_id, state, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		offer.ID,
		offer.FromProviderID,
		offer.ToProviderID,
		offer.JobID,
		offer.State,
		offer.CreatedAt)
	if pgErrorCode(err) == uniqueViolation {
		return models.NewConflict("job %s has already been offered", offer.JobID)
	}
	return err
}

// GetOfferForUpdate возвращает предложение и блокирует строку до конца транзакции.
func (r *PostgresOfferRepository) GetOfferForUpdate(ctx context.Context, offerId string) (*models.Offer, error) {
	query := `SELECT id, from_id, to_id, job_id, state, created_at FROM offer WHERE id = $1 FOR UPDATE`
	var (
		offer models.Offer
		state string
	)
	err := r.DB.QueryRow(ctx, query, offerId).Scan(
		&offer.ID,
		&offer.FromProviderID,
		&offer.ToProviderID,
		&offer.JobID,
		&state,
		&offer.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "offer %s not found", offerId)
	}
	if offer.State, err = models.ParseOfferState(state); err != nil {
		return nil, fmt.Errorf("offer %s: %w", offerId, err)
	}
	return &offer, nil
}

// HasActiveOffer проверяет, есть ли у автора ожидающее или принятое предложение по работе.
func (r *PostgresOfferRepository) HasActiveOffer(ctx context.Context, fromId, jobId string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM offer WHERE from_id = $1 AND job_id = $2 AND state = ANY($3))`
	active := []models.OfferState{models.WaitingOffer, models.AcceptedOffer}
	err := r.DB.QueryRow(ctx, query, fromId, jobId, pq.Array(stateStrings(active))).Scan(&exists)
	return exists, err
}

// SetOfferState меняет состояние предложения, если текущее состояние равно from.
func (r *PostgresOfferRepository) SetOfferState(ctx context.Context, offerId string, from, to models.OfferState) error {
	updateQuery := `UPDATE offer SET state = $1 WHERE id = $2 AND state = $3`
	tag, err := r.DB.Exec(ctx, updateQuery, to, offerId, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewConflict("offer %s is not %s", offerId, from)
	}
	return nil
}

// ArchiveRejectedOffer добавляет запись в архив отклонённых предложений.
func (r *PostgresOfferRepository) ArchiveRejectedOffer(ctx context.Context, rejected models.ArchivedOffer) error {
	insertQuery := `INSERT INTO rejected_offer (id, offer_id, from_id, to_id, job_id, rejected_at)
                   VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		rejected.ID,
		rejected.OfferID,
		rejected.FromProviderID,
		rejected.ToProviderID,
		rejected.JobID,
		rejected.RejectedAt)
	return err
}

// DeleteOffer удаляет предложение, если оно находится в состоянии state.
func (r *PostgresOfferRepository) DeleteOffer(ctx context.Context, offerId string, state models.OfferState) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM offer WHERE id = $1 AND state = $2`, offerId, state)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewConflict("offer %s is not %s", offerId, state)
	}
	return nil
}

// ListSentOffers возвращает предложения, отправленные юристом.
func (r *PostgresOfferRepository) ListSentOffers(ctx context.Context, fromId string, states []models.OfferState) ([]models.OfferSummary, error) {
	return r.listOffers(ctx, "o.from_id", fromId, states)
}

// ListReceivedOffers возвращает предложения, полученные юристом.
func (r *PostgresOfferRepository) ListReceivedOffers(ctx context.Context, toId string, states []models.OfferState) ([]models.OfferSummary, error) {
	return r.listOffers(ctx, "o.to_id", toId, states)
}

func (r *PostgresOfferRepository) listOffers(ctx context.Context, column, providerId string, states []models.OfferState) ([]models.OfferSummary, error) {
	query := fmt.Sprintf(`
		SELECT o.id, o.from_id, o.to_id, o.job_id, o.state, o.created_at, j.description, j.end_date
		FROM offer o
		JOIN job j ON o.job_id = j.id
		WHERE %s = $1`, column)
	args := []interface{}{providerId}

	if len(states) > 0 {
		query += " AND o.state = ANY($2)"
		args = append(args, pq.Array(stateStrings(states)))
	}
	query += " ORDER BY o.created_at, o.id"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]models.OfferSummary, 0)
	for rows.Next() {
		var (
			o     models.OfferSummary
			state string
		)
		if err := rows.Scan(
			&o.ID,
			&o.FromProviderID,
			&o.ToProviderID,
			&o.JobID,
			&state,
			&o.CreatedAt,
			&o.JobDescription,
			&o.JobEndDate); err != nil {
			return nil, err
		}
		if o.State, err = models.ParseOfferState(state); err != nil {
			return nil, fmt.Errorf("offer %s: %w", o.ID, err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func stateStrings(states []models.OfferState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}
