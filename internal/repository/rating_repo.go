package repository

import (
	"context"
	"errors"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/jackc/pgx/v5"
)

// PostgresRatingRepository - реализация RatingRepository для базы данных.
type PostgresRatingRepository struct {
	DB Querier
}

// NewPostgresRatingRepository создает новый экземпляр PostgresRatingRepository.
func NewPostgresRatingRepository(db Querier) *PostgresRatingRepository {
	return &PostgresRatingRepository{DB: db}
}

// CreateAggregate заводит пустой рейтинг юриста.
func (r *PostgresRatingRepository) CreateAggregate(ctx context.Context, providerId string) error {
	insertQuery := `INSERT INTO rating_aggregate (provider_id, star_rating, rating_num) VALUES ($1, 0, 0)`
	_, err := r.DB.Exec(ctx, insertQuery, providerId)
	return err
}

// GetAggregate возвращает рейтинг юриста.
func (r *PostgresRatingRepository) GetAggregate(ctx context.Context, providerId string) (*models.RatingAggregate, error) {
	return r.getAggregate(ctx, `SELECT provider_id, star_rating, rating_num FROM rating_aggregate WHERE provider_id = $1`, providerId)
}

// GetAggregateForUpdate возвращает рейтинг юриста и блокирует строку до конца транзакции.
// Все пересчёты рейтинга одного юриста выполняются строго по очереди.
func (r *PostgresRatingRepository) GetAggregateForUpdate(ctx context.Context, providerId string) (*models.RatingAggregate, error) {
	return r.getAggregate(ctx, `SELECT provider_id, star_rating, rating_num FROM rating_aggregate WHERE provider_id = $1 FOR UPDATE`, providerId)
}

func (r *PostgresRatingRepository) getAggregate(ctx context.Context, query, providerId string) (*models.RatingAggregate, error) {
	var aggregate models.RatingAggregate
	err := r.DB.QueryRow(ctx, query, providerId).Scan(
		&aggregate.ProviderID,
		&aggregate.StarRating,
		&aggregate.RatingNum)
	if err != nil {
		return nil, notFoundOr(err, "rating of provider %s not found", providerId)
	}
	return &aggregate, nil
}

// SaveAggregate записывает пересчитанный рейтинг.
func (r *PostgresRatingRepository) SaveAggregate(ctx context.Context, aggregate models.RatingAggregate) error {
	updateQuery := `UPDATE rating_aggregate SET star_rating = $1, rating_num = $2 WHERE provider_id = $3`
	tag, err := r.DB.Exec(ctx, updateQuery, aggregate.StarRating, aggregate.RatingNum, aggregate.ProviderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFound("rating of provider %s not found", aggregate.ProviderID)
	}
	return nil
}

// GetEdge возвращает оценку fromId для toId, nil если оценки ещё нет.
func (r *PostgresRatingRepository) GetEdge(ctx context.Context, fromId, toId string) (*models.RatingEdge, error) {
	var edge models.RatingEdge
	query := `SELECT from_id, to_id, rating, updated_at FROM rating_edge WHERE from_id = $1 AND to_id = $2`
	err := r.DB.QueryRow(ctx, query, fromId, toId).Scan(
		&edge.FromProviderID,
		&edge.ToProviderID,
		&edge.Rating,
		&edge.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// UpsertEdge добавляет оценку или заменяет прежнюю оценку того же автора.
func (r *PostgresRatingRepository) UpsertEdge(ctx context.Context, edge models.RatingEdge) error {
	upsertQuery := `
		INSERT INTO rating_edge (from_id, to_id, rating, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_id, to_id) DO UPDATE SET rating = EXCLUDED.rating, updated_at = EXCLUDED.updated_at`
	_, err := r.DB.Exec(ctx, upsertQuery, edge.FromProviderID, edge.ToProviderID, edge.Rating, edge.UpdatedAt)
	return err
}
