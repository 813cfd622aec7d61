package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/lawyer-service/internal/models"
)

// PostgresProviderRepository - реализация ProviderRepository для базы данных.
type PostgresProviderRepository struct {
	DB Querier
}

// NewPostgresProviderRepository создаёт новый экземпляр PostgresProviderRepository.
func NewPostgresProviderRepository(db Querier) *PostgresProviderRepository {
	return &PostgresProviderRepository{DB: db}
}

// CreateProvider добавляет юриста.
func (r *PostgresProviderRepository) CreateProvider(ctx context.Context, provider models.Provider) error {
	insertQuery := `INSERT INTO provider (id, name, status, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.DB.Exec(ctx, insertQuery, provider.ID, provider.Name, provider.Status, provider.CreatedAt)
	return err
}

// GetProvider возвращает юриста по ID.
func (r *PostgresProviderRepository) GetProvider(ctx context.Context, providerId string) (*models.Provider, error) {
	return r.getProvider(ctx, `SELECT id, name, status, created_at FROM provider WHERE id = $1`, providerId)
}

// GetProviderForUpdate возвращает юриста и блокирует строку до конца транзакции.
func (r *PostgresProviderRepository) GetProviderForUpdate(ctx context.Context, providerId string) (*models.Provider, error) {
	return r.getProvider(ctx, `SELECT id, name, status, created_at FROM provider WHERE id = $1 FOR UPDATE`, providerId)
}

func (r *PostgresProviderRepository) getProvider(ctx context.Context, query, providerId string) (*models.Provider, error) {
	provider, err := scanProvider(r.DB.QueryRow(ctx, query, providerId))
	if err != nil {
		return nil, notFoundOr(err, "provider %s not found", providerId)
	}
	return provider, nil
}

// SetProviderStatus меняет статус юриста, если текущий статус равен from.
func (r *PostgresProviderRepository) SetProviderStatus(ctx context.Context, providerId string, from, to models.ProviderStatus) error {
	updateQuery := `UPDATE provider SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := r.DB.Exec(ctx, updateQuery, to, providerId, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewConflict("provider %s is not %s", providerId, from)
	}
	return nil
}

// ListAvailableProviders возвращает свободных юристов, кроме excludeId.
func (r *PostgresProviderRepository) ListAvailableProviders(ctx context.Context, excludeId string) ([]models.Provider, error) {
	query := `
		SELECT id, name, status, created_at
		FROM provider
		WHERE status = $1 AND id::text <> $2
		ORDER BY name, id`
	rows, err := r.DB.Query(ctx, query, models.AvailableProvider, excludeId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := make([]models.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}
	return providers, rows.Err()
}

func scanProvider(row rowScanner) (*models.Provider, error) {
	var (
		provider models.Provider
		status   string
	)
	if err := row.Scan(&provider.ID, &provider.Name, &status, &provider.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if provider.Status, err = models.ParseProviderStatus(status); err != nil {
		return nil, fmt.Errorf("provider %s: %w", provider.ID, err)
	}
	return &provider, nil
}
