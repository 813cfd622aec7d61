package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Коды SQLSTATE, которые разбираются явно.
const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// Querier - общий интерфейс пула соединений и транзакции.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore - реализация Store для базы данных.
type PostgresStore struct {
	DB  *pgxpool.Pool
	cfg TxConfig
}

// NewPostgresStore создает новый экземпляр PostgresStore.
func NewPostgresStore(db *pgxpool.Pool, cfg TxConfig) *PostgresStore {
	return &PostgresStore{DB: db, cfg: cfg}
}

// Repositories возвращает репозитории, работающие напрямую с пулом.
func (s *PostgresStore) Repositories() Repositories {
	return newPostgresRepositories(s.DB)
}

// InTx выполняет fn в транзакции read committed.
// Сбой сериализации или взаимоблокировка повторяются не более cfg.MaxAttempts раз.
func (s *PostgresStore) InTx(ctx context.Context, fn func(r Repositories) error) error {
	attempts := s.cfg.attempts()
	for attempt := 1; ; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableStoreError(err) {
			return mapStoreError(err)
		}
		if attempt == attempts {
			return models.NewTransientError("transaction aborted after %d attempts: %v", attempts, err)
		}

		select {
		case <-ctx.Done():
			return mapStoreError(ctx.Err())
		case <-time.After(s.cfg.Backoff * time.Duration(attempt)):
		}
	}
}

func (s *PostgresStore) runTx(ctx context.Context, fn func(r Repositories) error) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// После Commit откат ничего не делает.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(newPostgresRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newPostgresRepositories(db Querier) Repositories {
	return Repositories{
		Providers: NewPostgresProviderRepository(db),
		Jobs:      NewPostgresJobRepository(db),
		Offers:    NewPostgresOfferRepository(db),
		Ratings:   NewPostgresRatingRepository(db),
	}
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryableStoreError(err error) bool {
	switch pgErrorCode(err) {
	case serializationFailure, deadlockDetected:
		return true
	}
	return false
}

// mapStoreError переводит ошибки хранилища в типизированные ошибки модели.
func mapStoreError(err error) error {
	var errorResponse *models.ErrorResponse
	switch {
	case err == nil:
		return nil
	case errors.As(err, &errorResponse):
		return errorResponse
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewTransientError("transaction timed out")
	}

	switch pgErrorCode(err) {
	case uniqueViolation:
		return models.NewConflict("record already exists")
	case foreignKeyViolation:
		return models.NewNotFound("referenced record not found")
	}
	return fmt.Errorf("store: %w", err)
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFound(format, args...)
	}
	return err
}
