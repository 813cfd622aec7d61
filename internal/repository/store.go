package repository

import (
	"context"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"
)

// ProviderRepository - интерфейс для работы с юристами.
type ProviderRepository interface {
	CreateProvider(ctx context.Context, provider models.Provider) error
	GetProvider(ctx context.Context, providerId string) (*models.Provider, error)
	GetProviderForUpdate(ctx context.Context, providerId string) (*models.Provider, error)
	SetProviderStatus(ctx context.Context, providerId string, from, to models.ProviderStatus) error
	ListAvailableProviders(ctx context.Context, excludeId string) ([]models.Provider, error)
}

// JobRepository - интерфейс для работы с работами.
type JobRepository interface {
	CreateJob(ctx context.Context, job models.Job) error
	GetJob(ctx context.Context, jobId string) (*models.Job, error)
	GetJobForUpdate(ctx context.Context, jobId string) (*models.Job, error)
	StartJob(ctx context.Context, jobId, providerId string, startedAt time.Time) error
	EndJob(ctx context.Context, jobId string, endedAt time.Time) error
	ListCreatedJobs(ctx context.Context, creatorId string) ([]models.Job, error)
}

// OfferRepository - интерфейс для работы с предложениями.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offer models.Offer) error
	GetOfferForUpdate(ctx context.Context, offerId string) (*models.Offer, error)
	HasActiveOffer(ctx context.Context, fromId, jobId string) (bool, error)
	SetOfferState(ctx context.Context, offerId string, from, to models.OfferState) error
	ArchiveRejectedOffer(ctx context.Context, rejected models.ArchivedOffer) error
	DeleteOffer(ctx context.Context, offerId string, state models.OfferState) error
	ListSentOffers(ctx context.Context, fromId string, states []models.OfferState) ([]models.OfferSummary, error)
	ListReceivedOffers(ctx context.Context, toId string, states []models.OfferState) ([]models.OfferSummary, error)
}

// RatingRepository - интерфейс для работы с оценками.
type RatingRepository interface {
	CreateAggregate(ctx context.Context, providerId string) error
	GetAggregate(ctx context.Context, providerId string) (*models.RatingAggregate, error)
	GetAggregateForUpdate(ctx context.Context, providerId string) (*models.RatingAggregate, error)
	SaveAggregate(ctx context.Context, aggregate models.RatingAggregate) error
	GetEdge(ctx context.Context, fromId, toId string) (*models.RatingEdge, error)
	UpsertEdge(ctx context.Context, edge models.RatingEdge) error
}

// Repositories - набор репозиториев, привязанных к одному соединению или транзакции.
type Repositories struct {
	Providers ProviderRepository
	Jobs      JobRepository
	Offers    OfferRepository
	Ratings   RatingRepository
}

// Store - реестр с транзакционной единицей работы.
//
// InTx выполняет fn в одной транзакции: если fn вернула ошибку, ни одно
// изменение не применяется. Repositories отдаёт репозитории для чтения вне транзакции.
type Store interface {
	InTx(ctx context.Context, fn func(r Repositories) error) error
	Repositories() Repositories
}

// TxConfig - ограничения транзакций.
type TxConfig struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

func (c TxConfig) attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}
