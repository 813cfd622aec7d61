package services

import (
	"context"
	"strings"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxProviderNameLen = 100

// ProviderService - регистрация и поиск юристов.
type ProviderService struct {
	Store repository.Store
	notifier
}

// NewProviderService создаёт новый экземпляр ProviderService.
func NewProviderService(store repository.Store, publisher events.Publisher, logger *zap.Logger) *ProviderService {
	return &ProviderService{Store: store, notifier: newNotifier(publisher, logger)}
}

// RegisterProvider создаёт свободного юриста и его пустой рейтинг.
func (s *ProviderService) RegisterProvider(ctx context.Context, req models.ProviderRequest) (*models.Provider, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("provider name is required")
	}
	if len([]rune(name)) > maxProviderNameLen {
		return nil, models.NewValidationError("provider name is longer than %d characters", maxProviderNameLen)
	}

	provider := models.Provider{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    models.AvailableProvider,
		CreatedAt: now(),
	}
	err := s.Store.InTx(ctx, func(r repository.Repositories) error {
		if err := r.Providers.CreateProvider(ctx, provider); err != nil {
			return err
		}
		return r.Ratings.CreateAggregate(ctx, provider.ID)
	})
	if err != nil {
		return nil, s.fail("register provider", err)
	}

	s.notify(ctx, events.ProviderRegistered, map[string]string{"providerId": provider.ID, "name": provider.Name})
	return &provider, nil
}

// GetProvider возвращает юриста вместе с рейтингом.
func (s *ProviderService) GetProvider(ctx context.Context, providerId string) (*models.ProviderProfile, error) {
	providerId, err := validateID("providerId", providerId)
	if err != nil {
		return nil, err
	}

	r := s.Store.Repositories()
	provider, err := r.Providers.GetProvider(ctx, providerId)
	if err != nil {
		return nil, s.fail("get provider", err)
	}
	aggregate, err := r.Ratings.GetAggregate(ctx, providerId)
	if err != nil {
		return nil, s.fail("get provider rating", err)
	}
	return &models.ProviderProfile{
		Provider:   *provider,
		StarRating: aggregate.StarRating,
		RatingNum:  aggregate.RatingNum,
	}, nil
}

// ListAvailableProviders возвращает свободных юристов, кроме того, кто ищет.
//
// Пустой searcherId допустим: тогда возвращаются все свободные юристы.
func (s *ProviderService) ListAvailableProviders(ctx context.Context, searcherId string) ([]models.Provider, error) {
	if searcherId != "" {
		id, err := validateID("searcherId", searcherId)
		if err != nil {
			return nil, err
		}
		searcherId = id
	}
	providers, err := s.Store.Repositories().Providers.ListAvailableProviders(ctx, searcherId)
	if err != nil {
		return nil, s.fail("list available providers", err)
	}
	return providers, nil
}

// validateID проверяет, что идентификатор является UUID, и приводит его к каноническому виду.
func validateID(field, id string) (string, error) {
	if id == "" {
		return "", models.NewValidationError("%s is required", field)
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", models.NewValidationError("%s must be a UUID", field)
	}
	return u.String(), nil
}
