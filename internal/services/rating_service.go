package services

import (
	"context"
	"strconv"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/repository"

	"go.uber.org/zap"
)

// RatingService - средняя оценка юриста по оценкам коллег.
type RatingService struct {
	Store repository.Store
	notifier
}

// NewRatingService создаёт новый экземпляр RatingService.
func NewRatingService(store repository.Store, publisher events.Publisher, logger *zap.Logger) *RatingService {
	return &RatingService{Store: store, notifier: newNotifier(publisher, logger)}
}

// GiveRating ставит или обновляет оценку fromId для toId и возвращает новый рейтинг toId.
//
// Строка рейтинга toId блокируется до конца транзакции, поэтому
// одновременные оценки пересчитываются по очереди и не теряются.
func (s *RatingService) GiveRating(ctx context.Context, fromId, toId string, req models.RatingRequest) (*models.RatingAggregate, error) {
	fromId, err := validateID("fromProviderId", fromId)
	if err != nil {
		return nil, err
	}
	toId, err = validateID("providerId", toId)
	if err != nil {
		return nil, err
	}
	if !models.ValidRating(req.Rating) {
		return nil, models.NewValidationError("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	if fromId == toId {
		return nil, models.NewValidationError("provider cannot rate themselves")
	}

	var result models.RatingAggregate
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Providers.GetProvider(ctx, fromId); err != nil {
			return err
		}
		aggregate, err := r.Ratings.GetAggregateForUpdate(ctx, toId)
		if err != nil {
			return err
		}
		edge, err := r.Ratings.GetEdge(ctx, fromId, toId)
		if err != nil {
			return err
		}

		var previous *int
		if edge != nil {
			previous = &edge.Rating
		}
		result = aggregate.Apply(previous, req.Rating)

		err = r.Ratings.UpsertEdge(ctx, models.RatingEdge{
			FromProviderID: fromId,
			ToProviderID:   toId,
			Rating:         req.Rating,
			UpdatedAt:      now(),
		})
		if err != nil {
			return err
		}
		return r.Ratings.SaveAggregate(ctx, result)
	})
	if err != nil {
		return nil, s.fail("give rating", err)
	}

	s.notify(ctx, events.RatingGiven, map[string]string{
		"fromProviderId": fromId,
		"toProviderId":   toId,
		"rating":         strconv.Itoa(req.Rating),
	})
	return &result, nil
}

// GetRating возвращает рейтинг юриста.
func (s *RatingService) GetRating(ctx context.Context, providerId string) (*models.RatingAggregate, error) {
	providerId, err := validateID("providerId", providerId)
	if err != nil {
		return nil, err
	}
	aggregate, err := s.Store.Repositories().Ratings.GetAggregate(ctx, providerId)
	if err != nil {
		return nil, s.fail("get rating", err)
	}
	return aggregate, nil
}
