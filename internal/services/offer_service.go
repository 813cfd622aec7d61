package services

import (
	"context"

	"github.com/senyabanana/lawyer-service/internal/events"
	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OfferService - переговоры по работе: предложение, принятие, отказ.
//
// Все операции блокируют строки в порядке предложение -> работа -> юрист.
type OfferService struct {
	Store repository.Store
	Jobs  *JobService
	notifier
}

// NewOfferService создаёт новый экземпляр OfferService.
func NewOfferService(store repository.Store, jobs *JobService, publisher events.Publisher, logger *zap.Logger) *OfferService {
	return &OfferService{Store: store, Jobs: jobs, notifier: newNotifier(publisher, logger)}
}

// MakeOffer предлагает открытую работу юристу toId от имени её автора.
func (s *OfferService) MakeOffer(ctx context.Context, fromId string, req models.OfferRequest) (*models.Offer, error) {
	fromId, err := validateID("fromProviderId", fromId)
	if err != nil {
		return nil, err
	}
	toId, err := validateID("toProviderId", req.ToProviderID)
	if err != nil {
		return nil, err
	}
	jobId, err := validateID("jobId", req.JobID)
	if err != nil {
		return nil, err
	}
	if fromId == toId {
		return nil, models.NewValidationError("provider cannot make an offer to themselves")
	}

	offer := models.Offer{
		ID:             uuid.NewString(),
		FromProviderID: fromId,
		ToProviderID:   toId,
		JobID:          jobId,
		State:          models.WaitingOffer,
		CreatedAt:      now(),
	}
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		job, err := r.Jobs.GetJobForUpdate(ctx, jobId)
		if err != nil {
			return err
		}
		if job.CreatorID != fromId {
			return models.NewForbidden("provider %s is not the creator of job %s", fromId, jobId)
		}
		if job.State != models.OpenJob {
			return stateConflict("job", jobId, job.State, job.State.IsTerminal())
		}
		if _, err := r.Providers.GetProvider(ctx, toId); err != nil {
			return err
		}

		active, err := r.Offers.HasActiveOffer(ctx, fromId, jobId)
		if err != nil {
			return err
		}
		if active {
			return models.NewConflict("job %s has already been offered", jobId)
		}
		return r.Offers.CreateOffer(ctx, offer)
	})
	if err != nil {
		return nil, s.fail("make offer", err)
	}

	s.notify(ctx, events.OfferMade, offerPayload(offer))
	return &offer, nil
}

// AcceptOffer принимает предложение: работа начинается, получатель становится занятым.
func (s *OfferService) AcceptOffer(ctx context.Context, offerId, callerId string) (*models.Offer, error) {
	offerId, callerId, err := validateOfferCall(offerId, callerId)
	if err != nil {
		return nil, err
	}

	var accepted models.Offer
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		offer, err := s.lockOffer(ctx, r, offerId, callerId, recipientOf, models.AcceptedOffer)
		if err != nil {
			return err
		}

		job, err := r.Jobs.GetJobForUpdate(ctx, offer.JobID)
		if err != nil {
			return err
		}
		if job.State != models.OpenJob {
			return stateConflict("job", job.ID, job.State, job.State.IsTerminal())
		}

		if err := r.Offers.SetOfferState(ctx, offerId, models.WaitingOffer, models.AcceptedOffer); err != nil {
			return err
		}
		if err := s.Jobs.startJob(ctx, r, job, offer.ToProviderID, now()); err != nil {
			return err
		}

		accepted = *offer
		accepted.State = models.AcceptedOffer
		return nil
	})
	if err != nil {
		return nil, s.fail("accept offer", err)
	}

	s.notify(ctx, events.OfferAccepted, offerPayload(accepted))
	return &accepted, nil
}

// RejectOffer отклоняет предложение и переносит его в архив. Работа остаётся открытой.
func (s *OfferService) RejectOffer(ctx context.Context, offerId, callerId string) (*models.Offer, error) {
	offerId, callerId, err := validateOfferCall(offerId, callerId)
	if err != nil {
		return nil, err
	}

	var rejected models.Offer
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		offer, err := s.lockOffer(ctx, r, offerId, callerId, recipientOf, models.RejectedOffer)
		if err != nil {
			return err
		}
		if err := r.Offers.SetOfferState(ctx, offerId, models.WaitingOffer, models.RejectedOffer); err != nil {
			return err
		}
		err = r.Offers.ArchiveRejectedOffer(ctx, models.ArchivedOffer{
			ID:             uuid.NewString(),
			OfferID:        offer.ID,
			FromProviderID: offer.FromProviderID,
			ToProviderID:   offer.ToProviderID,
			JobID:          offer.JobID,
			RejectedAt:     now(),
		})
		if err != nil {
			return err
		}

		rejected = *offer
		rejected.State = models.RejectedOffer
		return nil
	})
	if err != nil {
		return nil, s.fail("reject offer", err)
	}

	s.notify(ctx, events.OfferRejected, offerPayload(rejected))
	return &rejected, nil
}

// WithdrawOffer удаляет ещё не рассмотренное предложение по просьбе его автора.
func (s *OfferService) WithdrawOffer(ctx context.Context, offerId, callerId string) error {
	offerId, callerId, err := validateOfferCall(offerId, callerId)
	if err != nil {
		return err
	}

	var withdrawn models.Offer
	err = s.Store.InTx(ctx, func(r repository.Repositories) error {
		offer, err := s.lockOffer(ctx, r, offerId, callerId, senderOf, "")
		if err != nil {
			return err
		}
		withdrawn = *offer
		return r.Offers.DeleteOffer(ctx, offerId, models.WaitingOffer)
	})
	if err != nil {
		return s.fail("withdraw offer", err)
	}

	s.notify(ctx, events.OfferWithdrawn, offerPayload(withdrawn))
	return nil
}

// ListSentOffers возвращает предложения, отправленные юристом, с фильтром по состояниям.
func (s *OfferService) ListSentOffers(ctx context.Context, fromId string, states []string) ([]models.OfferSummary, error) {
	fromId, err := validateID("fromProviderId", fromId)
	if err != nil {
		return nil, err
	}
	filter, err := parseOfferStates(states)
	if err != nil {
		return nil, err
	}
	offers, err := s.Store.Repositories().Offers.ListSentOffers(ctx, fromId, filter)
	if err != nil {
		return nil, s.fail("list sent offers", err)
	}
	return offers, nil
}

// ListReceivedOffers возвращает предложения, полученные юристом, с фильтром по состояниям.
func (s *OfferService) ListReceivedOffers(ctx context.Context, toId string, states []string) ([]models.OfferSummary, error) {
	toId, err := validateID("toProviderId", toId)
	if err != nil {
		return nil, err
	}
	filter, err := parseOfferStates(states)
	if err != nil {
		return nil, err
	}
	offers, err := s.Store.Repositories().Offers.ListReceivedOffers(ctx, toId, filter)
	if err != nil {
		return nil, s.fail("list received offers", err)
	}
	return offers, nil
}

// party выбирает сторону предложения, которой разрешена операция.
type party func(o *models.Offer) string

func recipientOf(o *models.Offer) string { return o.ToProviderID }
func senderOf(o *models.Offer) string    { return o.FromProviderID }

// lockOffer блокирует предложение и проверяет, что callerId может перевести его в target.
// Пустой target означает удаление: предложение должно быть ещё не рассмотрено.
func (s *OfferService) lockOffer(ctx context.Context, r repository.Repositories, offerId, callerId string, allowed party, target models.OfferState) (*models.Offer, error) {
	offer, err := r.Offers.GetOfferForUpdate(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if allowed(offer) != callerId {
		return nil, models.NewForbidden("provider %s is not allowed to change offer %s", callerId, offerId)
	}
	permitted := !offer.State.IsTerminal()
	if target != "" {
		permitted = offer.State.CanTransitionTo(target)
	}
	if !permitted {
		return nil, stateConflict("offer", offerId, offer.State, offer.State.IsTerminal())
	}
	return offer, nil
}

func validateOfferCall(offerId, callerId string) (string, string, error) {
	offerId, err := validateID("offerId", offerId)
	if err != nil {
		return "", "", err
	}
	callerId, err = validateID("callerId", callerId)
	if err != nil {
		return "", "", err
	}
	return offerId, callerId, nil
}

func parseOfferStates(states []string) ([]models.OfferState, error) {
	parsed := make([]models.OfferState, 0, len(states))
	for _, s := range states {
		state, err := models.ParseOfferState(s)
		if err != nil {
			return nil, models.NewValidationError("%v", err)
		}
		parsed = append(parsed, state)
	}
	return parsed, nil
}

func offerPayload(o models.Offer) map[string]string {
	return map[string]string{
		"offerId":        o.ID,
		"jobId":          o.JobID,
		"fromProviderId": o.FromProviderID,
		"toProviderId":   o.ToProviderID,
		"state":          string(o.State),
	}
}
