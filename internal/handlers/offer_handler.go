package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/lawyer-service/internal/models"
	"github.com/senyabanana/lawyer-service/internal/services"
	"github.com/senyabanana/lawyer-service/internal/utils"

	"go.uber.org/zap"
)

// OfferHandler - структура для обработки HTTP-запросов по предложениям.
type OfferHandler struct {
	Service *services.OfferService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewOfferHandler создаёт новый экземпляр OfferHandler.
func NewOfferHandler(service *services.OfferService, logger *zap.Logger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// MakeOffer обрабатывает запросы для создания предложения.
func (h *OfferHandler) MakeOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "make offer", err, "unauthorized")
		return
	}

	var offerReq models.OfferRequest
	if err := utils.DecodeAndValidate(r, offerSchema, &offerReq); err != nil {
		utils.HandleServiceError(w, h.Logger, "make offer", err, "invalid request body")
		return
	}

	offer, err := h.Service.MakeOffer(ctx, callerId, offerReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "make offer", err, "failed to make offer")
		return
	}
	utils.WriteJSON(w, http.StatusOK, offer)
}

// GetSentOffers обрабатывает запросы для получения отправленных предложений.
// Параметр state можно повторять: ?state=waiting&state=accepted.
func (h *OfferHandler) GetSentOffers(w http.ResponseWriter, r *http.Request) {
	h.listOffers(w, r, "list sent offers", h.Service.ListSentOffers)
}

// GetReceivedOffers обрабатывает запросы для получения полученных предложений.
func (h *OfferHandler) GetReceivedOffers(w http.ResponseWriter, r *http.Request) {
	h.listOffers(w, r, "list received offers", h.Service.ListReceivedOffers)
}

type offerLister func(ctx context.Context, providerId string, states []string) ([]models.OfferSummary, error)

func (h *OfferHandler) listOffers(w http.ResponseWriter, r *http.Request, op string, list offerLister) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, op, err, "unauthorized")
		return
	}

	offers, err := list(ctx, callerId, r.URL.Query()["state"])
	if err != nil {
		utils.HandleServiceError(w, h.Logger, op, err, "failed to fetch offers")
		return
	}
	utils.WriteJSON(w, http.StatusOK, offers)
}

// AcceptOffer обрабатывает запросы для принятия предложения.
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	h.answerOffer(w, r, "accept offer", h.Service.AcceptOffer)
}

// RejectOffer обрабатывает запросы для отклонения предложения.
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	h.answerOffer(w, r, "reject offer", h.Service.RejectOffer)
}

type offerAnswer func(ctx context.Context, offerId, callerId string) (*models.Offer, error)

func (h *OfferHandler) answerOffer(w http.ResponseWriter, r *http.Request, op string, answer offerAnswer) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, op, err, "unauthorized")
		return
	}

	offer, err := answer(ctx, r.PathValue("offerId"), callerId)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, op, err, "failed to "+op)
		return
	}
	utils.WriteJSON(w, http.StatusOK, offer)
}

// WithdrawOffer обрабатывает запросы для отзыва предложения его автором.
func (h *OfferHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "withdraw offer", err, "unauthorized")
		return
	}

	if err := h.Service.WithdrawOffer(ctx, r.PathValue("offerId"), callerId); err != nil {
		utils.HandleServiceError(w, h.Logger, "withdraw offer", err, "failed to withdraw offer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
