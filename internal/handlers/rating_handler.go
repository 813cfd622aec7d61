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

// RatingHandler - структура для обработки HTTP-запросов по оценкам.
type RatingHandler struct {
	Service *services.RatingService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewRatingHandler создаёт новый экземпляр RatingHandler.
func NewRatingHandler(service *services.RatingService, logger *zap.Logger, timeout time.Duration) *RatingHandler {
	return &RatingHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GiveRating обрабатывает запросы для выставления оценки юристу.
func (h *RatingHandler) GiveRating(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "give rating", err, "unauthorized")
		return
	}

	var ratingReq models.RatingRequest
	if err := utils.DecodeAndValidate(r, ratingSchema, &ratingReq); err != nil {
		utils.HandleServiceError(w, h.Logger, "give rating", err, "invalid request body")
		return
	}

	aggregate, err := h.Service.GiveRating(ctx, callerId, r.PathValue("providerId"), ratingReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "give rating", err, "failed to give rating")
		return
	}
	utils.WriteJSON(w, http.StatusOK, aggregate)
}

// GetRating обрабатывает запросы для получения рейтинга юриста.
func (h *RatingHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	aggregate, err := h.Service.GetRating(ctx, r.PathValue("providerId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "get rating", err, "failed to get rating")
		return
	}
	utils.WriteJSON(w, http.StatusOK, aggregate)
}
