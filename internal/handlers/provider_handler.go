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

// ProviderHandler - структура для обработки HTTP-запросов по юристам.
type ProviderHandler struct {
	Service *services.ProviderService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewProviderHandler создаёт новый экземпляр ProviderHandler.
func NewProviderHandler(service *services.ProviderService, logger *zap.Logger, timeout time.Duration) *ProviderHandler {
	return &ProviderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// RegisterProvider обрабатывает запросы для регистрации юриста.
func (h *ProviderHandler) RegisterProvider(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var providerReq models.ProviderRequest
	if err := utils.DecodeAndValidate(r, providerSchema, &providerReq); err != nil {
		utils.HandleServiceError(w, h.Logger, "register provider", err, "invalid request body")
		return
	}

	provider, err := h.Service.RegisterProvider(ctx, providerReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "register provider", err, "failed to register provider")
		return
	}
	utils.WriteJSON(w, http.StatusOK, provider)
}

// GetProvider обрабатывает запросы для получения юриста с рейтингом.
func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	profile, err := h.Service.GetProvider(ctx, r.PathValue("providerId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "get provider", err, "failed to get provider")
		return
	}
	utils.WriteJSON(w, http.StatusOK, profile)
}

// ListAvailableProviders обрабатывает запросы для поиска свободных юристов.
func (h *ProviderHandler) ListAvailableProviders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	// Поиск доступен и без авторизации, тогда никто не исключается.
	callerId := r.Header.Get(utils.CallerHeader)

	providers, err := h.Service.ListAvailableProviders(ctx, callerId)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "list available providers", err, "failed to list providers")
		return
	}
	utils.WriteJSON(w, http.StatusOK, providers)
}
