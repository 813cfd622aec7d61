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

// JobHandler - структура для обработки HTTP-запросов по работам.
type JobHandler struct {
	Service *services.JobService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewJobHandler создаёт новый экземпляр JobHandler.
func NewJobHandler(service *services.JobService, logger *zap.Logger, timeout time.Duration) *JobHandler {
	return &JobHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateJob обрабатывает запросы для создания работы.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "create job", err, "unauthorized")
		return
	}

	var jobReq models.JobRequest
	if err := utils.DecodeAndValidate(r, jobSchema, &jobReq); err != nil {
		utils.HandleServiceError(w, h.Logger, "create job", err, "invalid request body")
		return
	}

	job, err := h.Service.CreateJob(ctx, callerId, jobReq)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "create job", err, "failed to create job")
		return
	}
	utils.WriteJSON(w, http.StatusOK, job)
}

// GetUserJobs обрабатывает запросы для получения работ, созданных пользователем.
func (h *JobHandler) GetUserJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "list created jobs", err, "unauthorized")
		return
	}

	jobs, err := h.Service.ListCreatedJobs(ctx, callerId)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "list created jobs", err, "failed to fetch jobs")
		return
	}
	utils.WriteJSON(w, http.StatusOK, jobs)
}

// GetJob обрабатывает запросы для получения работы по ID.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	job, err := h.Service.GetJobById(ctx, r.PathValue("jobId"))
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "get job", err, "failed to get job")
		return
	}
	utils.WriteJSON(w, http.StatusOK, job)
}

// EndJob обрабатывает запросы для завершения работы.
func (h *JobHandler) EndJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	callerId, err := utils.CallerID(r)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "end job", err, "unauthorized")
		return
	}

	job, err := h.Service.EndJob(ctx, r.PathValue("jobId"), callerId)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, "end job", err, "failed to end job")
		return
	}
	utils.WriteJSON(w, http.StatusOK, job)
}
