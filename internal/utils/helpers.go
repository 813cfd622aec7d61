package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// CallerHeader - заголовок, в котором шлюз передаёт ID авторизованного юриста.
const CallerHeader = "X-Provider-Id"

const maxBodySize = 1 << 20

// retryAfterSeconds - через сколько секунд клиенту стоит повторить запрос после 503.
const retryAfterSeconds = "1"

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	})
}

// WriteJSON отправляет ответ в формате JSON
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Заголовок уже отправлен, клиенту сообщить об ошибке нельзя.
	_ = json.NewEncoder(w).Encode(v)
}

// CallerID возвращает ID юриста, от имени которого выполняется запрос.
func CallerID(r *http.Request) (string, error) {
	callerId := r.Header.Get(CallerHeader)
	if callerId == "" {
		return "", models.NewErrorResponse(http.StatusUnauthorized, "missing "+CallerHeader+" header")
	}
	return callerId, nil
}

// HandleServiceError отправляет клиенту типизированную ошибку сервиса, остальные ошибки скрывает за fallback.
func HandleServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		level := zap.InfoLevel
		if errorResponse.StatusCode >= http.StatusInternalServerError {
			level = zap.WarnLevel
		}
		logger.Log(level, "request failed",
			zap.String("op", op),
			zap.Int("status", errorResponse.StatusCode),
			zap.String("reason", errorResponse.Message))
		if models.IsRetryable(err) {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
		SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	logger.Error("request failed", zap.String("op", op), zap.Error(err))
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// DecodeAndValidate читает тело запроса, проверяет его схемой и раскладывает в dst.
func DecodeAndValidate(r *http.Request, schema *jsonschema.Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return models.NewValidationError("cannot read request body")
	}

	var doc any
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return models.NewValidationError("invalid request body")
	}
	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			leaf := leafCause(validationErr)
			return models.NewValidationError("invalid request body: %s %s", leaf.InstanceLocation, leaf.Message)
		}
		return models.NewValidationError("invalid request body: %v", err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return models.NewValidationError("invalid request body")
	}
	return nil
}

// leafCause возвращает самую глубокую причину ошибки валидации.
func leafCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}
