package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int    `json:"-"`
	Message    string `json:"reason"`
}

// Базовые виды ошибок. Сравнение через errors.Is идёт по коду ответа.
var (
	ErrNotFound   = NewErrorResponse(http.StatusNotFound, "not found")
	ErrForbidden  = NewErrorResponse(http.StatusForbidden, "forbidden")
	ErrConflict   = NewErrorResponse(http.StatusConflict, "conflict")
	ErrValidation = NewErrorResponse(http.StatusBadRequest, "validation failed")
	ErrTransient  = NewErrorResponse(http.StatusServiceUnavailable, "temporarily unavailable")
)

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// NewNotFound - запись (работа, предложение, юрист) не найдена.
func NewNotFound(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// NewForbidden - у вызывающего нет нужного отношения к записи.
func NewForbidden(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, fmt.Sprintf(format, args...))
}

// NewConflict - нарушено предусловие машины состояний.
func NewConflict(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, fmt.Sprintf(format, args...))
}

// NewValidationError - некорректные входные данные.
func NewValidationError(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// NewTransientError - хранилище прервало транзакцию, запрос можно повторить.
func NewTransientError(format string, args ...any) *ErrorResponse {
	return NewErrorResponse(http.StatusServiceUnavailable, fmt.Sprintf(format, args...))
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

// Is сравнивает ошибки по коду ответа.
func (e *ErrorResponse) Is(target error) bool {
	t, ok := target.(*ErrorResponse)
	return ok && t.StatusCode == e.StatusCode
}

// IsRetryable сообщает, можно ли повторить запрос, завершившийся ошибкой err.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
