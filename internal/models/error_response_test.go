package models_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/senyabanana/lawyer-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestErrorResponse_Is(t *testing.T) {
	cases := []struct {
		err    error
		kind   *models.ErrorResponse
		status int
	}{
		{models.NewNotFound("job %s not found", "1"), models.ErrNotFound, http.StatusNotFound},
		{models.NewForbidden("no"), models.ErrForbidden, http.StatusForbidden},
		{models.NewConflict("offer %s is not waiting", "2"), models.ErrConflict, http.StatusConflict},
		{models.NewValidationError("bad"), models.ErrValidation, http.StatusBadRequest},
		{models.NewTransientError("retry"), models.ErrTransient, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("op: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.kind), tc.err.Error())
		assert.False(t, errors.Is(wrapped, models.NewErrorResponse(http.StatusTeapot, "")), tc.err.Error())

		var errorResponse *models.ErrorResponse
		assert.True(t, errors.As(wrapped, &errorResponse))
		assert.Equal(t, tc.status, errorResponse.StatusCode)
	}

	assert.Equal(t, "job 1 not found", models.NewNotFound("job %s not found", "1").Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, models.IsRetryable(fmt.Errorf("tx: %w", models.NewTransientError("deadlock"))))
	assert.False(t, models.IsRetryable(models.NewConflict("busy")))
	assert.False(t, models.IsRetryable(errors.New("boom")))
}
