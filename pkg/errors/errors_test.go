package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"not found", NotFound("doctor", nil), http.StatusNotFound},
		{"invalid date", InvalidDate("2024-13-99", nil), http.StatusBadRequest},
		{"validation", Validation(nil), http.StatusBadRequest},
		{"slot conflict", SlotConflict(nil), http.StatusConflict},
		{"timeout", Timeout("booking submit", nil), http.StatusGatewayTimeout},
		{"indeterminate", Indeterminate("booking submit", nil), http.StatusAccepted},
		{"storage", Storage(nil), http.StatusInternalServerError},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
		{"bad request", BadRequest("nope", nil), http.StatusBadRequest},
		{"internal", Internal(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}
}

func TestIs(t *testing.T) {
	err := SlotConflict(nil)
	assert.True(t, Is(err, ErrSlotConflict))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), ErrSlotConflict))
	assert.False(t, Is(nil, ErrSlotConflict))
}

func TestIsWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("booking", nil))
	assert.True(t, Is(err, ErrNotFound))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, ErrNotFound, appErr.Code)
}

func TestValidationErrorMessage(t *testing.T) {
	err := Validation([]FieldError{
		{Field: "patient_email", Message: "must be a valid email address"},
		{Field: "reason", Message: "is required"},
	})

	msg := err.Error()
	assert.Contains(t, msg, "patient_email: must be a valid email address")
	assert.Contains(t, msg, "reason: is required")
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Storage(cause)
	assert.Equal(t, cause, err.Unwrap())
}
