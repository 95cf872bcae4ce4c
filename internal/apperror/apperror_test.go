package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
	}{
		{"bad request", BadRequest("name is required"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("Unauthorized"), http.StatusUnauthorized},
		{"not found", NotFound("%s not found", "video"), http.StatusNotFound},
		{"conflict", Conflict("taken"), http.StatusConflict},
		{"too many", TooManyRequests("slow down"), http.StatusTooManyRequests},
		{"internal", Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.status, StatusCode(tt.err))
		})
	}

	assert.Equal(t, "video not found", NotFound("%s not found", "video").Message)
}

func TestInternalKeepsMessageAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Error creating the playlist", cause)

	assert.Equal(t, "Error creating the playlist", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Conflict("username taken"))

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("plain")))
}
