package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	tests := []struct {
		name       string
		err        *AppError
		errType    ErrorType
		status     int
		retryable  bool
		hasCause   bool
	}{
		{"validation", NewValidationError("bad input", map[string]interface{}{"field": "email"}), ErrorTypeValidation, http.StatusBadRequest, false, false},
		{"authentication", NewAuthenticationError("who are you"), ErrorTypeAuthentication, http.StatusUnauthorized, false, false},
		{"authorization", NewAuthorizationError("admins only"), ErrorTypeAuthorization, http.StatusForbidden, false, false},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound, false, false},
		{"precondition", NewPreconditionError("log in first", cause), ErrorTypePrecondition, http.StatusConflict, false, true},
		{"internal", NewInternalError("oops", cause), ErrorTypeInternal, http.StatusInternalServerError, false, true},
		{"external", NewExternalError("upstream", cause), ErrorTypeExternal, http.StatusBadGateway, true, true},
		{"rate limit", NewRateLimitError("slow down"), ErrorTypeRateLimit, http.StatusTooManyRequests, false, false},
		{"unavailable", NewUnavailableError("no db", cause), ErrorTypeUnavailable, http.StatusServiceUnavailable, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
			if tt.hasCause {
				assert.ErrorIs(t, tt.err, cause)
				assert.Contains(t, tt.err.Error(), "connection refused")
			} else {
				assert.Nil(t, tt.err.Unwrap())
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("team not found"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
}
