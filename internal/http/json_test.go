package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/target/dash-console/internal/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errCode string
	}{
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest, "validation_failed"},
		{"wrapped not found", fmt.Errorf("x: %w", apperrors.NotFoundf("slot %q", "main")), http.StatusNotFound, "not_found"},
		{"unauthorized", apperrors.Unauthorized("no"), http.StatusUnauthorized, "unauthorized"},
		{"already authenticated", &apperrors.AppError{Code: apperrors.ErrCodeAlreadyAuthenticated}, http.StatusConflict, "already_authenticated"},
		{"conflict", apperrors.Conflict("busy"), http.StatusConflict, "conflict"},
		{"decryption", apperrors.Wrap(errors.New("pad"), apperrors.ErrCodeDecryption, "decrypt"), http.StatusBadGateway, "decryption_failed"},
		{"remote 4xx", apperrors.Remote(http.StatusForbidden, "nope"), http.StatusForbidden, "remote_rejected"},
		{"remote 5xx", apperrors.Remote(http.StatusInternalServerError, "down"), http.StatusBadGateway, "remote_failed"},
		{"canceled", context.Canceled, http.StatusRequestTimeout, "canceled"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.errCode, code)
		})
	}
}
