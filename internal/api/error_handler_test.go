package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/harvestchurch/content-platform/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation keeps reason", fmt.Errorf("title is required: %w", domain.ErrValidation), http.StatusBadRequest, "title is required"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"unauthenticated", fmt.Errorf("token revoked: %w", domain.ErrUnauthenticated), http.StatusUnauthorized, "authentication required"},
		{"forbidden hides detail", fmt.Errorf("post_content in %q: %w", "news", domain.ErrForbidden), http.StatusForbidden, "access forbidden"},
		{"not found", domain.ErrContentNotFound, http.StatusNotFound, "content not found"},
		{"duplicate account", domain.ErrUserExists, http.StatusConflict, "an account with this email already exists"},
		{"pin limit", fmt.Errorf("3 post items already pinned: %w", domain.ErrPinLimitExceeded), http.StatusUnprocessableEntity, "3 post items already pinned; unpin one first"},
		{"pin conflict", domain.ErrPinConflict, http.StatusConflict, domain.ErrPinConflict.Error()},
		{"network", domain.ErrNetwork, http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "slow down"},
		{"unexpected", errors.New("mongo: connection reset by peer"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("expected %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}
