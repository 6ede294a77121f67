package handlers

import (
	"context"
	"net/http"

	"github.com/fixmate/go_booking/internal/config"
	"github.com/fixmate/go_booking/internal/logger"
	"github.com/google/uuid"
)

// CorrelationMiddleware assigns a correlation ID to every request and
// stores it in the request context for logging and response headers.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)
		w.Header().Set("X-Correlation-ID", correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware validates the shared secret header for mutating routes
type AuthMiddleware struct {
	config *config.Config
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		config: cfg,
	}
}

// Middleware validates the shared secret header if authentication is enabled
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Auth.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		providedSecret := r.Header.Get("X-Shared-Secret")

		if providedSecret == "" {
			logger.Warn(ctx, "Authentication failed: missing X-Shared-Secret header")
			respondError(w, ctx, http.StatusUnauthorized, "missing authentication header")
			return
		}

		if providedSecret != m.config.Auth.SharedSecret {
			logger.Warn(ctx, "Authentication failed: invalid shared secret")
			respondError(w, ctx, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware recovers from panics and returns 500 Internal Server Error
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				ctx := r.Context()
				logger.Error(ctx, "Panic recovered", "panic", rec, "path", r.URL.Path)
				respondError(w, ctx, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
