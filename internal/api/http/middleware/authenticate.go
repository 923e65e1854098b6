package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

// TokenService validates access tokens for the middleware.
type TokenService interface {
	ParseAccess(ctx context.Context, accessToken string) (model.TokenClaims, error)
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}

// Authenticate validates bearer tokens and injects the identity into the
// request context. Revoked tokens are rejected even when their signature
// and expiry check out.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new authentication middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

func (m *Authenticate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			m.unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.tokenService.ParseAccess(r.Context(), token)
		if err != nil {
			m.unauthorized(w, "invalid or expired token")
			return
		}

		revoked, err := m.tokenService.IsRevoked(r.Context(), token)
		if err != nil {
			m.logger.Error("failed to check token revocation", "error", err.Error())
			m.unauthorized(w, "invalid or expired token")
			return
		}
		if revoked {
			m.unauthorized(w, "invalid or expired token")
			return
		}

		ctx := m.contextManager.SetIdentityToContext(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Authenticate) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"timestamp": time.Now().UTC(),
		"message":   message,
		"status":    http.StatusUnauthorized,
	})
}
