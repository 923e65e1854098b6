package context

import (
	"context"
)

type contextKey string

const identityKey contextKey = "identity"

// Manager stores the authenticated identity in a request context under a
// package-private key.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a child context carrying the identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentityFromContext retrieves the identity set by the authentication
// middleware. The boolean reports whether an identity was present.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey).(string)
	if !ok || identity == "" {
		return "", false
	}
	return identity, true
}
