package model

import "context"

// ContextManager stores and retrieves the authenticated identity in a
// request context.
type ContextManager interface {
	SetIdentityToContext(ctx context.Context, identity string) context.Context
	GetIdentityFromContext(ctx context.Context) (string, bool)
}
