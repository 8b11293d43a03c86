package auth

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("admin capability required")
)

// Identity is the authenticated actor attached to a request.
type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

type contextKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by the session middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
