package httpx

import (
	"context"

	domainauth "github.com/target/dash-console/internal/domain/auth"
)

// Unexported context key types avoid collisions across packages.
type (
	userKey      struct{}
	requestIDKey struct{}
)

// SetUserInContext returns a child context that carries the given user.
// If user is nil, the original ctx is returned unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.CurrentUser) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user attached by RequireAuth and a boolean indicating presence.
func UserFromContext(ctx context.Context) (*domainauth.CurrentUser, bool) {
	if u, ok := ctx.Value(userKey{}).(*domainauth.CurrentUser); ok && u != nil {
		return u, true
	}
	return nil, false
}

// SetRequestIDInContext returns a child context carrying the request ID.
func SetRequestIDInContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
