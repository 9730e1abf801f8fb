package httpx

import (
	"context"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
type identityKey struct{}

// WithIdentity returns a child context carrying the resolved caller.
// If id is nil, the original ctx is returned unchanged.
func WithIdentity(ctx context.Context, id *domainauth.Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller resolved by the Identity middleware, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *domainauth.Identity {
	if id, ok := ctx.Value(identityKey{}).(*domainauth.Identity); ok {
		return id
	}
	return nil
}
