// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an external identity provider.
// It only proves who the person is; roles are never taken from the provider.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the provider profile.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.ProviderProfile, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionSigner issues and verifies stateless session tokens.
type SessionSigner interface {
	// Issue signs a token for identity and returns it with its expiry.
	Issue(identity domainauth.Identity) (token string, expiresAt time.Time, err error)
	// Verify returns the identity carried by a valid, unexpired token.
	Verify(token string) (*domainauth.Identity, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}
