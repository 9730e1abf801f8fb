// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.SessionSigner  = (*StaticSigner)(nil)
	_ ports.PasswordHasher = (*PlainHasher)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.ProviderProfile, error)

	// Deterministic values for predictable testing
	AuthURL        string
	StatePrefix    string
	NoncePrefix    string
	DefaultProfile domainauth.ProviderProfile

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultProfile: domainauth.ProviderProfile{
			Subject:   "mock-subject-1",
			Email:     "mock.owner@example.com",
			FirstName: "Mock",
			LastName:  "Owner",
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.ProviderProfile, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	if in.Code == "" {
		return domainauth.ProviderProfile{}, errors.New("authorization code is required")
	}
	profile := m.DefaultProfile
	if profile.Email == "" {
		profile = NewMockAuthProvider().DefaultProfile
	}
	return profile, nil
}

// StaticSigner is a SessionSigner that encodes identities as plain JSON with a fixed clock.
// Tokens are not signed; it exists so handler tests can mint sessions without a secret.
type StaticSigner struct {
	Now func() time.Time
}

const staticPrefix = "static."

type staticToken struct {
	Identity  domainauth.Identity `json:"identity"`
	ExpiresAt time.Time           `json:"expires_at"`
}

func (s *StaticSigner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *StaticSigner) Issue(identity domainauth.Identity) (string, time.Time, error) {
	if err := identity.Validate(); err != nil {
		return "", time.Time{}, err
	}
	exp := s.now().Add(domainauth.SessionTTL)
	raw, err := json.Marshal(staticToken{Identity: identity, ExpiresAt: exp})
	if err != nil {
		return "", time.Time{}, err
	}
	return staticPrefix + string(raw), exp, nil
}

func (s *StaticSigner) Verify(token string) (*domainauth.Identity, error) {
	body, ok := strings.CutPrefix(token, staticPrefix)
	if !ok {
		return nil, ErrInvalidToken
	}
	var tok staticToken
	if err := json.Unmarshal([]byte(body), &tok); err != nil {
		return nil, ErrInvalidToken
	}
	if !s.now().Before(tok.ExpiresAt) {
		return nil, ErrInvalidToken
	}
	if err := tok.Identity.Validate(); err != nil {
		return nil, ErrInvalidToken
	}
	return &tok.Identity, nil
}

// ErrInvalidToken is returned by StaticSigner for tokens it cannot accept.
var ErrInvalidToken = errors.New("invalid token")

// PlainHasher "hashes" by prefixing, keeping tests fast and readable.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	return "plain:" + password, nil
}

func (PlainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return ErrMismatch
	}
	return nil
}

// ErrMismatch is returned by PlainHasher when the password does not match.
var ErrMismatch = errors.New("password mismatch")
