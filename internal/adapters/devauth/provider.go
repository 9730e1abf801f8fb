// Package devauth provides a config-driven AuthProvider for local development.
// It stands in for the OIDC provider so customer sign-in works without an IdP.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/ports"
)

var _ ports.AuthProvider = (*Provider)(nil)

// CallbackPath is where Begin sends the browser.
const CallbackPath = "/auth/oauth/callback"

// Config controls the dev auth provider behavior. Email is required.
type Config struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to our own callback with a locally generated state.
// Exchange ignores the code and returns the configured profile.
type Provider struct {
	profile domainauth.ProviderProfile
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	subject := cfg.Subject
	if subject == "" {
		subject = "dev|" + cfg.Email
	}
	return &Provider{profile: domainauth.ProviderProfile{
		Subject:   subject,
		Email:     cfg.Email,
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
	}}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return CallbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured profile. State is validated by the HTTP handler.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.ProviderProfile, error) {
	if in.Code == "" {
		return domainauth.ProviderProfile{}, errors.New("authorization code is required")
	}
	return p.profile, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
