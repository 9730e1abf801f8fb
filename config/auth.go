package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AuthMode selects the external sign-in collaborator.
type AuthMode string

const (
	// AuthModePassword allows email and password sign-in only.
	AuthModePassword AuthMode = "password"
	// AuthModeOAuth adds OIDC customer sign-in.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock adds a local provider that signs in a fixed profile (development only).
	AuthModeMock AuthMode = "mock"
)

// DevSessionSecret signs sessions in dev mode when AUTH_SESSION_SECRET is unset.
const DevSessionSecret = "vetdesk-dev-session-secret"

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "token"

// ErrSessionSecretRequired is returned outside dev mode when no signing secret is configured.
var ErrSessionSecretRequired = errors.New("AUTH_SESSION_SECRET is required")

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch AuthMode(v) {
	case AuthModePassword, AuthModeOAuth, AuthModeMock:
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oauth, mock)", v)
	}
}

// OAuthConfig contains OIDC settings for customer sign-in.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/oauth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

func (o OAuthConfig) validate() error {
	var missing []string
	if o.ClientID == "" {
		missing = append(missing, "AUTH_OAUTH_CLIENT_ID")
	}
	if o.ClientSecret == "" {
		missing = append(missing, "AUTH_OAUTH_CLIENT_SECRET")
	}
	if o.DiscoveryURL == "" {
		missing = append(missing, "AUTH_OAUTH_DISCOVERY_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("oauth mode requires %s", strings.Join(missing, ", "))
	}
	return nil
}

// DevAuthConfig is the profile returned by the mock provider.
type DevAuthConfig struct {
	Subject   string `env:"SUBJECT"`
	Email     string `env:"EMAIL"      envDefault:"owner@example.com"`
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string `env:"LAST_NAME"  envDefault:"Owner"`
}

// AuthConfig groups session, password and sign-in settings.
type AuthConfig struct {
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// SessionSecret signs session tokens (HS256).
	SessionSecret string `env:"AUTH_SESSION_SECRET"`
	CookieName    string `env:"AUTH_COOKIE_NAME"    envDefault:"token"`
	// SecureCookies forces the Secure attribute even on plain HTTP requests.
	SecureCookies bool `env:"AUTH_SECURE_COOKIES" envDefault:"false"`
	BcryptCost    int  `env:"AUTH_BCRYPT_COST"    envDefault:"12"`

	OAuth   OAuthConfig   `envPrefix:"AUTH_OAUTH_"`
	DevAuth DevAuthConfig `envPrefix:"AUTH_DEV_"`
}

// Sanitize trims names and clamps the bcrypt cost into the range bcrypt accepts.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModePassword
	}
	a.CookieName = strings.TrimSpace(a.CookieName)
	if a.CookieName == "" {
		a.CookieName = DefaultCookieName
	}
	if a.BcryptCost < bcrypt.MinCost {
		a.BcryptCost = bcrypt.DefaultCost
	}
	if a.BcryptCost > bcrypt.MaxCost {
		a.BcryptCost = bcrypt.MaxCost
	}
	a.OAuth.DiscoveryURL = strings.TrimSpace(a.OAuth.DiscoveryURL)
}

// Validate checks the settings the selected mode needs.
func (a *AuthConfig) Validate(isDev bool) error {
	if _, err := a.ResolveSessionSecret(isDev); err != nil {
		return err
	}
	switch a.Mode {
	case AuthModeOAuth:
		return a.OAuth.validate()
	case AuthModeMock:
		if !isDev {
			return errors.New("mock auth mode is only allowed in dev mode")
		}
		if a.DevAuth.Email == "" {
			return errors.New("mock auth mode requires AUTH_DEV_EMAIL")
		}
	}
	return nil
}

// ResolveSessionSecret returns the configured secret. In dev mode an unset
// secret falls back to DevSessionSecret.
func (a *AuthConfig) ResolveSessionSecret(isDev bool) (string, error) {
	if s := strings.TrimSpace(a.SessionSecret); s != "" {
		return s, nil
	}
	if isDev {
		return DevSessionSecret, nil
	}
	return "", ErrSessionSecretRequired
}
