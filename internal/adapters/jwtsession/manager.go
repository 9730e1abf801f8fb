// Package jwtsession issues and verifies stateless HS256 session tokens.
package jwtsession

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	"github.com/vetdesk/vetdesk/internal/ports"
)

var _ ports.SessionSigner = (*Manager)(nil)

var (
	// ErrSigningSecretMissing is returned at construction when no secret is configured.
	ErrSigningSecretMissing = errors.New("session signing secret is required")
	// ErrInvalidToken covers every rejected token: bad signature, malformed, expired or incomplete.
	ErrInvalidToken = errors.New("invalid session token")
)

// claims is the signed payload. Identity fields sit at the top level next to the registered claims.
type claims struct {
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  domainauth.Role `json:"role"`
	jwt.RegisteredClaims
}

// Options configures NewManager.
type Options struct {
	Secret string
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Manager signs and verifies session tokens.
type Manager struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewManager creates a Manager. An empty secret is a fatal configuration error.
func NewManager(opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, ErrSigningSecretMissing
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		secret: []byte(opts.Secret),
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Issue signs a token for identity valid for domainauth.SessionTTL from now.
func (m *Manager) Issue(identity domainauth.Identity) (string, time.Time, error) {
	if err := identity.Validate(); err != nil {
		return "", time.Time{}, fmt.Errorf("issue session: %w", err)
	}
	issued := m.now().Truncate(time.Second)
	exp := issued.Add(domainauth.SessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: identity.Email,
		Name:  identity.DisplayName,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.SubjectID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature and expiry and returns the carried identity.
// A token is valid while now is strictly before its expiry.
func (m *Manager) Verify(raw string) (*domainauth.Identity, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	var c claims
	parsed, err := m.parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	identity := domainauth.Identity{
		SubjectID:   c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		Role:        c.Role,
	}
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return &identity, nil
}
