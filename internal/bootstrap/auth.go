package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vetdesk/vetdesk/config"
	"github.com/vetdesk/vetdesk/internal/adapters/devauth"
	"github.com/vetdesk/vetdesk/internal/adapters/oidc"
	"github.com/vetdesk/vetdesk/internal/ports"
)

// BuildAuthProvider returns the external sign-in collaborator for the configured mode.
// Password mode has none and returns nil, nil; the OAuth routes then answer 404.
//
//nolint:ireturn // the provider is chosen at runtime.
func BuildAuthProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			Subject:   cfg.DevAuth.Subject,
			Email:     cfg.DevAuth.Email,
			FirstName: cfg.DevAuth.FirstName,
			LastName:  cfg.DevAuth.LastName,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		logger.Warn("mock sign-in enabled; every OAuth login signs in the dev profile", "email", cfg.DevAuth.Email)
		return prov, nil

	case config.AuthModeOAuth:
		oauth := cfg.OAuth
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		logger.Info("OIDC customer sign-in enabled", "discovery_url", oauth.DiscoveryURL)
		return prov, nil

	default:
		return nil, nil
	}
}
