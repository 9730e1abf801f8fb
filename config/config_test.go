package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModePassword, cfg.Auth.Mode)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "vetdesk", cfg.Postgres.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "UTC", cfg.Clinic.Timezone)

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrSessionSecretRequired)
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "OAuth")
	t.Setenv("AUTH_SESSION_SECRET", "s3cret")
	t.Setenv("AUTH_COOKIE_NAME", "vet_session")
	t.Setenv("AUTH_SECURE_COOKIES", "true")
	t.Setenv("AUTH_BCRYPT_COST", "10")
	t.Setenv("AUTH_OAUTH_CLIENT_ID", "clinic-client")
	t.Setenv("AUTH_OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("AUTH_OAUTH_DISCOVERY_URL", " https://login.example.com/.well-known/openid-configuration ")
	t.Setenv("CLINIC_TIMEZONE", "America/Lima")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, "vet_session", cfg.Auth.CookieName)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "clinic-client", cfg.Auth.OAuth.ClientID)
	assert.Equal(t, "https://login.example.com/.well-known/openid-configuration", cfg.Auth.OAuth.DiscoveryURL)
	assert.Equal(t, "http://localhost:8080/auth/oauth/callback", cfg.Auth.OAuth.RedirectURL)
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Clinic.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Lima", loc.String())
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte(" Mock ")))
	assert.Equal(t, AuthModeMock, m)
	assert.Error(t, m.UnmarshalText([]byte("ldap")))
}

func TestAuthConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		isDev   bool
		wantErr string
	}{
		{name: "password mode with secret", cfg: AuthConfig{Mode: AuthModePassword, SessionSecret: "x"}},
		{name: "dev falls back to dev secret", cfg: AuthConfig{Mode: AuthModePassword}, isDev: true},
		{
			name:    "missing secret outside dev",
			cfg:     AuthConfig{Mode: AuthModePassword, SessionSecret: "   "},
			wantErr: "AUTH_SESSION_SECRET",
		},
		{
			name:    "oauth lists missing settings",
			cfg:     AuthConfig{Mode: AuthModeOAuth, SessionSecret: "x", OAuth: OAuthConfig{ClientID: "id"}},
			wantErr: "AUTH_OAUTH_CLIENT_SECRET, AUTH_OAUTH_DISCOVERY_URL",
		},
		{
			name:    "mock outside dev",
			cfg:     AuthConfig{Mode: AuthModeMock, SessionSecret: "x", DevAuth: DevAuthConfig{Email: "a@b.c"}},
			wantErr: "only allowed in dev mode",
		},
		{
			name:  "mock in dev",
			cfg:   AuthConfig{Mode: AuthModeMock, DevAuth: DevAuthConfig{Email: "a@b.c"}},
			isDev: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(tt.isDev)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAuthConfig_ResolveSessionSecret(t *testing.T) {
	a := AuthConfig{SessionSecret: " real "}
	s, err := a.ResolveSessionSecret(true)
	require.NoError(t, err)
	assert.Equal(t, "real", s)

	a.SessionSecret = ""
	s, err = a.ResolveSessionSecret(true)
	require.NoError(t, err)
	assert.Equal(t, DevSessionSecret, s)
}

func TestAuthConfig_SanitizeClampsCost(t *testing.T) {
	low := AuthConfig{BcryptCost: 1, CookieName: " "}
	low.Sanitize()
	assert.Equal(t, 10, low.BcryptCost)
	assert.Equal(t, DefaultCookieName, low.CookieName)
	assert.Equal(t, AuthModePassword, low.Mode)

	high := AuthConfig{BcryptCost: 99}
	high.Sanitize()
	assert.Equal(t, 31, high.BcryptCost)
}

func TestCacheConfig_SanitizeFloorsTTL(t *testing.T) {
	c := CacheConfig{TTL: 0}
	c.Sanitize()
	assert.Equal(t, MinCacheTTL, c.TTL)
}

func TestDBConfig_Sanitize(t *testing.T) {
	d := DBConfig{MaxOpenConns: 0, MaxIdleConns: 50}
	d.Sanitize()
	assert.Equal(t, 25, d.MaxOpenConns)
	assert.Equal(t, 25, d.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, d.ConnMaxLifetime)
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{}
	h.Sanitize()
	assert.Equal(t, ":8080", h.Addr)
	assert.Equal(t, 10*time.Second, h.ReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, h.ShutdownTimeout)
}

func TestClinicConfig_InvalidZone(t *testing.T) {
	c := ClinicConfig{Timezone: "Mars/Olympus"}
	_, err := c.Location()
	require.Error(t, err)

	cfg := AppConfig{IsDev: true, Auth: AuthConfig{Mode: AuthModePassword}, Clinic: c}
	assert.ErrorContains(t, cfg.Validate(), "CLINIC_TIMEZONE")
}

func TestMetricsConfig(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_STATSD_ADDRESS", " statsd:8125 ")
	t.Setenv("METRICS_PREFIX", ".clinic.")
	t.Setenv("METRICS_ENV", "staging")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.Metrics.IsEnabled())
	assert.Equal(t, "statsd:8125", cfg.Metrics.StatsdAddress)
	assert.Equal(t, "clinic", cfg.Metrics.Prefix)
	assert.Equal(t, map[string]string{"env": "staging"}, cfg.Metrics.GlobalTags())

	off := MetricsConfig{Enabled: true, StatsdAddress: " "}
	off.Sanitize()
	assert.False(t, off.IsEnabled())
	assert.Nil(t, off.GlobalTags())
}

func TestAppConfig_DetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}
