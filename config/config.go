package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the clinic API configuration, composed from the per-area
// structs in this package and loaded from the environment with
// github.com/caarlos0/env:
//   - auth.go: sessions, passwords and external sign-in
//   - database.go: Postgres, Redis and the document cache
//   - http.go: HTTP server
//   - clinic.go: clinic calendar
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev relaxes startup checks for local development.
	// Set DEV=true or NODE_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP HTTPConfig

	Clinic ClinicConfig

	Metrics MetricsConfig
}

// Sanitize applies guardrails to values loaded from env.
// Call it after parsing and before Validate.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()
	c.Auth.Sanitize()
	c.Postgres.Sanitize()
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Clinic.Sanitize()
	c.Metrics.Sanitize()
}

// detectDevMode falls back to NODE_ENV when DEV is unset.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// Validate reports configuration that would prevent the API from starting.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Auth.Validate(c.IsDev); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}
	if _, err := c.Clinic.Location(); err != nil {
		errs = append(errs, fmt.Errorf("clinic: %w", err))
	}
	return errors.Join(errs...)
}
