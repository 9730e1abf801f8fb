package config

import (
	"fmt"
	"strings"
	"time"
)

// ClinicConfig holds clinic-wide settings.
type ClinicConfig struct {
	// Timezone is the IANA zone whose calendar day document numbers use.
	Timezone string `env:"CLINIC_TIMEZONE" envDefault:"UTC"`
}

// Sanitize trims the zone name; an empty zone means UTC.
func (c *ClinicConfig) Sanitize() {
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

// Location loads the configured time zone.
func (c *ClinicConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
