package config

import "strings"

// MetricsConfig controls StatsD emission.
type MetricsConfig struct {
	Enabled       bool   `env:"METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"METRICS_PREFIX"         envDefault:"vetdesk"`
	// Env is attached to every metric as the "env" tag when set.
	Env string `env:"METRICS_ENV" envDefault:""`
}

// Sanitize trims the address and prefix.
func (m *MetricsConfig) Sanitize() {
	m.StatsdAddress = strings.TrimSpace(m.StatsdAddress)
	m.Prefix = strings.Trim(strings.TrimSpace(m.Prefix), ".")
	m.Env = strings.TrimSpace(m.Env)
}

// IsEnabled reports whether metrics should be sent.
func (m *MetricsConfig) IsEnabled() bool {
	return m.Enabled && m.StatsdAddress != ""
}

// GlobalTags are the tags attached to every metric.
func (m *MetricsConfig) GlobalTags() map[string]string {
	if m.Env == "" {
		return nil
	}
	return map[string]string{"env": m.Env}
}
