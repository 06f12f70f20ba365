package app

import (
	"time"

	"robotmk/internal/permissions"
	"robotmk/internal/scheduling"
)

// Config holds the application settings given on the command line.
type Config struct {
	// ConfigPath is the scheduler configuration file.
	ConfigPath string

	// GracePeriod delays RCC setup after startup.
	GracePeriod time.Duration

	// RunFlagPath, if set, names a file whose removal terminates the
	// scheduler.
	RunFlagPath string

	// MetricsAddress, if set, exposes Prometheus metrics on this address.
	MetricsAddress string

	// Granter overrides the platform permission granter.
	Granter permissions.Granter

	// SuiteRunner overrides how suites are executed.
	SuiteRunner scheduling.SuiteRunner
}

// NewConfig creates a new application configuration
func NewConfig(configPath string) *Config {
	return &Config{ConfigPath: configPath}
}
