package app

import (
	"context"
	"fmt"

	"robotmk/internal/config"
	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/termination"
	"robotmk/pkg/logging"
)

// Application represents the scheduler process.
type Application struct {
	config  *Config
	global  plan.GlobalConfig
	plans   []plan.Plan
	granter permissions.Granter
}

// NewApplication loads the configuration file named by cfg and derives the
// plans from it.
func NewApplication(cfg *Config) (*Application, error) {
	loaded, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("App", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
	}
	logging.Info("App", "Loaded configuration from %s", cfg.ConfigPath)
	return newApplication(cfg, loaded), nil
}

func newApplication(cfg *Config, loaded config.Config) *Application {
	global, plans := plan.FromConfig(loaded)
	granter := cfg.Granter
	if granter == nil {
		granter = permissions.Default()
	}
	return &Application{
		config:  cfg,
		global:  global,
		plans:   plans,
		granter: granter,
	}
}

// Run executes all phases and blocks until the scheduler is terminated.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop, err := termination.Start(ctx, a.config.RunFlagPath)
	if err != nil {
		return err
	}
	defer stop()

	err = a.run(ctx)
	if termination.IsCancelled(err) {
		logging.Info("App", "Terminated")
		return nil
	}
	if err != nil {
		logging.Error("App", err, "Scheduler failed")
	}
	return err
}
