package config

const (
	// DefaultRetryStrategy re-runs the whole suite on every attempt.
	DefaultRetryStrategy = "complete"

	// DefaultRCCSetupTimeout bounds the per-session RCC setup call, in seconds.
	DefaultRCCSetupTimeout = 120
)

// ApplyDefaults fills in optional settings that were left empty.
func ApplyDefaults(cfg *Config) {
	if cfg.RCCConfig != nil && cfg.RCCConfig.SetupTimeout == 0 {
		cfg.RCCConfig.SetupTimeout = DefaultRCCSetupTimeout
	}
	for g := range cfg.PlanGroups {
		for p := range cfg.PlanGroups[g].Plans {
			execution := &cfg.PlanGroups[g].Plans[p].ExecutionConfig
			if execution.RetryStrategy == "" {
				execution.RetryStrategy = DefaultRetryStrategy
			}
		}
	}
}
