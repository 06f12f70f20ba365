package config

import (
	"os"

	"robotmk/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads, validates and completes the configuration at path.
// All failures are returned as ConfigurationError.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, newConfigurationError(path, ErrorTypeIO, "failed to read configuration file", err,
			"Check that the file exists and is readable by the scheduler")
	}
	return Parse(path, data)
}

// Parse validates and decodes a configuration document. path is only used in
// error messages.
func Parse(path string, data []byte) (Config, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, newConfigurationError(path, ErrorTypeParse, "configuration is not valid YAML", err)
	}
	if err := ValidateSchema(data); err != nil {
		return Config{}, newConfigurationError(path, ErrorTypeSchema, "configuration does not match the schema", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, newConfigurationError(path, ErrorTypeParse, "failed to decode configuration", err)
	}
	ApplyDefaults(&cfg)

	if errs := Validate(cfg); errs.HasErrors() {
		return Config{}, newConfigurationError(path, ErrorTypeValidation, "configuration is invalid", errs)
	}

	logging.Info("Config", "Loaded configuration from %s with %d plans", path, len(cfg.Plans()))
	return cfg, nil
}
