package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the semantic constraints the schema cannot express.
func Validate(cfg Config) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.RuntimeDirectory) == "" {
		errs.Add("runtime_directory", "is required")
	}

	seen := make(map[string]bool)
	for g, group := range cfg.PlanGroups {
		if group.ExecutionInterval == 0 {
			errs.Add(fmt.Sprintf("plan_groups[%d].execution_interval", g), "must be positive")
		}
		for p, plan := range group.Plans {
			field := fmt.Sprintf("plan_groups[%d].plans[%d]", g, p)
			if plan.ID == "" {
				errs.Add(field+".id", "is required")
			} else if seen[plan.ID] {
				errs.Add(field+".id", "is not unique", plan.ID)
			}
			seen[plan.ID] = true

			validatePlan(&errs, field, plan, cfg.RCCConfig != nil)
		}
	}
	return errs
}

func validatePlan(errs *ValidationErrors, field string, plan PlanConfig, haveRCC bool) {
	if (plan.Source.Manual == nil) == (plan.Source.Managed == nil) {
		errs.Add(field+".source", "exactly one of manual or managed must be set")
	}
	if plan.ExecutionConfig.NAttemptsMax < 1 {
		errs.Add(field+".execution_config.n_attempts_max", "must be at least 1", plan.ExecutionConfig.NAttemptsMax)
	}
	if plan.ExecutionConfig.Timeout == 0 {
		errs.Add(field+".execution_config.timeout", "must be positive")
	}
	switch plan.ExecutionConfig.RetryStrategy {
	case "complete", "incremental":
	default:
		errs.Add(field+".execution_config.retry_strategy", "must be one of: complete, incremental", plan.ExecutionConfig.RetryStrategy)
	}

	env := plan.EnvironmentConfig
	if (env.System == nil) == (env.RCC == nil) {
		errs.Add(field+".environment_config", "exactly one of system or rcc must be set")
	} else if env.RCC != nil && !haveRCC {
		errs.Add(field+".environment_config.rcc", "requires rcc_config")
	}

	session := plan.SessionConfig
	if (session.Current == nil) == (session.SpecificUser == nil) {
		errs.Add(field+".session_config", "exactly one of current or specific_user must be set")
	} else if session.SpecificUser != nil && strings.TrimSpace(session.SpecificUser.UserName) == "" {
		errs.Add(field+".session_config.specific_user.user_name", "is required")
	}

	cleanup := plan.WorkingDirectoryCleanup
	if (cleanup.MaxAgeSecs == nil) == (cleanup.MaxExecutions == nil) {
		errs.Add(field+".working_directory_cleanup_config", "exactly one of max_age_secs or max_executions must be set")
	}
}
