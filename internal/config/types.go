package config

// Config is the top-level configuration structure.
type Config struct {
	RuntimeDirectory string            `yaml:"runtime_directory"`
	RCCConfig        *RCCConfig        `yaml:"rcc_config,omitempty"`
	PythonExecutable string            `yaml:"python_executable,omitempty"`
	PlanGroups       []PlanGroupConfig `yaml:"plan_groups"`
}

// RCCConfig is required as soon as one plan uses an RCC environment.
type RCCConfig struct {
	BinaryPath string `yaml:"binary_path"`
	// SetupTimeout bounds the per-session RCC setup call, in seconds.
	SetupTimeout uint64 `yaml:"setup_timeout,omitempty"`
}

// PlanGroupConfig holds plans sharing one execution interval.
type PlanGroupConfig struct {
	ExecutionInterval uint64       `yaml:"execution_interval"` // seconds
	Plans             []PlanConfig `yaml:"plans"`
}

// PlanConfig configures a single plan.
type PlanConfig struct {
	ID                      string                        `yaml:"id"`
	Source                  SourceConfig                  `yaml:"source"`
	RobotConfig             RobotConfig                   `yaml:"robot_config"`
	ExecutionConfig         ExecutionConfig               `yaml:"execution_config"`
	EnvironmentConfig       EnvironmentConfig             `yaml:"environment_config"`
	SessionConfig           SessionConfig                 `yaml:"session_config"`
	WorkingDirectoryCleanup WorkingDirectoryCleanupConfig `yaml:"working_directory_cleanup_config"`
}

// SourceConfig selects where the robot comes from. Exactly one field is set.
type SourceConfig struct {
	Manual  *ManualSourceConfig  `yaml:"manual,omitempty"`
	Managed *ManagedSourceConfig `yaml:"managed,omitempty"`
}

type ManualSourceConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// ManagedSourceConfig points to an archive distributed by the monitoring
// agent.
type ManagedSourceConfig struct {
	TarGzPath     string `yaml:"tar_gz_path"`
	VersionNumber int    `yaml:"version_number"`
	VersionLabel  string `yaml:"version_label"`
}

// RobotConfig holds the Robot Framework command line settings.
type RobotConfig struct {
	RobotTarget     string           `yaml:"robot_target"`
	Suites          []string         `yaml:"suites,omitempty"`
	Tests           []string         `yaml:"tests,omitempty"`
	TestTagsInclude []string         `yaml:"test_tags_include,omitempty"`
	TestTagsExclude []string         `yaml:"test_tags_exclude,omitempty"`
	Variables       []VariableConfig `yaml:"variables,omitempty"`
	VariableFiles   []string         `yaml:"variable_files,omitempty"`
	ArgumentFiles   []string         `yaml:"argument_files,omitempty"`
	ExitOnFailure   bool             `yaml:"exit_on_failure,omitempty"`
}

type VariableConfig struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ExecutionConfig bounds the attempts of one plan run.
type ExecutionConfig struct {
	NAttemptsMax  int    `yaml:"n_attempts_max"`
	RetryStrategy string `yaml:"retry_strategy,omitempty"`
	Timeout       uint64 `yaml:"timeout"` // seconds, per attempt
}

// EnvironmentConfig selects the environment. Exactly one field is set.
type EnvironmentConfig struct {
	System *SystemEnvironmentConfig `yaml:"system,omitempty"`
	RCC    *RCCEnvironmentConfig    `yaml:"rcc,omitempty"`
}

type SystemEnvironmentConfig struct{}

type RCCEnvironmentConfig struct {
	RobotYAMLPath string `yaml:"robot_yaml_path"`
	BuildTimeout  uint64 `yaml:"build_timeout"` // seconds
	EnvJSONPath   string `yaml:"env_json_path,omitempty"`
}

// SessionConfig selects the user a plan runs as. Exactly one field is set.
type SessionConfig struct {
	Current      *CurrentSessionConfig      `yaml:"current,omitempty"`
	SpecificUser *SpecificUserSessionConfig `yaml:"specific_user,omitempty"`
}

type CurrentSessionConfig struct{}

type SpecificUserSessionConfig struct {
	UserName string `yaml:"user_name"`
}

// WorkingDirectoryCleanupConfig limits how many run directories are kept.
// Exactly one field is set.
type WorkingDirectoryCleanupConfig struct {
	MaxAgeSecs    *uint64 `yaml:"max_age_secs,omitempty"`
	MaxExecutions *int    `yaml:"max_executions,omitempty"`
}

// Plans returns all plans in configuration order.
func (c Config) Plans() []PlanConfig {
	var plans []PlanConfig
	for _, group := range c.PlanGroups {
		plans = append(plans, group.Plans...)
	}
	return plans
}
