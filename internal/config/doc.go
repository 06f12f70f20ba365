// Package config loads the scheduler configuration.
//
// The configuration is a single YAML file. It is checked in three steps:
// the raw document is validated against an embedded JSON schema, decoded into
// Config, completed with defaults and finally checked for semantic errors
// such as duplicate plan IDs.
//
// # Configuration Structure
//
//	runtime_directory: /var/lib/robotmk
//	rcc_config:
//	  binary_path: /usr/local/bin/rcc
//	plan_groups:
//	  - execution_interval: 300          # seconds
//	    plans:
//	      - id: login
//	        source:
//	          manual:
//	            base_dir: /robots/login
//	        robot_config:
//	          robot_target: tests.robot  # relative to the source directory
//	          variables:
//	            - name: BROWSER
//	              value: chromium
//	        execution_config:
//	          n_attempts_max: 2
//	          retry_strategy: incremental
//	          timeout: 120             # seconds, per attempt
//	        environment_config:
//	          rcc:
//	            robot_yaml_path: robot.yaml
//	            build_timeout: 1200
//	        session_config:
//	          specific_user:
//	            user_name: robot
//	        working_directory_cleanup_config:
//	          max_executions: 50
//
// Managed robots replace the manual source:
//
//	source:
//	  managed:
//	    tar_gz_path: /var/lib/robotmk/archives/login.tar.gz
//	    version_number: 3
//	    version_label: "2024-05"
//
// # Usage
//
//	cfg, err := config.LoadConfig("/etc/robotmk/config.yaml")
//	if err != nil {
//	    var cfgErr config.ConfigurationError
//	    if errors.As(err, &cfgErr) {
//	        fmt.Println(cfgErr.DetailedError())
//	    }
//	    return err
//	}
package config
