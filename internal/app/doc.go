// Package app drives the scheduler's program sequence.
//
// An Application is created from a Config holding the command line settings.
// NewApplication loads and validates the configuration file and derives the
// plans; Run then walks through the phases below, reporting each one in
// scheduler_phase.json:
//
//  1. General setup: runtime directories, results cleanup, permissions
//  2. ManagedRobots: unpack managed robot archives
//  3. GracePeriod: optional wait before touching RCC
//  4. RCCSetup: RCC binary permissions and telemetry opt-out
//  5. EnvironmentBuilding: build the environment of every plan
//  6. Scheduling: run all remaining plans until cancelled
//
// Plans that fail any phase are recorded in setup_failures.json and
// excluded from the following phases.
//
// # Cancellation
//
// Run installs the termination handling (SIGINT, SIGTERM and the optional
// run-flag file). Cancellation in any phase ends Run with a nil error after
// logging "Terminated"; only fatal errors such as failing to write a result
// file are returned.
//
// # Usage
//
//	application, err := app.NewApplication(app.NewConfig(configPath))
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
