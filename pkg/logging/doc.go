// Package logging provides the structured logging used throughout the
// scheduler.
//
// It is a thin layer over Go's standard slog package. Every record carries a
// subsystem attribute so that log lines of the setup pipeline, the session
// layer and the scheduler loop can be told apart and filtered.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Setup", "Created working directory %s", dir)
//	logging.Error("Scheduler", err, "Plan %s: suite run failed", planID)
//
// To log into a file instead of standard output:
//
//	if err := logging.InitForFile(logging.LevelDebug, "/var/log/robotmk.log"); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
// # Subsystems
//
//   - **App**: program sequence and phase changes
//   - **Config**: configuration loading and validation
//   - **Setup**: directory creation, cleanup and permission grants
//   - **Session**: child process launches
//   - **Build**: environment building
//   - **Suite**: attempts and result aggregation
//   - **Scheduler**: per-plan scheduling loop
//   - **Termination**: signal and run-flag handling
//
// # Thread Safety
//
// All functions are safe for concurrent use.
package logging
