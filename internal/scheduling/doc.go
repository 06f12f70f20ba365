// Package scheduling runs plans periodically.
//
// Each plan gets its own goroutine which runs the plan's suite right away and
// then once per execution interval. A suite run consists of up to
// NAttemptsMax attempts, stopping at the first attempt in which all tests
// passed. The outputs of all attempts are merged with rebot and the report
// replaces the plan's results file atomically.
//
// Attempt outcomes are data, not errors: a failing robot produces a report
// like a passing one. RunSuite only returns errors for I/O problems and
// termination.ErrCancelled when the scheduler is shutting down, in which case
// no report is written for the interrupted run.
package scheduling
