// Package termination provides the process-wide cancellation authority.
//
// Cancellation is expressed as a context.Context: once the context is done it
// stays done, so every later check observes it (level-triggered). The context
// returned by Start is cancelled by SIGINT/SIGTERM and, optionally, by the
// removal of a run-flag file watched with fsnotify.
//
// Code that waits on something (a child process, a file lock, the grace
// period) races that wait against ctx.Done() and reports ErrCancelled when
// cancellation wins. Callers treat ErrCancelled as a clean shutdown, never as a
// failure.
package termination
