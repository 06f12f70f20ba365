// Package session launches commands under an OS-level user identity.
//
// A Session is either the identity of the scheduler process itself
// (CurrentSession) or a specific named user (UserSession). Both run a RunSpec
// and report a RunOutcome:
//
//   - Exited: the process finished on its own; the exit code is nil if it
//     could not be determined (e.g. killed by an external signal).
//   - TimedOut: RunSpec.Timeout elapsed and the process tree was killed.
//   - Terminated: the context was cancelled and the process tree was killed.
//     This means the scheduler is shutting down, not that the work failed.
//
// Standard output and standard error of the child are written to
// RunSpec.BasePath with the suffixes ".stdout" and ".stderr".
//
// Platform specifics (process groups, switching users) live in build-tagged
// files so that callers stay platform-agnostic.
package session
