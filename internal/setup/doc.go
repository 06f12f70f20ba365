// Package setup prepares the runtime directory before scheduling starts.
//
// Setup is failure-tolerant per plan: a problem that only affects one plan
// (or all plans of one user) excludes those plans and is recorded as a
// results.SetupFailure, while the remaining plans carry on. Only problems
// affecting the scheduler as a whole, such as an unwritable runtime
// directory, are returned as errors.
//
// Every stage takes a plan slice and returns the surviving plans plus the
// failures of the excluded ones. No plan is ever dropped silently.
//
// Stages, in order:
//
//  1. Create the top-level working, results and managed directories.
//  2. Recreate the environment-building and RCC-setup directories.
//  3. Remove working directories and result files of unknown plans.
//  4. Create the managed target of managed plans.
//  5. Create the working directory of every plan.
//  6. Create per-session directories for plans using RCC.
//  7. Create the RCC-setup directory of the scheduler's own session, where
//     required by the platform.
//  8. Sort the survivors into start order.
//
// UnpackManaged and SetupRCC run later, in their own scheduler phases.
package setup
