// Package results defines the JSON artifacts consumed by the monitoring agent
// and writes them without ever exposing a partially written file.
//
// Closed variants (attempt outcomes, scheduler phases, rebot outcomes, build
// outcomes) are encoded externally tagged: unit variants as a bare string,
// variants with data as a single-key object, e.g. "AllTestsPassed" or
// {"OtherError": "details"}.
//
// Every write takes the exclusive lock of the results directory, writes to a
// temporary file next to the target and renames it into place.
package results
