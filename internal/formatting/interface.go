// Package formatting renders the scheduler status for the command line.
//
// The same results.Status snapshot can be shown as rich tables, JSON or
// YAML, selected through Options.Format.
package formatting

import (
	"io"

	"robotmk/internal/results"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
	FormatTable OutputFormat = "table" // Rich table output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored output
}

// Formatter writes a status snapshot to w.
type Formatter interface {
	FormatStatus(w io.Writer, status results.Status) error
}

// NewFormatter creates the appropriate formatter based on options
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{options: options}
	}
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (OutputFormat, bool) {
	switch f := OutputFormat(name); f {
	case FormatJSON, FormatYAML, FormatTable:
		return f, true
	}
	return "", false
}
