package formatting

import (
	"fmt"
	"io"

	"robotmk/internal/results"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct{}

// FormatStatus writes status as indented JSON.
func (f *JSONFormatter) FormatStatus(w io.Writer, status results.Status) error {
	_, err := fmt.Fprintln(w, PrettyJSON(status))
	return err
}
