package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"robotmk/internal/results"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct{}

// FormatStatus writes status as YAML. The value goes through its JSON form
// so the tagged result encodings are kept.
func (f *YAMLFormatter) FormatStatus(w io.Writer, status results.Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to serialize status: %w", err)
	}
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to convert status: %w", err)
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(generic); err != nil {
		return err
	}
	return encoder.Close()
}
