package results

import (
	"encoding/json"
	"fmt"
)

// BuildStatus enumerates environment build states.
type BuildStatus string

const (
	BuildPending    BuildStatus = "Pending"
	BuildNotNeeded  BuildStatus = "NotNeeded"
	BuildInProgress BuildStatus = "InProgress"
	BuildSuccess    BuildStatus = "Success"
	BuildFailure    BuildStatus = "Failure"
	BuildTimeout    BuildStatus = "Timeout"
)

// BuildOutcome is the state of one plan's environment build. StartTime is a
// unix timestamp for InProgress, Duration is in seconds for Success and
// Detail carries the error text for Failure.
type BuildOutcome struct {
	Status    BuildStatus
	StartTime int64
	Duration  int64
	Detail    string
}

// MarshalJSON implements json.Marshaler.
func (b BuildOutcome) MarshalJSON() ([]byte, error) {
	switch b.Status {
	case BuildInProgress:
		return json.Marshal(map[string]int64{string(BuildInProgress): b.StartTime})
	case BuildSuccess:
		return json.Marshal(map[string]int64{string(BuildSuccess): b.Duration})
	case BuildFailure:
		return json.Marshal(map[string]string{string(BuildFailure): b.Detail})
	default:
		return json.Marshal(string(b.Status))
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BuildOutcome) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		*b = BuildOutcome{Status: BuildStatus(unit)}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) != 1 {
		return fmt.Errorf("invalid build outcome %s", string(data))
	}
	for key, value := range raw {
		status := BuildStatus(key)
		switch status {
		case BuildInProgress, BuildSuccess:
			var n int64
			if err := json.Unmarshal(value, &n); err != nil {
				return fmt.Errorf("invalid build outcome %s: %w", key, err)
			}
			if status == BuildInProgress {
				*b = BuildOutcome{Status: status, StartTime: n}
			} else {
				*b = BuildOutcome{Status: status, Duration: n}
			}
		case BuildFailure:
			var detail string
			if err := json.Unmarshal(value, &detail); err != nil {
				return fmt.Errorf("invalid build outcome %s: %w", key, err)
			}
			*b = BuildOutcome{Status: status, Detail: detail}
		default:
			return fmt.Errorf("unknown build outcome %q", key)
		}
	}
	return nil
}
