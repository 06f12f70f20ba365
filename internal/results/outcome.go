package results

import (
	"encoding/json"
	"fmt"
)

// OutcomeKind enumerates the possible results of one attempt.
type OutcomeKind string

const (
	AllTestsPassed        OutcomeKind = "AllTestsPassed"
	TestFailures          OutcomeKind = "TestFailures"
	TimedOut              OutcomeKind = "TimedOut"
	EnvironmentFailure    OutcomeKind = "EnvironmentFailure"
	RobotFrameworkFailure OutcomeKind = "RobotFrameworkFailure"
	OtherError            OutcomeKind = "OtherError"
)

// AttemptOutcome is the classified result of one attempt. Detail is only set
// for OtherError.
type AttemptOutcome struct {
	Kind   OutcomeKind
	Detail string
}

// Outcome returns an AttemptOutcome without detail.
func Outcome(kind OutcomeKind) AttemptOutcome {
	return AttemptOutcome{Kind: kind}
}

// OtherErrorOutcome returns an OtherError outcome carrying detail.
func OtherErrorOutcome(detail string) AttemptOutcome {
	return AttemptOutcome{Kind: OtherError, Detail: detail}
}

func (o AttemptOutcome) String() string {
	if o.Kind == OtherError {
		return fmt.Sprintf("%s(%s)", o.Kind, o.Detail)
	}
	return string(o.Kind)
}

// MarshalJSON implements json.Marshaler.
func (o AttemptOutcome) MarshalJSON() ([]byte, error) {
	if o.Kind == OtherError {
		return json.Marshal(map[string]string{string(OtherError): o.Detail})
	}
	return json.Marshal(string(o.Kind))
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *AttemptOutcome) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		switch kind := OutcomeKind(unit); kind {
		case AllTestsPassed, TestFailures, TimedOut, EnvironmentFailure, RobotFrameworkFailure:
			*o = Outcome(kind)
			return nil
		}
		return fmt.Errorf("unknown attempt outcome %q", unit)
	}
	var tagged map[string]string
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("invalid attempt outcome: %w", err)
	}
	detail, ok := tagged[string(OtherError)]
	if !ok || len(tagged) != 1 {
		return fmt.Errorf("invalid attempt outcome %s", string(data))
	}
	*o = OtherErrorOutcome(detail)
	return nil
}

// AttemptsConfig is the effective retry configuration reported with a suite.
// Durations are in seconds.
type AttemptsConfig struct {
	Interval     uint64 `json:"interval"`
	Timeout      uint64 `json:"timeout"`
	NAttemptsMax int    `json:"n_attempts_max"`
}

// RebotResult holds the merged report.
type RebotResult struct {
	XML        string `json:"xml"`
	HTMLBase64 string `json:"html_base64"`
	Timestamp  int64  `json:"timestamp"`
}

// RebotOutcome is either a merged result or the error of the merge tool.
type RebotOutcome struct {
	Ok    *RebotResult
	Error string
}

// MarshalJSON implements json.Marshaler.
func (r RebotOutcome) MarshalJSON() ([]byte, error) {
	if r.Ok != nil {
		return json.Marshal(map[string]*RebotResult{"Ok": r.Ok})
	}
	return json.Marshal(map[string]string{"Error": r.Error})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RebotOutcome) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid rebot outcome: %w", err)
	}
	if ok, found := raw["Ok"]; found {
		var result RebotResult
		if err := json.Unmarshal(ok, &result); err != nil {
			return fmt.Errorf("invalid rebot result: %w", err)
		}
		*r = RebotOutcome{Ok: &result}
		return nil
	}
	if e, found := raw["Error"]; found {
		var detail string
		if err := json.Unmarshal(e, &detail); err != nil {
			return fmt.Errorf("invalid rebot error: %w", err)
		}
		*r = RebotOutcome{Error: detail}
		return nil
	}
	return fmt.Errorf("invalid rebot outcome %s", string(data))
}

// SuiteExecutionReport is the durable result of one suite run.
type SuiteExecutionReport struct {
	SuiteID     string           `json:"suite_id"`
	ExecutionID string           `json:"execution_id"`
	Attempts    []AttemptOutcome `json:"attempts"`
	Rebot       *RebotOutcome    `json:"rebot"`
	Config      AttemptsConfig   `json:"config"`
}
