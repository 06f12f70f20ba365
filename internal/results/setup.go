package results

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

const (
	// SetupFailuresFile lists plans excluded during setup.
	SetupFailuresFile = "setup_failures.json"
	// SchedulerPhaseFile holds the current SchedulerPhase.
	SchedulerPhaseFile = "scheduler_phase.json"
	// BuildStatesFile maps plan IDs to environment build outcomes.
	BuildStatesFile = "environment_build_states.json"
	// plansDirectory contains one report per plan.
	plansDirectory = "plans"
)

// PlanResultsDirectory returns the directory holding the per-plan reports.
func PlanResultsDirectory(resultsDirectory string) string {
	return filepath.Join(resultsDirectory, plansDirectory)
}

// SetupFailure records why a plan was excluded from scheduling.
type SetupFailure struct {
	PlanID  string `json:"plan_id"`
	Summary string `json:"summary"`
	Details string `json:"details"`
}

// NewSetupFailure builds a SetupFailure from an error.
func NewSetupFailure(planID, summary string, err error) SetupFailure {
	return SetupFailure{PlanID: planID, Summary: summary, Details: fmt.Sprintf("%v", err)}
}

// PhaseKind enumerates the coarse scheduler phases.
type PhaseKind string

const (
	PhaseManagedRobots       PhaseKind = "ManagedRobots"
	PhaseGracePeriod         PhaseKind = "GracePeriod"
	PhaseRCCSetup            PhaseKind = "RCCSetup"
	PhaseEnvironmentBuilding PhaseKind = "EnvironmentBuilding"
	PhaseScheduling          PhaseKind = "Scheduling"
)

// SchedulerPhase is written so the agent can show coarse progress.
// GracePeriodSeconds is only meaningful for PhaseGracePeriod.
type SchedulerPhase struct {
	Kind               PhaseKind
	GracePeriodSeconds uint64
}

// Phase returns a SchedulerPhase without payload.
func Phase(kind PhaseKind) SchedulerPhase {
	return SchedulerPhase{Kind: kind}
}

// GracePeriod returns the grace period phase.
func GracePeriod(seconds uint64) SchedulerPhase {
	return SchedulerPhase{Kind: PhaseGracePeriod, GracePeriodSeconds: seconds}
}

// MarshalJSON implements json.Marshaler.
func (p SchedulerPhase) MarshalJSON() ([]byte, error) {
	if p.Kind == PhaseGracePeriod {
		return json.Marshal(map[string]uint64{string(PhaseGracePeriod): p.GracePeriodSeconds})
	}
	return json.Marshal(string(p.Kind))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *SchedulerPhase) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		*p = Phase(PhaseKind(unit))
		return nil
	}
	var tagged map[string]uint64
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("invalid scheduler phase: %w", err)
	}
	seconds, ok := tagged[string(PhaseGracePeriod)]
	if !ok {
		return fmt.Errorf("invalid scheduler phase %s", string(data))
	}
	*p = GracePeriod(seconds)
	return nil
}

func (p SchedulerPhase) String() string {
	if p.Kind == PhaseGracePeriod {
		return fmt.Sprintf("%s(%ds)", p.Kind, p.GracePeriodSeconds)
	}
	return string(p.Kind)
}
