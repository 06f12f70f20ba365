package plan

import (
	"path/filepath"
	"sort"
	"time"

	"robotmk/internal/environment"
	"robotmk/internal/lock"
	"robotmk/internal/results"
	"robotmk/internal/robot"
	"robotmk/internal/session"
)

// ManagedSource describes a robot shipped as an archive.
type ManagedSource struct {
	TarGzPath     string
	Target        string
	VersionNumber int
	VersionLabel  string
}

// WorkingDirectoryCleanup limits the run directories kept per plan. Exactly
// one of the fields is non-zero.
type WorkingDirectoryCleanup struct {
	MaxAge        time.Duration
	MaxExecutions int
}

// Group locates a plan within the configuration; plans are started in
// (Index, Position) order.
type Group struct {
	Index    int
	Position int
}

// Plan is a runtime plan.
type Plan struct {
	ID string
	// BaseDir is the directory the robot target and robot.yaml are relative
	// to. For managed robots it is the unpack target.
	BaseDir           string
	Managed           *ManagedSource
	Session           session.Session
	Environment       environment.Environment
	WorkingDirectory  string
	ResultsFile       string
	Robot             robot.Robot
	Timeout           time.Duration
	ExecutionInterval time.Duration
	Cleanup           WorkingDirectoryCleanup
	Group             Group
}

// UsesRCC reports whether the plan runs in an RCC environment.
func (p Plan) UsesRCC() bool {
	return p.Environment.Kind() == environment.KindRCC
}

// AttemptsConfig returns the retry settings reported with each run.
func (p Plan) AttemptsConfig() results.AttemptsConfig {
	return results.AttemptsConfig{
		Interval:     uint64(p.ExecutionInterval / time.Second),
		Timeout:      uint64(p.Timeout / time.Second),
		NAttemptsMax: p.Robot.NAttemptsMax,
	}
}

// Suite is a plan bound to the results directory lock, ready to be run.
type Suite struct {
	Plan
	Locker *lock.Locker
}

// GlobalConfig holds the settings shared by all plans.
type GlobalConfig struct {
	RuntimeDirectory string
	RCCBinaryPath    string
	RCCSetupTimeout  time.Duration
	ResultsLocker    *lock.Locker
}

// NewGlobalConfig derives the global settings for a runtime directory.
func NewGlobalConfig(runtimeDirectory, rccBinaryPath string, rccSetupTimeout time.Duration) GlobalConfig {
	return GlobalConfig{
		RuntimeDirectory: runtimeDirectory,
		RCCBinaryPath:    rccBinaryPath,
		RCCSetupTimeout:  rccSetupTimeout,
		ResultsLocker:    lock.New(filepath.Join(runtimeDirectory, "results.lock")),
	}
}

func (g GlobalConfig) WorkingDirectory() string {
	return filepath.Join(g.RuntimeDirectory, "working")
}

func (g GlobalConfig) PlansWorkingDirectory() string {
	return filepath.Join(g.WorkingDirectory(), "plans")
}

// EnvironmentBuildingDirectory holds per-session working directories of
// environment builds.
func (g GlobalConfig) EnvironmentBuildingDirectory() string {
	return filepath.Join(g.WorkingDirectory(), "environment_building")
}

// RCCSetupDirectory holds per-session working directories of the RCC setup.
func (g GlobalConfig) RCCSetupDirectory() string {
	return filepath.Join(g.WorkingDirectory(), "rcc_setup")
}

func (g GlobalConfig) ResultsDirectory() string {
	return filepath.Join(g.RuntimeDirectory, "results")
}

func (g GlobalConfig) PlanResultsDirectory() string {
	return results.PlanResultsDirectory(g.ResultsDirectory())
}

func (g GlobalConfig) ManagedDirectory() string {
	return filepath.Join(g.RuntimeDirectory, "managed_robots")
}

// Suite binds p to the results lock.
func (g GlobalConfig) Suite(p Plan) Suite {
	return Suite{Plan: p, Locker: g.ResultsLocker}
}

// SortByGroup stably sorts plans into start order.
func SortByGroup(plans []Plan) []Plan {
	sorted := append([]Plan(nil), plans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Group, sorted[j].Group
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Position < b.Position
	})
	return sorted
}

// SessionPlans are the plans sharing one session.
type SessionPlans struct {
	Session session.Session
	Plans   []Plan
}

// BySession groups plans by session ID. Groups are ordered by session ID,
// plans within a group keep their input order.
func BySession(plans []Plan) []SessionPlans {
	index := make(map[string]int)
	var groups []SessionPlans
	for _, p := range plans {
		id := p.Session.ID()
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, SessionPlans{Session: p.Session})
		}
		groups[i].Plans = append(groups[i].Plans, p)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Session.ID() < groups[j].Session.ID()
	})
	return groups
}

// IDs returns the IDs of plans.
func IDs(plans []Plan) []string {
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	return ids
}
