package scheduling

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"robotmk/internal/plan"
	"robotmk/internal/termination"
	"robotmk/pkg/logging"
)

// Scheduler runs every plan periodically until its context is done.
type Scheduler struct {
	global   plan.GlobalConfig
	runSuite SuiteRunner

	mu       sync.Mutex
	cleanups []func()
}

// NewScheduler returns a Scheduler executing suites with runSuite. A nil
// runSuite means RunSuite.
func NewScheduler(global plan.GlobalConfig, runSuite SuiteRunner) *Scheduler {
	if runSuite == nil {
		runSuite = RunSuite
	}
	return &Scheduler{global: global, runSuite: runSuite}
}

// RegisterCleanup adds f to the functions run when Run returns. They run in
// reverse registration order.
func (s *Scheduler) RegisterCleanup(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, f)
}

// Run schedules plans and blocks until ctx is done and all in-flight runs
// have finished.
func (s *Scheduler) Run(ctx context.Context, plans []plan.Plan) error {
	defer s.runCleanups()

	var g errgroup.Group
	for _, p := range plans {
		p := p
		g.Go(func() error {
			s.runPlan(ctx, p)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) runPlan(ctx context.Context, p plan.Plan) {
	suite := s.global.Suite(p)
	ticker := time.NewTicker(p.ExecutionInterval)
	defer ticker.Stop()

	logging.Info("Scheduler", "Plan %s: scheduled every %s", p.ID, p.ExecutionInterval)
	for {
		if ctx.Err() != nil {
			return
		}
		s.runOnce(ctx, suite)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, suite plan.Suite) {
	err := s.runSuite(ctx, suite)
	switch {
	case termination.IsCancelled(err):
		logging.Info("Scheduler", "Plan %s: run terminated", suite.ID)
		return
	case err != nil:
		logging.Error("Scheduler", err, "Plan %s: suite run failed", suite.ID)
	}

	removed, err := cleanUpWorkingDirectory(suite.WorkingDirectory, suite.Cleanup, time.Now())
	if err != nil {
		logging.Error("Scheduler", err, "Plan %s: working directory cleanup failed", suite.ID)
	} else if len(removed) > 0 {
		logging.Debug("Scheduler", "Plan %s: removed %d old run directories", suite.ID, len(removed))
	}
}

func (s *Scheduler) runCleanups() {
	s.mu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
