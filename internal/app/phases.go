package app

import (
	"context"
	"path/filepath"

	"github.com/coreos/go-systemd/v22/daemon"

	"robotmk/internal/build"
	"robotmk/internal/metrics"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/scheduling"
	"robotmk/internal/setup"
	"robotmk/internal/termination"
	"robotmk/pkg/logging"
)

func (a *Application) run(ctx context.Context) error {
	if ctx.Err() != nil {
		return termination.ErrCancelled
	}
	if a.config.MetricsAddress != "" {
		go func() {
			if err := metrics.Serve(ctx, a.config.MetricsAddress); err != nil {
				logging.Error("App", err, "Metrics endpoint on %s failed", a.config.MetricsAddress)
			}
		}()
	}

	plans, failures, err := setup.Setup(ctx, a.global, a.plans, a.granter)
	if err != nil {
		return err
	}
	logging.Info("App", "General setup completed")

	if err := a.writePhase(ctx, results.Phase(results.PhaseManagedRobots)); err != nil {
		return err
	}
	plans, unpackFailures := setup.UnpackManaged(plans, a.granter)
	failures = append(failures, unpackFailures...)

	if grace := a.config.GracePeriod; grace > 0 {
		if err := a.writePhase(ctx, results.GracePeriod(uint64(grace.Seconds()))); err != nil {
			return err
		}
		logging.Info("App", "Grace period: waiting %s", grace)
		if err := termination.Sleep(ctx, grace); err != nil {
			return err
		}
	}

	if err := a.writePhase(ctx, results.Phase(results.PhaseRCCSetup)); err != nil {
		return err
	}
	plans, rccFailures, err := setup.SetupRCC(ctx, a.global, plans, a.granter)
	if err != nil {
		return err
	}
	failures = append(failures, rccFailures...)
	if err := a.reportSetupFailures(ctx, failures); err != nil {
		return err
	}

	if err := a.writePhase(ctx, results.Phase(results.PhaseEnvironmentBuilding)); err != nil {
		return err
	}
	plans, err = build.BuildEnvironments(ctx, a.global, plans)
	if err != nil {
		return err
	}

	if err := a.writePhase(ctx, results.Phase(results.PhaseScheduling)); err != nil {
		return err
	}
	return a.schedule(ctx, plans)
}

func (a *Application) schedule(ctx context.Context, plans []plan.Plan) error {
	runSuite := a.config.SuiteRunner
	if runSuite == nil {
		runSuite = scheduling.NewSuiteRunner(a.granter)
	}
	scheduler := scheduling.NewScheduler(a.global, runSuite)
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("App", "Failed to notify service manager: %v", err)
	} else if sent {
		scheduler.RegisterCleanup(func() {
			daemon.SdNotify(false, daemon.SdNotifyStopping)
		})
	}

	logging.Info("App", "Scheduling %d plans: %v", len(plans), plan.IDs(plans))
	if err := scheduler.Run(ctx, plans); err != nil {
		return err
	}
	return termination.ErrCancelled
}

func (a *Application) writePhase(ctx context.Context, phase results.SchedulerPhase) error {
	logging.Info("App", "Entering phase %s", phase)
	path := filepath.Join(a.global.ResultsDirectory(), results.SchedulerPhaseFile)
	return results.WriteJSON(ctx, path, phase, a.global.ResultsLocker)
}

func (a *Application) reportSetupFailures(ctx context.Context, failures []results.SetupFailure) error {
	for _, failure := range failures {
		logging.Warn("App", "Plan %s excluded: %s", failure.PlanID, failure.Summary)
		metrics.RecordSetupFailure(failure.Summary)
	}
	if failures == nil {
		failures = []results.SetupFailure{}
	}
	path := filepath.Join(a.global.ResultsDirectory(), results.SetupFailuresFile)
	return results.WriteJSON(ctx, path, failures, a.global.ResultsLocker)
}
