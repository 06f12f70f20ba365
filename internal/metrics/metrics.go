// Package metrics exposes Prometheus metrics about scheduled plans.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"robotmk/pkg/logging"
)

const (
	MetricsNamespace = "robotmk"
)

var (
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "attempts_total",
		Help:      "Count of attempts by plan and outcome",
	}, []string{
		"plan_id",
		"outcome",
	})

	suiteRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_runs_total",
		Help:      "Count of completed suite runs",
	}, []string{
		"plan_id",
	})

	suiteRunDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_run_duration_seconds",
		Help:      "Duration of the last suite run",
	}, []string{
		"plan_id",
	})

	setupFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "setup_failures_total",
		Help:      "Count of plans excluded during setup",
	}, []string{
		"summary",
	})

	environmentBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "environment_builds_total",
		Help:      "Count of environment builds by result",
	}, []string{
		"plan_id",
		"result",
	})
)

func RecordAttempt(planID, outcome string) {
	attemptsTotal.WithLabelValues(planID, outcome).Inc()
}

func RecordSuiteRun(planID string, duration time.Duration) {
	suiteRunsTotal.WithLabelValues(planID).Inc()
	suiteRunDuration.WithLabelValues(planID).Set(duration.Seconds())
}

func RecordSetupFailure(summary string) {
	setupFailuresTotal.WithLabelValues(summary).Inc()
}

func RecordEnvironmentBuild(planID, result string) {
	environmentBuildsTotal.WithLabelValues(planID, result).Inc()
}

// Serve exposes the default registry on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("App", "Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
