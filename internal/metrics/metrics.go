// Package metrics defines Prometheus instrumentation for the points
// ledger core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileRuns counts successful single-user balance reconciles.
	ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_reconcile_runs_total",
		Help: "Number of successful balance reconciles",
	})

	// ReconcileFailures counts reconciles that surfaced a storage error.
	ReconcileFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_reconcile_failures_total",
		Help: "Number of failed balance reconciles",
	})

	// AchievementsAwarded counts automatically awarded achievements.
	AchievementsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_achievements_awarded_total",
		Help: "Number of achievements awarded by the evaluator",
	})

	// SweepRuns counts full maintenance sweeps over all students.
	SweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "points_sweep_runs_total",
		Help: "Number of completed full reconciliation sweeps",
	})
)
