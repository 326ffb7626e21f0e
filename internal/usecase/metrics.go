package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddswatch_batch_runs_total",
			Help: "Alert evaluation batches by result",
		},
		[]string{"status"}, // success, failed
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oddswatch_batch_duration_seconds",
			Help:    "Wall time of one alert evaluation batch",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	alertsEvaluatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddswatch_alerts_evaluated_total",
			Help: "Alerts evaluated against a market snapshot",
		},
	)

	alertsTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddswatch_alerts_triggered_total",
			Help: "Alerts whose condition fired",
		},
		[]string{"kind"}, // whale, flip, custom
	)

	alertsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddswatch_alerts_skipped_total",
			Help: "Alerts skipped during a batch",
		},
		[]string{"reason"}, // fetch_failed, evaluation_failed, no_recipient, send_failed
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oddswatch_notifications_total",
			Help: "Alert emails handed to the mail provider",
		},
		[]string{"status"}, // sent, failed
	)

	markTriggeredFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oddswatch_mark_triggered_failures_total",
			Help: "Trigger timestamps that could not be persisted",
		},
	)
)

func triggerLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
