// Package observability exposes the Prometheus metrics the sync engine
// records. Metrics register on the default registry and are served by
// the metrics route.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runStartedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "strava_garmin_sync",
		Subsystem: "runs",
		Name:      "started_total",
		Help:      "Number of sync runs that acquired the run lock and started.",
	})

	runFinishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strava_garmin_sync",
		Subsystem: "runs",
		Name:      "finished_total",
		Help:      "Number of sync runs finished, grouped by result.",
	}, []string{"result"})

	activityCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strava_garmin_sync",
		Subsystem: "activities",
		Name:      "processed_total",
		Help:      "Number of activities handled, grouped by outcome.",
	}, []string{"outcome"})

	uploadHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "strava_garmin_sync",
		Subsystem: "uploads",
		Name:      "duration_seconds",
		Help:      "Time from submitting one document to its terminal import state.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(runStartedCounter, runFinishedCounter, activityCounter, uploadHistogram)
}

// RecordRunStarted counts a run that acquired the run lock.
func RecordRunStarted() {
	runStartedCounter.Inc()
}

// RecordRunFinished counts a finished run under its result.
func RecordRunFinished(aborted bool) {
	result := "completed"
	if aborted {
		result = "aborted"
	}
	runFinishedCounter.WithLabelValues(result).Inc()
}

// RecordActivityOutcome counts one handled activity under its outcome.
func RecordActivityOutcome(outcome string) {
	activityCounter.WithLabelValues(outcome).Inc()
}

// RecordUploadDuration observes one complete upload, submission through
// terminal import state.
func RecordUploadDuration(d time.Duration) {
	uploadHistogram.Observe(d.Seconds())
}
