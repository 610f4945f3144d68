package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "activity",
			Name:      "events_total",
			Help:      "Total number of manager events appended to the activity feed",
		},
		[]string{"type"},
	)

	activityLastBlock = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yosafe",
			Subsystem: "activity",
			Name:      "last_block",
			Help:      "Last block scanned by the activity watcher",
		},
	)

	activityPollErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "activity",
			Name:      "poll_errors_total",
			Help:      "Total number of failed activity polls",
		},
	)
)

type ActivityMetrics struct{}

func NewActivityMetrics() *ActivityMetrics {
	return &ActivityMetrics{}
}

func (am *ActivityMetrics) RecordEvent(eventType string) {
	activityEventsTotal.WithLabelValues(eventType).Inc()
}

func (am *ActivityMetrics) RecordScan(toBlock uint64) {
	activityLastBlock.Set(float64(toBlock))
}

func (am *ActivityMetrics) RecordPollError() {
	activityPollErrorsTotal.Inc()
}
