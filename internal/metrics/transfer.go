package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yo-safe/terminal/internal/transfer"
)

var (
	transferFlowsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "transfer",
			Name:      "flows_started_total",
			Help:      "Total number of started transfer flows",
		},
		[]string{"kind"}, // deposit, redeem
	)

	transferFlowsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "transfer",
			Name:      "flows_completed_total",
			Help:      "Total number of transfer flows that reached a terminal phase",
		},
		[]string{"kind", "status"}, // success, error
	)

	transferStepFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "transfer",
			Name:      "step_failures_total",
			Help:      "Total number of failed flow steps",
		},
		[]string{"kind", "step"}, // approval, transfer
	)

	transferTxSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "transfer",
			Name:      "tx_submitted_total",
			Help:      "Total number of transactions submitted on behalf of flows",
		},
		[]string{"kind", "step"},
	)

	transferFlowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yosafe",
			Subsystem: "transfer",
			Name:      "flow_duration_seconds",
			Help:      "Time from flow start to a terminal phase",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"kind", "status"},
	)

	transferSettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yosafe",
			Subsystem: "transfer",
			Name:      "settlements_total",
			Help:      "Total number of succeeded flows by settlement",
		},
		[]string{"kind", "settlement"}, // instant, deferred
	)
)

// StatsdClient is the subset of *statsd.Client used to mirror counters to DataDog.
type StatsdClient interface {
	Incr(name string, tags []string, rate float64) error
}

// TransferMetrics records controller state changes. sd is optional.
type TransferMetrics struct {
	sd StatsdClient
}

func NewTransferMetrics(sd StatsdClient) *TransferMetrics {
	return &TransferMetrics{sd: sd}
}

// Observer returns a transfer.Observer for one controller.
func (tm *TransferMetrics) Observer() transfer.Observer {
	var started time.Time
	var kind string

	return func(req transfer.Request, st transfer.State) {
		switch st.Phase {
		case transfer.PhaseSubmitting:
			if st.TxHash != "" {
				transferTxSubmittedTotal.WithLabelValues(req.Kind.String(), st.Step.String()).Inc()
				return
			}
			if isFirstStep(req.Kind, st.Step) {
				started = time.Now()
				kind = req.Kind.String()
				transferFlowsStartedTotal.WithLabelValues(kind).Inc()
				tm.incr("yosafe.transfer.started", kind)
			}
		case transfer.PhaseSucceeded:
			tm.complete(kind, "success", started)
			transferSettlementsTotal.WithLabelValues(kind, st.Outcome.Settlement.String()).Inc()
		case transfer.PhaseFailed:
			tm.complete(kind, "error", started)
			transferStepFailuresTotal.WithLabelValues(kind, st.Step.String()).Inc()
		}
	}
}

func (tm *TransferMetrics) complete(kind, status string, started time.Time) {
	transferFlowsCompletedTotal.WithLabelValues(kind, status).Inc()
	if !started.IsZero() {
		transferFlowDuration.WithLabelValues(kind, status).Observe(time.Since(started).Seconds())
	}
	tm.incr("yosafe.transfer.completed", kind, "status:"+status)
}

func (tm *TransferMetrics) incr(name, kind string, tags ...string) {
	if tm.sd == nil {
		return
	}
	_ = tm.sd.Incr(name, append([]string{"kind:" + kind}, tags...), 1)
}

func isFirstStep(kind transfer.Kind, step transfer.Step) bool {
	if kind == transfer.KindDeposit {
		return step == transfer.StepApproval
	}
	return step == transfer.StepTransfer
}
