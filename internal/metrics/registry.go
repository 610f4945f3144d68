package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const (
	ServiceHTTP     = "http"
	ServiceTransfer = "transfer"
	ServiceActivity = "activity"
)

// RegisterMetrics registers metrics for the specified services
func RegisterMetrics(services []string, logger *logrus.Logger) {
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	for _, service := range services {
		switch service {
		case ServiceHTTP:
			registerHTTPMetrics(logger)
		case ServiceTransfer:
			registerTransferMetrics(logger)
		case ServiceActivity:
			registerActivityMetrics(logger)
		default:
			logger.Warnf("Unknown service type for metrics registration: %s", service)
		}
	}
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, logger *logrus.Logger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

func registerHTTPMetrics(logger *logrus.Logger) {
	registerIfNotExists(httpRequestsTotal, "http_requests_total", logger)
	registerIfNotExists(httpRequestDuration, "http_request_duration", logger)
	registerIfNotExists(httpErrorsTotal, "http_errors_total", logger)
}

func registerTransferMetrics(logger *logrus.Logger) {
	registerIfNotExists(transferFlowsStartedTotal, "transfer_flows_started_total", logger)
	registerIfNotExists(transferFlowsCompletedTotal, "transfer_flows_completed_total", logger)
	registerIfNotExists(transferStepFailuresTotal, "transfer_step_failures_total", logger)
	registerIfNotExists(transferTxSubmittedTotal, "transfer_tx_submitted_total", logger)
	registerIfNotExists(transferFlowDuration, "transfer_flow_duration", logger)
	registerIfNotExists(transferSettlementsTotal, "transfer_settlements_total", logger)
}

func registerActivityMetrics(logger *logrus.Logger) {
	registerIfNotExists(activityEventsTotal, "activity_events_total", logger)
	registerIfNotExists(activityLastBlock, "activity_last_block", logger)
	registerIfNotExists(activityPollErrorsTotal, "activity_poll_errors_total", logger)
}
