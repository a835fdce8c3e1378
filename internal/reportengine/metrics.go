package reportengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

var (
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gofleet",
		Name:      "report_executions_total",
		Help:      "Count of custom report executions",
	}, []string{"data_source", "mode", "status"})

	executionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gofleet",
		Name:      "report_execution_duration_seconds",
		Help:      "Duration of custom report executions that reached the data store",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"data_source", "mode"})
)
