package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumentation carries the exporter's own health metrics. They live in
// the same registry as the posture gauges, so one scrape covers both.
type Instrumentation struct {
	Up            prometheus.Gauge
	FetchDuration prometheus.Gauge
	FetchErrors   prometheus.Counter
	LastSuccess   prometheus.Gauge
	Samples       prometheus.Gauge
	StaleRecords  prometheus.Counter
}

func NewInstrumentation(registerer prometheus.Registerer) *Instrumentation {
	factory := promauto.With(registerer)
	return &Instrumentation{
		Up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdig_posture",
			Subsystem: "exporter",
			Name:      "up",
			Help:      "Whether the last collection cycle succeeded (1) or failed (0)",
		}),
		FetchDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdig_posture",
			Subsystem: "exporter",
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of the last posture API fetch",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sysdig_posture",
			Subsystem: "exporter",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed collection cycles",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdig_posture",
			Subsystem: "exporter",
			Name:      "last_success_timestamp_seconds",
			Help:      "Completion time of the last successful collection cycle",
		}),
		Samples: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "sysdig_posture",
			Subsystem: "exporter",
			Name:      "snapshot_samples",
			Help:      "Number of samples in the currently published snapshot",
		}),
		StaleRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sysdig_posture",
			Subsystem: "exporter",
			Name:      "stale_records_total",
			Help:      "Total number of records excluded by the staleness guard",
		}),
	}
}
