package metrics

import (
	"bytes"
	"fmt"
	"sync/atomic"

	"github.com/de-tools/posture-exporter/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const metricNamePrefix = "sysdig_posture_"

// ContentType is the exposition content type matching Render's output.
var ContentType = string(expfmt.NewFormat(expfmt.TypeTextPlain))

var helpByKind = map[domain.MetricKind]string{
	domain.MetricPassingRequirements:      "Number of passing requirements",
	domain.MetricFailedRequirements:       "Number of failed requirements",
	domain.MetricEvaluatedResources:       "Number of evaluated resources",
	domain.MetricFailedControls:           "Number of failed controls",
	domain.MetricHighSeverityViolations:   "Number of high severity resource violations",
	domain.MetricMediumSeverityViolations: "Number of medium severity resource violations",
	domain.MetricLowSeverityViolations:    "Number of low severity resource violations",
}

// Registry holds the latest published collection snapshot and renders it as
// Prometheus exposition text. Replace and Render are safe for concurrent use:
// a reader observes either the fully-old or fully-new snapshot, never a mix.
type Registry struct {
	prom     *prometheus.Registry
	descs    map[domain.MetricKind]*prometheus.Desc
	snapshot atomic.Pointer[domain.CollectionSnapshot]
}

func NewRegistry() *Registry {
	kinds := domain.MetricKinds()
	r := &Registry{
		prom:  prometheus.NewRegistry(),
		descs: make(map[domain.MetricKind]*prometheus.Desc, len(kinds)),
	}
	for _, kind := range kinds {
		r.descs[kind] = prometheus.NewDesc(
			metricNamePrefix+string(kind),
			helpByKind[kind],
			[]string{"policy", "zone"},
			nil,
		)
	}
	r.prom.MustRegister(&snapshotCollector{registry: r})
	return r
}

// Replace publishes a new snapshot wholesale. The previous snapshot is
// never mutated; in-flight renders keep reading it.
func (r *Registry) Replace(snapshot *domain.CollectionSnapshot) {
	r.snapshot.Store(snapshot)
}

// Snapshot returns the currently published snapshot, nil before the first Replace.
func (r *Registry) Snapshot() *domain.CollectionSnapshot {
	return r.snapshot.Load()
}

// Registerer lets additional collectors share the exposition endpoint.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.prom
}

// Render encodes the current registry state as exposition text. Gathering
// sorts families by name and samples by label values, so rendering an
// unchanged registry twice yields byte-identical output. Before the first
// Replace the output carries no posture samples.
func (r *Registry) Render() ([]byte, error) {
	families, err := r.prom.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metric families: %w", err)
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return nil, fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// snapshotCollector adapts the published snapshot to prometheus.Collector.
// All posture metrics are gauges; values move in both directions between
// collection cycles.
type snapshotCollector struct {
	registry *Registry
}

func (c *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, kind := range domain.MetricKinds() {
		ch <- c.registry.descs[kind]
	}
}

func (c *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.registry.snapshot.Load()
	if snapshot == nil {
		return
	}
	for _, sample := range snapshot.Samples {
		desc, ok := c.registry.descs[sample.Kind]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, sample.Value, sample.Policy, sample.Zone)
	}
}
