package domain

import "time"

type MetricKind string

const (
	MetricPassingRequirements      MetricKind = "passing_requirements"
	MetricFailedRequirements       MetricKind = "failed_requirements"
	MetricEvaluatedResources       MetricKind = "evaluated_resources"
	MetricFailedControls           MetricKind = "failed_controls"
	MetricHighSeverityViolations   MetricKind = "high_severity_violations"
	MetricMediumSeverityViolations MetricKind = "medium_severity_violations"
	MetricLowSeverityViolations    MetricKind = "low_severity_violations"
)

// MetricKinds returns every metric kind in stable emission order.
func MetricKinds() []MetricKind {
	return []MetricKind{
		MetricPassingRequirements,
		MetricFailedRequirements,
		MetricEvaluatedResources,
		MetricFailedControls,
		MetricHighSeverityViolations,
		MetricMediumSeverityViolations,
		MetricLowSeverityViolations,
	}
}

// ComplianceRecord is one (policy, zone) evaluation from the posture API,
// normalized to the youngest requirements-history entry.
type ComplianceRecord struct {
	Policy      string
	Zone        string
	CollectedAt time.Time // freshness indicator, UTC

	PassingRequirements      float64
	FailedRequirements       float64
	EvaluatedResources       float64
	FailedControls           float64
	HighSeverityViolations   float64
	MediumSeverityViolations float64
	LowSeverityViolations    float64
}

type MetricSample struct {
	Policy string
	Zone   string
	Kind   MetricKind
	Value  float64
}

// CollectionSnapshot holds the samples of one successful collection cycle.
// It is never mutated after construction; the registry swaps whole snapshots.
type CollectionSnapshot struct {
	Samples     []MetricSample
	CompletedAt time.Time
}
