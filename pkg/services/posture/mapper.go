package posture

import (
	"time"

	"github.com/de-tools/posture-exporter/pkg/models/domain"
)

// Mapper turns compliance records into metric samples. Records whose
// youngest data point is older than NoDataThreshold are excluded whole:
// a scraper must see the metric absent, not silently stale.
type Mapper struct {
	NoDataThreshold time.Duration
}

// Map emits one sample per metric kind for every record fresh enough to
// report, preserving input order. The second return value counts records
// excluded by the staleness guard.
func (m Mapper) Map(records []domain.ComplianceRecord, now time.Time) ([]domain.MetricSample, int) {
	kinds := domain.MetricKinds()
	samples := make([]domain.MetricSample, 0, len(records)*len(kinds))
	dropped := 0

	for _, record := range records {
		if now.Sub(record.CollectedAt) > m.NoDataThreshold {
			dropped++
			continue
		}
		for _, kind := range kinds {
			samples = append(samples, domain.MetricSample{
				Policy: record.Policy,
				Zone:   record.Zone,
				Kind:   kind,
				Value:  kindValue(record, kind),
			})
		}
	}

	return samples, dropped
}

func kindValue(record domain.ComplianceRecord, kind domain.MetricKind) float64 {
	switch kind {
	case domain.MetricPassingRequirements:
		return record.PassingRequirements
	case domain.MetricFailedRequirements:
		return record.FailedRequirements
	case domain.MetricEvaluatedResources:
		return record.EvaluatedResources
	case domain.MetricFailedControls:
		return record.FailedControls
	case domain.MetricHighSeverityViolations:
		return record.HighSeverityViolations
	case domain.MetricMediumSeverityViolations:
		return record.MediumSeverityViolations
	case domain.MetricLowSeverityViolations:
		return record.LowSeverityViolations
	}
	return 0
}
