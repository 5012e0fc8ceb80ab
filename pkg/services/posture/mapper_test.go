package posture

import (
	"testing"
	"time"

	"github.com/de-tools/posture-exporter/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cisRecord(collectedAt time.Time) domain.ComplianceRecord {
	return domain.ComplianceRecord{
		Policy:                   "CIS Kubernetes V1.24 Benchmark",
		Zone:                     "Entire Infrastructure",
		CollectedAt:              collectedAt,
		PassingRequirements:      15,
		FailedRequirements:       101,
		EvaluatedResources:       0,
		FailedControls:           106,
		HighSeverityViolations:   331,
		MediumSeverityViolations: 197,
		LowSeverityViolations:    174,
	}
}

func TestMapper_Map_FreshRecordEmitsSevenSamples(t *testing.T) {
	now := time.Date(2023, 10, 12, 12, 0, 0, 0, time.UTC)
	mapper := Mapper{NoDataThreshold: 24 * time.Hour}

	samples, dropped := mapper.Map([]domain.ComplianceRecord{cisRecord(now.Add(-2 * time.Hour))}, now)

	assert.Equal(t, 0, dropped)
	require.Len(t, samples, 7)

	wantValues := map[domain.MetricKind]float64{
		domain.MetricPassingRequirements:      15,
		domain.MetricFailedRequirements:       101,
		domain.MetricEvaluatedResources:       0,
		domain.MetricFailedControls:           106,
		domain.MetricHighSeverityViolations:   331,
		domain.MetricMediumSeverityViolations: 197,
		domain.MetricLowSeverityViolations:    174,
	}
	for _, sample := range samples {
		assert.Equal(t, "CIS Kubernetes V1.24 Benchmark", sample.Policy)
		assert.Equal(t, "Entire Infrastructure", sample.Zone)
		assert.Equal(t, wantValues[sample.Kind], sample.Value, "kind %s", sample.Kind)
	}
}

func TestMapper_Map_StaleRecordExcludedWhole(t *testing.T) {
	now := time.Date(2023, 10, 12, 12, 0, 0, 0, time.UTC)
	mapper := Mapper{NoDataThreshold: 24 * time.Hour}

	samples, dropped := mapper.Map([]domain.ComplianceRecord{cisRecord(now.Add(-30 * time.Hour))}, now)

	assert.Empty(t, samples)
	assert.Equal(t, 1, dropped)
}

func TestMapper_Map_AgeExactlyAtThresholdIsKept(t *testing.T) {
	now := time.Date(2023, 10, 12, 12, 0, 0, 0, time.UTC)
	mapper := Mapper{NoDataThreshold: 24 * time.Hour}

	samples, dropped := mapper.Map([]domain.ComplianceRecord{cisRecord(now.Add(-24 * time.Hour))}, now)

	assert.Len(t, samples, 7)
	assert.Equal(t, 0, dropped)
}

func TestMapper_Map_MixedFreshAndStale(t *testing.T) {
	now := time.Date(2023, 10, 12, 12, 0, 0, 0, time.UTC)
	mapper := Mapper{NoDataThreshold: 24 * time.Hour}

	fresh := cisRecord(now.Add(-1 * time.Hour))
	stale := cisRecord(now.Add(-48 * time.Hour))
	stale.Policy = "NIST 800-53"

	samples, dropped := mapper.Map([]domain.ComplianceRecord{stale, fresh}, now)

	require.Len(t, samples, 7)
	assert.Equal(t, 1, dropped)
	for _, sample := range samples {
		assert.Equal(t, "CIS Kubernetes V1.24 Benchmark", sample.Policy)
	}
}

func TestMapper_Map_EmptyInput(t *testing.T) {
	mapper := Mapper{NoDataThreshold: 24 * time.Hour}

	samples, dropped := mapper.Map(nil, time.Now().UTC())

	assert.Empty(t, samples)
	assert.Equal(t, 0, dropped)
}

func TestMapper_Map_DeterministicOrder(t *testing.T) {
	now := time.Date(2023, 10, 12, 12, 0, 0, 0, time.UTC)
	mapper := Mapper{NoDataThreshold: 24 * time.Hour}

	second := cisRecord(now.Add(-1 * time.Hour))
	second.Policy = "NIST 800-53"
	records := []domain.ComplianceRecord{cisRecord(now.Add(-1 * time.Hour)), second}

	first, _ := mapper.Map(records, now)
	repeat, _ := mapper.Map(records, now)

	require.Len(t, first, 14)
	require.Equal(t, first, repeat)

	// Input order is preserved and kinds stay in their fixed order.
	assert.Equal(t, "CIS Kubernetes V1.24 Benchmark", first[0].Policy)
	assert.Equal(t, "NIST 800-53", first[7].Policy)
	for i, kind := range domain.MetricKinds() {
		assert.Equal(t, kind, first[i].Kind)
		assert.Equal(t, kind, first[7+i].Kind)
	}
}
