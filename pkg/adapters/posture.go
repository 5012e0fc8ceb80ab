package adapters

import (
	"context"
	"strconv"
	"time"

	"github.com/de-tools/posture-exporter/pkg/models/api"
	"github.com/de-tools/posture-exporter/pkg/models/domain"
	"github.com/rs/zerolog"
)

type policyZone struct {
	policy string
	zone   string
}

// MapComplianceViewToRecords flattens the compliance-views payload into one
// ComplianceRecord per (policy, zone) pair. Each record takes its counts and
// freshness timestamp from the youngest requirements-history entry, matching
// how the posture API reports the current evaluation. Records missing a
// required field are dropped whole rather than filled with guesses, and a
// repeated (policy, zone) pair keeps its first occurrence only.
func MapComplianceViewToRecords(ctx context.Context, view api.ComplianceView) []domain.ComplianceRecord {
	logger := zerolog.Ctx(ctx)

	records := make([]domain.ComplianceRecord, 0, len(view.Data))
	seen := make(map[policyZone]struct{})

	for _, zone := range view.Data {
		for _, policy := range zone.Policies {
			record, ok := mapPolicyPosture(zone.ZoneName, policy)
			if !ok {
				logger.Warn().
					Str("zone", zone.ZoneName).
					Str("policy", policy.Name).
					Msg("dropping compliance record with missing or malformed fields")
				continue
			}

			key := policyZone{policy: record.Policy, zone: record.Zone}
			if _, dup := seen[key]; dup {
				logger.Warn().
					Str("zone", record.Zone).
					Str("policy", record.Policy).
					Msg("dropping duplicate compliance record")
				continue
			}
			seen[key] = struct{}{}

			records = append(records, record)
		}
	}

	return records
}

func mapPolicyPosture(zoneName string, policy api.PolicyPosture) (domain.ComplianceRecord, bool) {
	if zoneName == "" || policy.Name == "" {
		return domain.ComplianceRecord{}, false
	}
	if policy.FailedControls == nil || policy.ResourceViolationSummary == nil {
		return domain.ComplianceRecord{}, false
	}

	summary := policy.ResourceViolationSummary
	if summary.HighSeverity == nil || summary.MediumSeverity == nil || summary.LowSeverity == nil {
		return domain.ComplianceRecord{}, false
	}

	entry, collectedAt, ok := youngestEntry(policy.RequirementsHistory)
	if !ok {
		return domain.ComplianceRecord{}, false
	}
	if entry.RequirementPassingScore == nil || entry.FailedRequirements == nil || entry.EvaluatedResources == nil {
		return domain.ComplianceRecord{}, false
	}

	record := domain.ComplianceRecord{
		Policy:      policy.Name,
		Zone:        zoneName,
		CollectedAt: collectedAt,

		PassingRequirements:      *entry.RequirementPassingScore,
		FailedRequirements:       *entry.FailedRequirements,
		EvaluatedResources:       *entry.EvaluatedResources,
		FailedControls:           *policy.FailedControls,
		HighSeverityViolations:   *summary.HighSeverity,
		MediumSeverityViolations: *summary.MediumSeverity,
		LowSeverityViolations:    *summary.LowSeverity,
	}
	if hasNegativeCount(record) {
		return domain.ComplianceRecord{}, false
	}

	return record, true
}

// youngestEntry returns the history entry with the most recent date.
// Entries whose date does not parse as epoch seconds are ignored.
func youngestEntry(history []api.RequirementsEntry) (api.RequirementsEntry, time.Time, bool) {
	var (
		youngest    api.RequirementsEntry
		youngestSec int64
		found       bool
	)

	for _, entry := range history {
		sec, err := strconv.ParseInt(entry.Date, 10, 64)
		if err != nil || sec <= 0 {
			continue
		}
		if !found || sec > youngestSec {
			youngest = entry
			youngestSec = sec
			found = true
		}
	}

	if !found {
		return api.RequirementsEntry{}, time.Time{}, false
	}
	return youngest, time.Unix(youngestSec, 0).UTC(), true
}

func hasNegativeCount(record domain.ComplianceRecord) bool {
	return record.PassingRequirements < 0 ||
		record.FailedRequirements < 0 ||
		record.EvaluatedResources < 0 ||
		record.FailedControls < 0 ||
		record.HighSeverityViolations < 0 ||
		record.MediumSeverityViolations < 0 ||
		record.LowSeverityViolations < 0
}
