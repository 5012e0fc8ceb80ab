package api

// Wire types for the compliance-views response. The schema is owned by the
// remote service; unknown fields are ignored on decode. Values that feed a
// metric are pointers so that absent fields can be told apart from zeros and
// the record dropped instead of guessed at.

type ComplianceView struct {
	Data []ZonePosture `json:"data"`
}

type ZonePosture struct {
	ZoneName string          `json:"zoneName"`
	Policies []PolicyPosture `json:"policies"`
}

type PolicyPosture struct {
	Name                     string                    `json:"name"`
	FailedControls           *float64                  `json:"failedControls"`
	ResourceViolationSummary *ResourceViolationSummary `json:"resourceViolationSummary"`
	RequirementsHistory      []RequirementsEntry       `json:"requirementsHistory"`
}

type ResourceViolationSummary struct {
	HighSeverity   *float64 `json:"highSeverity"`
	MediumSeverity *float64 `json:"mediumSeverity"`
	LowSeverity    *float64 `json:"lowSeverity"`
}

type RequirementsEntry struct {
	Date                    string   `json:"date"` // epoch seconds as string
	RequirementPassingScore *float64 `json:"requirementPassingScore"`
	FailedRequirements      *float64 `json:"failedRequirements"`
	EvaluatedResources      *float64 `json:"evaluatedResources"`
}
