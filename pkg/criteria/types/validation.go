package types

// RuleViolation describes a single rule failure for a single record.
type RuleViolation struct {
	CriteriaID    string `json:"criteriaId"`
	RuleType      string `json:"ruleType"`
	Message       string `json:"message"`
	ExpectedValue string `json:"expectedValue"`
	ActualValue   string `json:"actualValue"`
}

// RecordValidationResult is the per-record outcome of a validation run.
// Passed is true exactly when Violations is empty.
type RecordValidationResult struct {
	RecordIndex    int               `json:"recordIndex"`
	RecordData     ParticipantRecord `json:"recordData"`
	Passed         bool              `json:"passed"`
	Violations     []RuleViolation   `json:"violations"`
	ViolationCount int               `json:"violationCount"`
}

// ValidationSummary aggregates a validation run. PassRate is formatted as a
// percentage with two decimals, e.g. "66.67%".
type ValidationSummary struct {
	Total    int    `json:"total"`
	Passed   int    `json:"passed"`
	Failed   int    `json:"failed"`
	PassRate string `json:"passRate"`
}
