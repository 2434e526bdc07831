package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mzd555/criteria-poc/pkg/criteria/types"
	"github.com/mzd555/criteria-poc/pkg/utils"
)

var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// ValidateRecords evaluates every record against every rule and aggregates
// the outcome. Records are processed in input order; data problems in a
// record become violations on that record, they never abort the batch.
// Ages are computed against a single reference time taken at batch start.
func ValidateRecords(rules []types.CriteriaRule, records []types.ParticipantRecord) ([]types.RecordValidationResult, types.ValidationSummary) {
	now := time.Now()

	results := make([]types.RecordValidationResult, 0, len(records))
	passedCount := 0
	for i, record := range records {
		result := validateSingleRecord(record, rules, i, now)
		if result.Passed {
			passedCount++
		}
		results = append(results, result)
	}

	summary := types.ValidationSummary{
		Total:    len(results),
		Passed:   passedCount,
		Failed:   len(results) - passedCount,
		PassRate: formatPassRate(passedCount, len(results)),
	}
	return results, summary
}

func formatPassRate(passed int, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(passed)/float64(total)*100)
}

func validateSingleRecord(record types.ParticipantRecord, rules []types.CriteriaRule, recordIndex int, now time.Time) types.RecordValidationResult {
	violations := []types.RuleViolation{}
	for _, rule := range rules {
		if violation := checkRule(record, rule, now); violation != nil {
			violations = append(violations, *violation)
		}
	}

	return types.RecordValidationResult{
		RecordIndex:    recordIndex,
		RecordData:     record,
		Passed:         len(violations) == 0,
		Violations:     violations,
		ViolationCount: len(violations),
	}
}

// checkRule returns nil when the record satisfies the rule. Rule types this
// service does not know are skipped without a violation.
func checkRule(record types.ParticipantRecord, rule types.CriteriaRule, now time.Time) *types.RuleViolation {
	switch rule.RuleType {
	case types.RULE_TYPE_AGE:
		return checkAgeRule(record, rule, now)
	case types.RULE_TYPE_GENDER:
		return checkGenderRule(record, rule)
	case types.RULE_TYPE_DIAGNOSIS_CANCER:
		return checkCancerRule(record, rule)
	case types.RULE_TYPE_HISTORY_SMOKING:
		return checkSmokingHistoryRule(record, rule)
	case types.RULE_TYPE_CURRENT_SMOKING:
		return checkCurrentSmokingRule(record, rule)
	case types.RULE_TYPE_CURRENT_PREGNANT:
		return checkPregnancyRule(record, rule)
	default:
		return nil
	}
}

// ageAt computes whole years between dob and the reference date, counting a
// year only once its month/day anniversary has passed.
func ageAt(dob string, ref time.Time) (int, error) {
	if dob == "" {
		return 0, errors.New("dob not provided")
	}

	var birthDate time.Time
	var err error
	for _, layout := range dobLayouts {
		birthDate, err = time.Parse(layout, dob)
		if err == nil {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("could not parse dob: %s", dob)
	}

	age := ref.Year() - birthDate.Year()
	if ref.Month() < birthDate.Month() ||
		(ref.Month() == birthDate.Month() && ref.Day() < birthDate.Day()) {
		age--
	}
	return age, nil
}

func checkAgeRule(record types.ParticipantRecord, rule types.CriteriaRule, now time.Time) *types.RuleViolation {
	age, err := ageAt(record.Dob, now)
	if err != nil {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Date of birth is required but not provided or invalid",
			ExpectedValue: fmt.Sprintf("%s - %s years", ageBoundText(rule.MinAge), ageBoundText(rule.MaxAge)),
			ActualValue:   "missing/invalid dob",
		}
	}

	if rule.MinAge != nil && age < *rule.MinAge {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       fmt.Sprintf("Age %d (calculated from dob) is below minimum age %d", age, *rule.MinAge),
			ExpectedValue: fmt.Sprintf(">= %d years", *rule.MinAge),
			ActualValue:   fmt.Sprintf("%d years", age),
		}
	}

	if rule.MaxAge != nil && age > *rule.MaxAge {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       fmt.Sprintf("Age %d (calculated from dob) is above maximum age %d", age, *rule.MaxAge),
			ExpectedValue: fmt.Sprintf("<= %d years", *rule.MaxAge),
			ActualValue:   fmt.Sprintf("%d years", age),
		}
	}

	return nil
}

func ageBoundText(bound *int) string {
	if bound == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *bound)
}

func checkGenderRule(record types.ParticipantRecord, rule types.CriteriaRule) *types.RuleViolation {
	expected := strings.Join(rule.AllowedGenders, " or ")

	if record.Gender == "" {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Gender is required but not provided",
			ExpectedValue: expected,
			ActualValue:   "missing",
		}
	}

	if !utils.ContainsString(rule.AllowedGenders, strings.ToLower(record.Gender)) {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       fmt.Sprintf("Gender '%s' is not allowed", record.Gender),
			ExpectedValue: expected,
			ActualValue:   record.Gender,
		}
	}

	return nil
}

func checkCancerRule(record types.ParticipantRecord, rule types.CriteriaRule) *types.RuleViolation {
	allowed := rule.DiagnosisCancerAllowed != nil && *rule.DiagnosisCancerAllowed

	expected := "no cancer (current or history)"
	if allowed {
		expected = "any cancer status allowed"
	}

	if record.HasCancer == nil || record.HadCancer == nil {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Cancer diagnosis information (has_cancer, had_cancer) is required but not provided",
			ExpectedValue: expected,
			ActualValue:   "missing cancer information",
		}
	}

	if !allowed && (*record.HasCancer || *record.HadCancer) {
		cancerStatus := []string{}
		if *record.HasCancer {
			cancerStatus = append(cancerStatus, "current cancer")
		}
		if *record.HadCancer {
			cancerStatus = append(cancerStatus, "cancer history")
		}

		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Cancer is not allowed but participant has: " + strings.Join(cancerStatus, " and "),
			ExpectedValue: "no cancer diagnosis (current or history)",
			ActualValue:   strings.Join(cancerStatus, " and "),
		}
	}

	return nil
}

func checkSmokingHistoryRule(record types.ParticipantRecord, rule types.CriteriaRule) *types.RuleViolation {
	allowed := rule.HistorySmokingAllowed != nil && *rule.HistorySmokingAllowed

	if record.WasSmoker == nil {
		expected := "no smoking history"
		if allowed {
			expected = "any smoking history allowed"
		}
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Smoking history information (was_smoker) is required but not provided",
			ExpectedValue: expected,
			ActualValue:   "missing",
		}
	}

	if !allowed && *record.WasSmoker {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Smoking history is not allowed but participant was a smoker",
			ExpectedValue: "no smoking history",
			ActualValue:   "was a smoker",
		}
	}

	return nil
}

func checkCurrentSmokingRule(record types.ParticipantRecord, rule types.CriteriaRule) *types.RuleViolation {
	allowed := rule.CurrentSmokingAllowed != nil && *rule.CurrentSmokingAllowed

	if record.IsSmoker == nil {
		expected := "non-smoker"
		if allowed {
			expected = "any current smoking status allowed"
		}
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Current smoking information (is_smoker) is required but not provided",
			ExpectedValue: expected,
			ActualValue:   "missing",
		}
	}

	if !allowed && *record.IsSmoker {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Current smoking is not allowed but participant is a current smoker",
			ExpectedValue: "non-smoker",
			ActualValue:   "current smoker",
		}
	}

	return nil
}

func checkPregnancyRule(record types.ParticipantRecord, rule types.CriteriaRule) *types.RuleViolation {
	allowed := rule.CurrentPregnantAllowed != nil && *rule.CurrentPregnantAllowed

	if record.IsPregnant == nil {
		expected := "not pregnant"
		if allowed {
			expected = "any pregnancy status allowed"
		}
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Pregnancy information (is_pregnant) is required but not provided",
			ExpectedValue: expected,
			ActualValue:   "missing",
		}
	}

	if !allowed && *record.IsPregnant {
		return &types.RuleViolation{
			CriteriaID:    rule.CriteriaID,
			RuleType:      rule.RuleType,
			Message:       "Pregnancy is not allowed but participant is currently pregnant",
			ExpectedValue: "not pregnant",
			ActualValue:   "pregnant",
		}
	}

	return nil
}
