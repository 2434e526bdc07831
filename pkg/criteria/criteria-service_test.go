package criteria

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/mzd555/criteria-poc/pkg/criteria/types"
)

// mockCriteriaDB keeps rules in memory, keyed like the unique index on
// (studyKey, criteriaID), so re-extraction overwrites instead of duplicating.
type mockCriteriaDB struct {
	rules     map[string]map[string]types.CriteriaRule
	saveError error
}

func newMockCriteriaDB() *mockCriteriaDB {
	return &mockCriteriaDB{
		rules: map[string]map[string]types.CriteriaRule{},
	}
}

func (m *mockCriteriaDB) SaveCriteriaRule(studyKey string, rule types.CriteriaRule) (types.CriteriaRule, error) {
	if m.saveError != nil {
		return types.CriteriaRule{}, m.saveError
	}
	if m.rules[studyKey] == nil {
		m.rules[studyKey] = map[string]types.CriteriaRule{}
	}
	rule.StudyKey = studyKey
	m.rules[studyKey][rule.CriteriaID] = rule
	return rule, nil
}

func (m *mockCriteriaDB) GetActiveCriteriaRules(studyKey string) ([]types.CriteriaRule, error) {
	rules := []types.CriteriaRule{}
	for _, rule := range m.rules[studyKey] {
		if rule.IsActive {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].RuleType != rules[j].RuleType {
			return rules[i].RuleType < rules[j].RuleType
		}
		return rules[i].CriteriaID < rules[j].CriteriaID
	})
	return rules, nil
}

func (m *mockCriteriaDB) DeleteCriteriaRules(studyKey string) (int64, error) {
	count := int64(len(m.rules[studyKey]))
	delete(m.rules, studyKey)
	return count, nil
}

func (m *mockCriteriaDB) UpdateCriteriaRuleStatus(studyKey string, criteriaID string, isActive bool) (bool, error) {
	rule, ok := m.rules[studyKey][criteriaID]
	if !ok {
		return false, nil
	}
	rule.IsActive = isActive
	m.rules[studyKey][criteriaID] = rule
	return true, nil
}

func boolPtr(v bool) *bool { return &v }

const testCriteriaText = "Participants must be 18-65 years old, female only, no smoking history, exclude pregnant women"

func TestExtractAndStoreCriteria(t *testing.T) {
	mockDB := newMockCriteriaDB()
	Init(mockDB)

	t.Run("stores extracted rules", func(t *testing.T) {
		result, err := ExtractAndStoreCriteria("study1", testCriteriaText)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Success {
			t.Error("expected success")
		}
		if result.RulesStored != 4 {
			t.Errorf("unexpected rule count: %d", result.RulesStored)
		}
		for _, rule := range result.Rules {
			if !rule.IsActive {
				t.Errorf("stored rule should be active: %+v", rule)
			}
			if rule.StudyKey != "study1" {
				t.Errorf("unexpected study key: %s", rule.StudyKey)
			}
		}
	})

	t.Run("re-extraction overwrites instead of duplicating", func(t *testing.T) {
		first, err := ExtractAndStoreCriteria("study2", testCriteriaText)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := ExtractAndStoreCriteria("study2", testCriteriaText)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.RulesStored != second.RulesStored {
			t.Errorf("rule counts differ: %d != %d", first.RulesStored, second.RulesStored)
		}

		rules, err := GetCriteriaForStudy("study2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rules) != first.RulesStored {
			t.Errorf("expected %d rules after re-extraction, got %d", first.RulesStored, len(rules))
		}
		firstIDs := map[string]bool{}
		for _, rule := range first.Rules {
			firstIDs[rule.CriteriaID] = true
		}
		for _, rule := range rules {
			if !firstIDs[rule.CriteriaID] {
				t.Errorf("unexpected criteria ID after re-extraction: %s", rule.CriteriaID)
			}
		}
	})

	t.Run("no criteria found", func(t *testing.T) {
		result, err := ExtractAndStoreCriteria("study3", "The study takes place in Berlin.")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success {
			t.Error("expected success to be false")
		}
		if result.Message != "No relevant criteria found in the provided text" {
			t.Errorf("unexpected message: %s", result.Message)
		}
		if result.RulesStored != 0 {
			t.Errorf("unexpected rule count: %d", result.RulesStored)
		}
	})

	t.Run("store error is propagated", func(t *testing.T) {
		mockDB.saveError = errors.New("db down")
		defer func() { mockDB.saveError = nil }()

		_, err := ExtractAndStoreCriteria("study4", testCriteriaText)
		if err == nil {
			t.Error("expected an error")
		}
	})
}

func TestValidateParticipantData(t *testing.T) {
	mockDB := newMockCriteriaDB()
	Init(mockDB)

	if _, err := ExtractAndStoreCriteria("study1", testCriteriaText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	passingDob := time.Now().AddDate(-30, 0, -1).Format("2006-01-02")

	t.Run("no criteria for study", func(t *testing.T) {
		report, err := ValidateParticipantData("unknown-study", []types.ParticipantRecord{
			{Dob: passingDob, Gender: "female"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Success {
			t.Error("expected success to be false")
		}
		if report.Message != "No criteria found for this study" {
			t.Errorf("unexpected message: %s", report.Message)
		}
	})

	t.Run("validates against stored rules", func(t *testing.T) {
		report, err := ValidateParticipantData("study1", []types.ParticipantRecord{
			{Dob: passingDob, Gender: "female", WasSmoker: boolPtr(false), IsPregnant: boolPtr(false)},
			{Dob: passingDob, Gender: "male", WasSmoker: boolPtr(false), IsPregnant: boolPtr(false)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.Success {
			t.Error("expected success")
		}
		if report.Summary == nil {
			t.Fatal("expected a summary")
		}
		if report.Summary.Passed != 1 || report.Summary.Failed != 1 {
			t.Errorf("unexpected summary: %+v", report.Summary)
		}
		if report.Summary.PassRate != "50.00%" {
			t.Errorf("unexpected pass rate: %s", report.Summary.PassRate)
		}
	})

	t.Run("inactive rules are ignored", func(t *testing.T) {
		rules, err := GetCriteriaForStudy("study1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var genderRuleID string
		for _, rule := range rules {
			if rule.RuleType == types.RULE_TYPE_GENDER {
				genderRuleID = rule.CriteriaID
			}
		}
		if genderRuleID == "" {
			t.Fatal("expected a gender rule")
		}
		if _, err := UpdateRuleStatus("study1", genderRuleID, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer UpdateRuleStatus("study1", genderRuleID, true)

		report, err := ValidateParticipantData("study1", []types.ParticipantRecord{
			{Dob: passingDob, Gender: "male", WasSmoker: boolPtr(false), IsPregnant: boolPtr(false)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !report.Results[0].Passed {
			t.Errorf("record should pass once the gender rule is inactive: %+v", report.Results[0])
		}
	})
}

func TestUpdateRuleStatus(t *testing.T) {
	mockDB := newMockCriteriaDB()
	Init(mockDB)

	result, err := ExtractAndStoreCriteria("study1", testCriteriaText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("existing rule", func(t *testing.T) {
		found, err := UpdateRuleStatus("study1", result.Rules[0].CriteriaID, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found {
			t.Error("expected the rule to be found")
		}

		rules, err := GetCriteriaForStudy("study1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, rule := range rules {
			if rule.CriteriaID == result.Rules[0].CriteriaID {
				t.Error("deactivated rule should not be returned as active")
			}
		}
	})

	t.Run("unknown rule", func(t *testing.T) {
		found, err := UpdateRuleStatus("study1", "AGE999", false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("expected the rule to not be found")
		}
	})
}

func TestDeleteCriteriaForStudy(t *testing.T) {
	mockDB := newMockCriteriaDB()
	Init(mockDB)

	result, err := ExtractAndStoreCriteria("study1", testCriteriaText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := DeleteCriteriaForStudy("study1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != int64(result.RulesStored) {
		t.Errorf("unexpected delete count: %d", count)
	}

	rules, err := GetCriteriaForStudy("study1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("expected no rules after delete, got %d", len(rules))
	}

	count, err = DeleteCriteriaForStudy("study1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("unexpected delete count for empty study: %d", count)
	}
}
