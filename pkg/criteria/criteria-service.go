package criteria

import (
	"fmt"
	"log/slog"

	"github.com/mzd555/criteria-poc/pkg/criteria/extractor"
	"github.com/mzd555/criteria-poc/pkg/criteria/types"
	"github.com/mzd555/criteria-poc/pkg/criteria/validator"
)

// CriteriaDBService is the persistence contract this package consumes.
// Implemented by pkg/db/criteria.
type CriteriaDBService interface {
	SaveCriteriaRule(studyKey string, rule types.CriteriaRule) (types.CriteriaRule, error)
	GetActiveCriteriaRules(studyKey string) ([]types.CriteriaRule, error)
	DeleteCriteriaRules(studyKey string) (int64, error)
	UpdateCriteriaRuleStatus(studyKey string, criteriaID string, isActive bool) (bool, error)
}

var (
	criteriaDBService CriteriaDBService
)

func Init(criteriaDB CriteriaDBService) {
	criteriaDBService = criteriaDB
}

// ExtractionResult is the outcome of an extract-and-store call. Success is
// false when the text contained no recognizable criteria, which is not an
// error condition.
type ExtractionResult struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	RulesStored int                  `json:"rulesStored"`
	Rules       []types.CriteriaRule `json:"rules,omitempty"`
}

// ValidationReport is the outcome of a validation call. Success is false
// when the study has no active criteria.
type ValidationReport struct {
	Success bool                           `json:"success"`
	Message string                         `json:"message,omitempty"`
	Summary *types.ValidationSummary       `json:"summary,omitempty"`
	Results []types.RecordValidationResult `json:"results"`
}

// ExtractAndStoreCriteria runs the extractor on the criteria text and
// persists every produced rule for the study.
func ExtractAndStoreCriteria(studyKey string, criteriaText string) (ExtractionResult, error) {
	extractedRules := extractor.Extract(criteriaText)

	if len(extractedRules) == 0 {
		return ExtractionResult{
			Success:     false,
			Message:     "No relevant criteria found in the provided text",
			RulesStored: 0,
		}, nil
	}

	storedRules := make([]types.CriteriaRule, 0, len(extractedRules))
	for _, rule := range extractedRules {
		rule.IsActive = true
		storedRule, err := criteriaDBService.SaveCriteriaRule(studyKey, rule)
		if err != nil {
			slog.Error("Error storing criteria rule", slog.String("studyKey", studyKey), slog.String("criteriaID", rule.CriteriaID), slog.String("error", err.Error()))
			return ExtractionResult{}, err
		}
		storedRules = append(storedRules, storedRule)
	}

	return ExtractionResult{
		Success:     true,
		Message:     fmt.Sprintf("Successfully extracted and stored %d rules", len(storedRules)),
		RulesStored: len(storedRules),
		Rules:       storedRules,
	}, nil
}

// GetCriteriaForStudy returns the active rules of a study ordered by
// (ruleType, criteriaID).
func GetCriteriaForStudy(studyKey string) ([]types.CriteriaRule, error) {
	return criteriaDBService.GetActiveCriteriaRules(studyKey)
}

// ValidateParticipantData checks the caller supplied records against the
// active criteria of the study and returns the full report.
func ValidateParticipantData(studyKey string, records []types.ParticipantRecord) (ValidationReport, error) {
	rules, err := criteriaDBService.GetActiveCriteriaRules(studyKey)
	if err != nil {
		slog.Error("Error loading criteria rules", slog.String("studyKey", studyKey), slog.String("error", err.Error()))
		return ValidationReport{}, err
	}

	if len(rules) == 0 {
		return ValidationReport{
			Success: false,
			Message: "No criteria found for this study",
			Results: []types.RecordValidationResult{},
		}, nil
	}

	results, summary := validator.ValidateRecords(rules, records)
	return ValidationReport{
		Success: true,
		Summary: &summary,
		Results: results,
	}, nil
}

func DeleteCriteriaForStudy(studyKey string) (int64, error) {
	return criteriaDBService.DeleteCriteriaRules(studyKey)
}

// UpdateRuleStatus toggles one rule's active flag. Returns false when the
// rule does not exist for the study.
func UpdateRuleStatus(studyKey string, criteriaID string, isActive bool) (bool, error) {
	return criteriaDBService.UpdateCriteriaRuleStatus(studyKey, criteriaID, isActive)
}
