package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RULE_TYPE_AGE              = "age"
	RULE_TYPE_GENDER           = "gender"
	RULE_TYPE_DIAGNOSIS_CANCER = "diagnosis_cancer"
	RULE_TYPE_HISTORY_SMOKING  = "history_smoking"
	RULE_TYPE_CURRENT_SMOKING  = "current_smoking"
	RULE_TYPE_CURRENT_PREGNANT = "current_pregnant"
)

const (
	CRITERIA_TYPE_INCLUSION = "inclusion"
	CRITERIA_TYPE_EXCLUSION = "exclusion"
)

// CriteriaRule defines the datamodel for a single structured eligibility
// constraint, scoped to a study, as stored in the database.
// Only the parameter fields matching RuleType are set, the others stay nil.
type CriteriaRule struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StudyKey     string             `bson:"studyKey" json:"study_id"`
	CriteriaID   string             `bson:"criteriaID" json:"criteria_id"`
	RuleType     string             `bson:"ruleType" json:"rule_type"`
	CriteriaType string             `bson:"criteriaType" json:"criteria_type"`

	MinAge                 *int     `bson:"minAge,omitempty" json:"min_age,omitempty"`
	MaxAge                 *int     `bson:"maxAge,omitempty" json:"max_age,omitempty"`
	AllowedGenders         []string `bson:"allowedGenders,omitempty" json:"allowed_genders,omitempty"`
	DiagnosisCancerAllowed *bool    `bson:"diagnosisCancerAllowed,omitempty" json:"diagnosis_cancer_allowed,omitempty"`
	HistorySmokingAllowed  *bool    `bson:"historySmokingAllowed,omitempty" json:"history_smoking_allowed,omitempty"`
	CurrentSmokingAllowed  *bool    `bson:"currentSmokingAllowed,omitempty" json:"current_smoking_allowed,omitempty"`
	CurrentPregnantAllowed *bool    `bson:"currentPregnantAllowed,omitempty" json:"current_pregnant_allowed,omitempty"`

	Description string    `bson:"description" json:"description"`
	IsActive    bool      `bson:"isActive" json:"is_active"`
	CreatedAt   time.Time `bson:"createdAt,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updated_at,omitempty"`
}
