package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mzd555/criteria-poc/pkg/criteria/types"
)

// ID prefixes per rule category
const (
	ID_PREFIX_AGE              = "AGE"
	ID_PREFIX_GENDER           = "GEN"
	ID_PREFIX_DIAGNOSIS_CANCER = "CAN"
	ID_PREFIX_HISTORY_SMOKING  = "SMH"
	ID_PREFIX_CURRENT_SMOKING  = "SMC"
	ID_PREFIX_CURRENT_PREGNANT = "PRG"
)

// agePatterns are tried in order, the first match wins. The first three
// alternatives capture an explicit range, the rest capture a single bound.
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*years?\s*old`),
	regexp.MustCompile(`between\s*(\d+)\s*and\s*(\d+)\s*years`),
	regexp.MustCompile(`age\s*(\d+)\s*to\s*(\d+)`),
	regexp.MustCompile(`minimum\s*age\s*(\d+)`),
	regexp.MustCompile(`maximum\s*age\s*(\d+)`),
	regexp.MustCompile(`over\s*(\d+)\s*years`),
	regexp.MustCompile(`under\s*(\d+)\s*years`),
	regexp.MustCompile(`at\s*least\s*(\d+)\s*years`),
}

type genderPattern struct {
	pattern        *regexp.Regexp
	allowedGenders []string
}

var genderPatterns = []genderPattern{
	{regexp.MustCompile(`female\s*only|only\s*female|women\s*only`), []string{"female"}},
	{regexp.MustCompile(`male\s*only|only\s*male|men\s*only`), []string{"male"}},
	{regexp.MustCompile(`both\s*genders|all\s*genders|male\s*and\s*female`), []string{"male", "female"}},
}

type flagPattern struct {
	pattern      *regexp.Regexp
	allowed      bool
	criteriaType string
}

// flagCategory describes a boolean-valued rule category: one group of
// "not allowed" phrasings and one group of "allowed" phrasings.
type flagCategory struct {
	ruleType   string
	idPrefix   string
	label      string
	patterns   []flagPattern
	setAllowed func(rule *types.CriteriaRule, allowed bool)
}

// flagCategories in declaration order; sequence numbers are assigned across
// all categories in this order.
var flagCategories = []flagCategory{
	{
		ruleType: types.RULE_TYPE_DIAGNOSIS_CANCER,
		idPrefix: ID_PREFIX_DIAGNOSIS_CANCER,
		label:    "Cancer diagnosis",
		patterns: []flagPattern{
			{regexp.MustCompile(`no\s*cancer|cancer\s*free|without\s*cancer|exclude.*cancer`), false, types.CRITERIA_TYPE_EXCLUSION},
			{regexp.MustCompile(`cancer\s*allowed|cancer\s*permitted|with\s*cancer`), true, types.CRITERIA_TYPE_INCLUSION},
		},
		setAllowed: func(rule *types.CriteriaRule, allowed bool) {
			rule.DiagnosisCancerAllowed = &allowed
		},
	},
	{
		ruleType: types.RULE_TYPE_HISTORY_SMOKING,
		idPrefix: ID_PREFIX_HISTORY_SMOKING,
		label:    "Smoking history",
		patterns: []flagPattern{
			{regexp.MustCompile(`no\s*smoking\s*history|never\s*smoked|exclude.*smoking\s*history`), false, types.CRITERIA_TYPE_EXCLUSION},
			{regexp.MustCompile(`smoking\s*history\s*allowed|previous\s*smoking\s*ok|former\s*smoker`), true, types.CRITERIA_TYPE_INCLUSION},
		},
		setAllowed: func(rule *types.CriteriaRule, allowed bool) {
			rule.HistorySmokingAllowed = &allowed
		},
	},
	{
		ruleType: types.RULE_TYPE_CURRENT_SMOKING,
		idPrefix: ID_PREFIX_CURRENT_SMOKING,
		label:    "Current smoking",
		patterns: []flagPattern{
			{regexp.MustCompile(`no\s*current\s*smoking|non[-\s]*smoker|exclude.*current.*smok`), false, types.CRITERIA_TYPE_EXCLUSION},
			{regexp.MustCompile(`current\s*smoking\s*allowed|active\s*smoker\s*ok`), true, types.CRITERIA_TYPE_INCLUSION},
		},
		setAllowed: func(rule *types.CriteriaRule, allowed bool) {
			rule.CurrentSmokingAllowed = &allowed
		},
	},
	{
		ruleType: types.RULE_TYPE_CURRENT_PREGNANT,
		idPrefix: ID_PREFIX_CURRENT_PREGNANT,
		label:    "Pregnancy",
		patterns: []flagPattern{
			{regexp.MustCompile(`not\s*pregnant|exclude.*pregnan|no\s*pregnancy`), false, types.CRITERIA_TYPE_EXCLUSION},
			{regexp.MustCompile(`pregnancy\s*allowed|pregnant\s*women\s*ok`), true, types.CRITERIA_TYPE_INCLUSION},
		},
		setAllowed: func(rule *types.CriteriaRule, allowed bool) {
			rule.CurrentPregnantAllowed = &allowed
		},
	},
}

// Extract scans the criteria text and returns the structured rules it could
// recognize. Each category contributes at most one rule; the result is empty
// when no category matched. The returned rules have no study key attached.
func Extract(criteriaText string) []types.CriteriaRule {
	text := strings.ToLower(criteriaText)

	rules := []types.CriteriaRule{}
	counter := 1

	if rule, ok := matchAgeRule(text, &counter); ok {
		rules = append(rules, rule)
	}
	if rule, ok := matchGenderRule(text, &counter); ok {
		rules = append(rules, rule)
	}
	for _, category := range flagCategories {
		if rule, ok := matchFlagRule(category, text, &counter); ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

// nextCriteriaID returns e.g. "AGE001" and advances the shared counter so
// that sequence numbers increase across categories within one extraction.
func nextCriteriaID(prefix string, counter *int) string {
	id := fmt.Sprintf("%s%03d", prefix, *counter)
	*counter++
	return id
}

func matchAgeRule(text string, counter *int) (rule types.CriteriaRule, ok bool) {
	for _, pattern := range agePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		var minAge, maxAge *int
		if len(match) > 2 && match[2] != "" {
			low, _ := strconv.Atoi(match[1])
			high, _ := strconv.Atoi(match[2])
			minAge = &low
			maxAge = &high
		} else {
			// Single bound: decide min vs max from keywords anywhere in the
			// text, not from the matched pattern. Min keywords are checked
			// first, so text containing both keyword sets gets a min bound.
			bound, _ := strconv.Atoi(match[1])
			if strings.Contains(text, "minimum") || strings.Contains(text, "at least") || strings.Contains(text, "over") {
				minAge = &bound
			} else if strings.Contains(text, "maximum") || strings.Contains(text, "under") {
				maxAge = &bound
			}
		}

		descParts := []string{}
		if minAge != nil {
			descParts = append(descParts, fmt.Sprintf("min %d", *minAge))
		}
		if maxAge != nil {
			descParts = append(descParts, fmt.Sprintf("max %d", *maxAge))
		}

		return types.CriteriaRule{
			CriteriaID:   nextCriteriaID(ID_PREFIX_AGE, counter),
			RuleType:     types.RULE_TYPE_AGE,
			CriteriaType: types.CRITERIA_TYPE_INCLUSION,
			MinAge:       minAge,
			MaxAge:       maxAge,
			Description:  "Age criteria: " + strings.Join(descParts, " "),
		}, true
	}
	return rule, false
}

func matchGenderRule(text string, counter *int) (rule types.CriteriaRule, ok bool) {
	for _, gp := range genderPatterns {
		if !gp.pattern.MatchString(text) {
			continue
		}
		return types.CriteriaRule{
			CriteriaID:     nextCriteriaID(ID_PREFIX_GENDER, counter),
			RuleType:       types.RULE_TYPE_GENDER,
			CriteriaType:   types.CRITERIA_TYPE_INCLUSION,
			AllowedGenders: gp.allowedGenders,
			Description:    "Gender restriction: " + strings.Join(gp.allowedGenders, ", "),
		}, true
	}
	return rule, false
}

func matchFlagRule(category flagCategory, text string, counter *int) (rule types.CriteriaRule, ok bool) {
	for _, fp := range category.patterns {
		if !fp.pattern.MatchString(text) {
			continue
		}

		desc := category.label + " not allowed"
		if fp.allowed {
			desc = category.label + " allowed"
		}

		rule = types.CriteriaRule{
			CriteriaID:   nextCriteriaID(category.idPrefix, counter),
			RuleType:     category.ruleType,
			CriteriaType: fp.criteriaType,
			Description:  desc,
		}
		category.setAllowed(&rule, fp.allowed)
		return rule, true
	}
	return rule, false
}
