package criteria

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	criteriaTypes "github.com/mzd555/criteria-poc/pkg/criteria/types"
	"github.com/mzd555/criteria-poc/pkg/db"
)

var indexesForCriteriaRulesCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "studyKey", Value: 1},
		},
		Options: options.Index().SetName("studyKey_1"),
	},
	{
		Keys: bson.D{
			{Key: "studyKey", Value: 1},
			{Key: "criteriaID", Value: 1},
		},
		Options: options.Index().SetName("studyKey_1_criteriaID_1").SetUnique(true),
	},
}

func (dbService *CriteriaDBService) CreateDefaultIndexesForCriteriaRulesCollection() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	collection := dbService.collectionCriteriaRules()

	existing, err := db.ListCollectionIndexes(ctx, collection)
	if err != nil {
		return err
	}
	existingNames := map[string]bool{}
	for _, index := range existing {
		if name, ok := index["name"].(string); ok {
			existingNames[name] = true
		}
	}

	toCreate := []mongo.IndexModel{}
	for _, index := range indexesForCriteriaRulesCollection {
		if index.Options != nil && index.Options.Name != nil && existingNames[*index.Options.Name] {
			continue
		}
		toCreate = append(toCreate, index)
	}
	if len(toCreate) == 0 {
		return nil
	}

	_, err = collection.Indexes().CreateMany(ctx, toCreate)
	return err
}

// SaveCriteriaRule upserts a rule by (studyKey, criteriaID). Re-extracting
// the same text overwrites the stored rule instead of duplicating it.
func (dbService *CriteriaDBService) SaveCriteriaRule(studyKey string, rule criteriaTypes.CriteriaRule) (criteriaTypes.CriteriaRule, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	rule.StudyKey = studyKey
	rule.UpdatedAt = time.Now()

	filter := bson.M{
		"studyKey":   studyKey,
		"criteriaID": rule.CriteriaID,
	}
	update := bson.M{
		"$set": bson.M{
			"studyKey":               rule.StudyKey,
			"criteriaID":             rule.CriteriaID,
			"ruleType":               rule.RuleType,
			"criteriaType":           rule.CriteriaType,
			"minAge":                 rule.MinAge,
			"maxAge":                 rule.MaxAge,
			"allowedGenders":         rule.AllowedGenders,
			"diagnosisCancerAllowed": rule.DiagnosisCancerAllowed,
			"historySmokingAllowed":  rule.HistorySmokingAllowed,
			"currentSmokingAllowed":  rule.CurrentSmokingAllowed,
			"currentPregnantAllowed": rule.CurrentPregnantAllowed,
			"description":            rule.Description,
			"isActive":               rule.IsActive,
			"updatedAt":              rule.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": rule.UpdatedAt,
		},
	}

	_, err := dbService.collectionCriteriaRules().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return rule, err
	}
	return rule, nil
}

// GetActiveCriteriaRules returns the active rules of a study ordered by
// (ruleType, criteriaID) so evaluation order is deterministic.
func (dbService *CriteriaDBService) GetActiveCriteriaRules(studyKey string) (rules []criteriaTypes.CriteriaRule, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"studyKey": studyKey,
		"isActive": true,
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "ruleType", Value: 1},
		{Key: "criteriaID", Value: 1},
	})

	cursor, err := dbService.collectionCriteriaRules().Find(ctx, filter, opts)
	if err != nil {
		return rules, err
	}
	defer cursor.Close(ctx)

	rules = []criteriaTypes.CriteriaRule{}
	if err = cursor.All(ctx, &rules); err != nil {
		return rules, err
	}
	return rules, nil
}

func (dbService *CriteriaDBService) DeleteCriteriaRules(studyKey string) (count int64, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionCriteriaRules().DeleteMany(ctx, bson.M{"studyKey": studyKey})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UpdateCriteriaRuleStatus toggles the active flag of one rule. Returns
// false when no rule with the given criteriaID exists for the study.
func (dbService *CriteriaDBService) UpdateCriteriaRuleStatus(studyKey string, criteriaID string, isActive bool) (bool, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"studyKey":   studyKey,
		"criteriaID": criteriaID,
	}
	update := bson.M{
		"$set": bson.M{
			"isActive":  isActive,
			"updatedAt": time.Now(),
		},
	}

	res, err := dbService.collectionCriteriaRules().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
