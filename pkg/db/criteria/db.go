package criteria

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mzd555/criteria-poc/pkg/db"
)

const (
	COLLECTION_NAME_CRITERIA_RULES = "criteriaRules"
)

type CriteriaDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewCriteriaDBService(configs db.DBConfig) (*CriteriaDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	criteriaDBSc := &CriteriaDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		criteriaDBSc.ensureIndexes()
	}

	return criteriaDBSc, nil
}

func (dbService *CriteriaDBService) getDBName() string {
	return dbService.DBNamePrefix + "criteriaDB"
}

func (dbService *CriteriaDBService) collectionCriteriaRules() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_CRITERIA_RULES)
}

func (dbService *CriteriaDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *CriteriaDBService) ensureIndexes() {
	slog.Debug("Ensuring indexes for criteria DB")

	err := dbService.CreateDefaultIndexesForCriteriaRulesCollection()
	if err != nil {
		slog.Error("Error creating indexes for criteriaRules", slog.String("error", err.Error()))
	}
}
