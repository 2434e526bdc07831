package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/mzd555/criteria-poc/pkg/criteria"
	"github.com/mzd555/criteria-poc/pkg/db"
	criteriaDB "github.com/mzd555/criteria-poc/pkg/db/criteria"
	"github.com/mzd555/criteria-poc/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	ENV_GIN_DEBUG_MODE           = "GIN_DEBUG_MODE"
	ENV_CRITERIA_API_LISTEN_PORT = "CRITERIA_API_LISTEN_PORT"
	ENV_CORS_ALLOW_ORIGINS       = "CORS_ALLOW_ORIGINS"

	ENV_API_KEYS = "API_KEYS"

	ENV_CRITERIA_DB_CONNECTION_STR     = "CRITERIA_DB_CONNECTION_STR"
	ENV_CRITERIA_DB_USERNAME           = "CRITERIA_DB_USERNAME"
	ENV_CRITERIA_DB_PASSWORD           = "CRITERIA_DB_PASSWORD"
	ENV_CRITERIA_DB_CONNECTION_PREFIX  = "CRITERIA_DB_CONNECTION_PREFIX"
	ENV_CRITERIA_DB_TIMEOUT            = "CRITERIA_DB_TIMEOUT"
	ENV_CRITERIA_DB_IDLE_CONN_TIMEOUT  = "CRITERIA_DB_IDLE_CONN_TIMEOUT"
	ENV_CRITERIA_DB_MAX_POOL_SIZE      = "CRITERIA_DB_MAX_POOL_SIZE"
	ENV_CRITERIA_DB_NAME_PREFIX        = "CRITERIA_DB_NAME_PREFIX"
	ENV_CRITERIA_DB_RUN_INDEX_CREATION = "CRITERIA_DB_RUN_INDEX_CREATION"

	ENV_LOG_TO_FILE     = "LOG_TO_FILE"
	ENV_LOG_FILENAME    = "LOG_FILENAME"
	ENV_LOG_MAX_SIZE    = "LOG_MAX_SIZE"
	ENV_LOG_MAX_AGE     = "LOG_MAX_AGE"
	ENV_LOG_MAX_BACKUPS = "LOG_MAX_BACKUPS"
	ENV_LOG_LEVEL       = "LOG_LEVEL"
	ENV_LOG_INCLUDE_SRC = "LOG_INCLUDE_SRC"
)

var (
	criteriaDBService *criteriaDB.CriteriaDBService
)

type Config struct {
	// Gin configs
	GinDebugMode bool     `json:"gin_debug_mode" yaml:"gin_debug_mode"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
	Port         string   `json:"port" yaml:"port"`

	// API keys to protect the criteria endpoints; empty list disables the check
	APIKeys []string `json:"api_keys" yaml:"api_keys"`

	CriteriaDBConfig db.DBConfig `json:"criteria_db_config" yaml:"criteria_db_config"`
}

func init() {
	utils.ReadConfigFromEnvAndInitLogger(
		ENV_LOG_LEVEL,
		ENV_LOG_INCLUDE_SRC,
		ENV_LOG_TO_FILE,
		ENV_LOG_FILENAME,
		ENV_LOG_MAX_SIZE,
		ENV_LOG_MAX_AGE,
		ENV_LOG_MAX_BACKUPS,
	)

	conf = initConfig()
	if !conf.GinDebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	initDBs()

	criteria.Init(criteriaDBService)
}

func initConfig() Config {
	conf := Config{}

	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		fmt.Println("Error reading config file: " + err.Error())
		conf = Config{}
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		fmt.Println("Error reading config file: " + err.Error())
		conf = Config{}
	}

	conf.GinDebugMode = os.Getenv(ENV_GIN_DEBUG_MODE) == "true"
	if port := os.Getenv(ENV_CRITERIA_API_LISTEN_PORT); port != "" {
		conf.Port = port
	}
	if origins := os.Getenv(ENV_CORS_ALLOW_ORIGINS); origins != "" {
		conf.AllowOrigins = strings.Split(origins, ",")
	}
	if apiKeys := os.Getenv(ENV_API_KEYS); apiKeys != "" {
		conf.APIKeys = strings.Split(apiKeys, ",")
	}

	// Criteria db configs
	conf.CriteriaDBConfig = readCriteriaDBConfig()
	return conf
}

func readCriteriaDBConfig() db.DBConfig {
	return db.ReadDBConfigFromEnv(
		"criteria DB",
		ENV_CRITERIA_DB_CONNECTION_STR,
		ENV_CRITERIA_DB_USERNAME,
		ENV_CRITERIA_DB_PASSWORD,
		ENV_CRITERIA_DB_CONNECTION_PREFIX,
		ENV_CRITERIA_DB_TIMEOUT,
		ENV_CRITERIA_DB_IDLE_CONN_TIMEOUT,
		ENV_CRITERIA_DB_MAX_POOL_SIZE,
		ENV_CRITERIA_DB_NAME_PREFIX,
		ENV_CRITERIA_DB_RUN_INDEX_CREATION,
	)
}

func initDBs() {
	var err error
	criteriaDBService, err = criteriaDB.NewCriteriaDBService(conf.CriteriaDBConfig)
	if err != nil {
		slog.Error("Error connecting to Criteria DB", slog.String("error", err.Error()))
		panic(err)
	}
}
