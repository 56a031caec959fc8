package env

import (
	"errors"
	"os"

	"github.com/campushub/batch-ingest/internal/domain/infra"
	"github.com/campushub/batch-ingest/internal/infra/mongostore"
)

const (
	ERR_MISSING_ENTITY = "INGEST_ENTITY environment variable is not set"
	ERR_MISSING_INPUT  = "either INGEST_FILE_PATH or BUCKET & INGEST_OBJECT must be set"
)

var (
	ErrMissingEntity = errors.New(ERR_MISSING_ENTITY)
	ErrMissingInput  = errors.New(ERR_MISSING_INPUT)
)

// BuildMongoStoreConfig constructs the Mongo store config from environment
// variables; direct selects the single-host connection over the cluster one.
func BuildMongoStoreConfig(direct bool) infra.StoreConfig {
	dbProtocol := os.Getenv("MONGO_PROTOCOL")
	dbUser := os.Getenv("MONGO_USERNAME")
	dbPwd := os.Getenv("MONGO_PASSWORD")
	dbName := os.Getenv("MONGO_DBNAME")

	dbHost := os.Getenv("MONGO_HOST_LIST")
	dbParams := os.Getenv("MONGO_CLUS_CONN_PARAMS")
	if direct {
		dbParams = os.Getenv("MONGO_DIR_CONN_PARAMS")
		dbHost = os.Getenv("MONGO_HOST_NAME")
	}
	return mongostore.NewMongoDBConfig(dbProtocol, dbHost, dbUser, dbPwd, dbParams, dbName)
}

// IngestWorkerConfig carries the one-shot import worker's knobs.
type IngestWorkerConfig struct {
	Entity      string
	Actor       string
	FilePath    string
	Bucket      string
	Object      string
	Delimiter   rune
	MetricsAddr string
}

// BuildIngestWorkerConfig constructs the worker config from environment
// variables. A local file path and a bucket object are mutually exclusive
// inputs; the file path wins when both are set.
func BuildIngestWorkerConfig() (IngestWorkerConfig, error) {
	cfg := IngestWorkerConfig{
		Entity:      os.Getenv("INGEST_ENTITY"),
		Actor:       os.Getenv("INGEST_ACTOR"),
		FilePath:    os.Getenv("INGEST_FILE_PATH"),
		Bucket:      os.Getenv("BUCKET"),
		Object:      os.Getenv("INGEST_OBJECT"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	if d := os.Getenv("INGEST_DELIMITER"); d != "" {
		cfg.Delimiter = []rune(d)[0]
	}

	if cfg.Entity == "" {
		return cfg, ErrMissingEntity
	}
	if cfg.FilePath == "" && (cfg.Bucket == "" || cfg.Object == "") {
		return cfg, ErrMissingInput
	}
	if cfg.Actor == "" {
		cfg.Actor = "batch-ingest-worker"
	}

	return cfg, nil
}
