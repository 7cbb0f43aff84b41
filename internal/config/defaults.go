// Package config provides configuration loading, defaults, and validation for
// the Gap-Intelligence platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "gapintel"
	DefaultDBMaxConns = 25

	DefaultMigrationPath = "file://migrations"

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "gapintel-workers"
	DefaultTopicPrefix  = "gapintel"

	DefaultMilvusAddr = "localhost:19530"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultEmbeddingBaseURL   = "http://localhost:11434"
	DefaultEmbeddingModel     = "nomic-embed-text"
	DefaultEmbeddingDimension = 384
	DefaultEmbeddingBatchSize = 64

	DefaultAnsweredThreshold = 0.75
	DefaultPartialThreshold  = 0.50
	DefaultMatchTopK         = 5

	DefaultTransactionalThreshold = 0.6

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 10
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.  Fields
// already set by the caller are left unchanged so that explicit configuration
// always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultMigrationPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "gapintel:"
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	// ── Milvus ────────────────────────────────────────────────────────────────
	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.IndexType == "" {
		cfg.Milvus.IndexType = "HNSW"
	}
	if cfg.Milvus.CollectionPrefix == "" {
		cfg.Milvus.CollectionPrefix = "gapintel_"
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "gapintel-snapshots"
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = DefaultEmbeddingBaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = DefaultEmbeddingDimension
	}
	if cfg.Embedding.MaxBatchSize == 0 {
		cfg.Embedding.MaxBatchSize = DefaultEmbeddingBatchSize
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}

	// ── Enrichment ────────────────────────────────────────────────────────────
	if cfg.Enrichment.Timeout == 0 {
		cfg.Enrichment.Timeout = 60 * time.Second
	}

	// ── Matching ──────────────────────────────────────────────────────────────
	if cfg.Matching.AnsweredThreshold == 0 {
		cfg.Matching.AnsweredThreshold = DefaultAnsweredThreshold
	}
	if cfg.Matching.PartialThreshold == 0 {
		cfg.Matching.PartialThreshold = DefaultPartialThreshold
	}
	if cfg.Matching.TopK == 0 {
		cfg.Matching.TopK = DefaultMatchTopK
	}

	// ── NLP ───────────────────────────────────────────────────────────────────
	if cfg.NLP.TransactionalThreshold == 0 {
		cfg.NLP.TransactionalThreshold = DefaultTransactionalThreshold
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.Mode == "" {
		cfg.Worker.Mode = "local"
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
