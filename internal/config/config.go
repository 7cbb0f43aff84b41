// Package config defines all configuration structures for the Gap-Intelligence
// platform.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters for the embedding cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Apache Kafka producer/consumer parameters for the
// analysis pipeline topics.
type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	GroupID          string   `mapstructure:"group_id"`
	TopicPrefix      string   `mapstructure:"topic_prefix"`
	AutoOffsetReset  string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	TimeoutMS        int      `mapstructure:"timeout_ms"`
	ProducerRetries  int      `mapstructure:"producer_retries"`
	BatchSize        int      `mapstructure:"batch_size"`
	AutoCreateTopics bool     `mapstructure:"auto_create_topics"`
}

// MilvusConfig holds Milvus vector-store connection parameters.
type MilvusConfig struct {
	Addr               string `mapstructure:"addr"`
	DBName             string `mapstructure:"db_name"`
	IndexType          string `mapstructure:"index_type"`
	HNSWM              int    `mapstructure:"hnsw_m"`
	HNSWEfConstruction int    `mapstructure:"hnsw_ef_construction"`
	CollectionPrefix   string `mapstructure:"collection_prefix"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters for
// analysis snapshot exports.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// EmbeddingConfig holds the text-embedding backend parameters.
type EmbeddingConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Dimension    int           `mapstructure:"dimension"`
	MaxBatchSize int           `mapstructure:"max_batch_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// EnrichmentConfig holds the LLM content-suggestion backend parameters.
// Enrichment is optional; when disabled opportunities are generated without
// content suggestions.
type EnrichmentConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatchingConfig holds similarity thresholds and retrieval depth for
// prompt-to-page matching.
type MatchingConfig struct {
	AnsweredThreshold float64 `mapstructure:"answered_threshold"`
	PartialThreshold  float64 `mapstructure:"partial_threshold"`
	TopK              int     `mapstructure:"top_k"`
}

// NLPConfig holds intent-classification tunables.
type NLPConfig struct {
	TransactionalThreshold float64 `mapstructure:"transactional_threshold"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Mode              string        `mapstructure:"mode"` // "local" | "distributed"
	Concurrency       int           `mapstructure:"concurrency"`
	QueueDepth        int           `mapstructure:"queue_depth"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
	SamplingRate     int    `mapstructure:"sampling_rate"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Milvus     MilvusConfig     `mapstructure:"milvus"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	NLP        NLPConfig        `mapstructure:"nlp"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	// Milvus
	if c.Milvus.Addr == "" {
		return fmt.Errorf("config: milvus.addr is required")
	}

	// Embedding
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("config: embedding.base_url is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("config: embedding.model is required")
	}
	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("config: embedding.dimension must be >= 1, got %d", c.Embedding.Dimension)
	}

	// Enrichment
	if c.Enrichment.Enabled && c.Enrichment.BaseURL == "" {
		return fmt.Errorf("config: enrichment.base_url is required when enrichment is enabled")
	}

	// Matching
	if c.Matching.AnsweredThreshold <= 0 || c.Matching.AnsweredThreshold > 1 {
		return fmt.Errorf("config: matching.answered_threshold %v is out of range (0, 1]", c.Matching.AnsweredThreshold)
	}
	if c.Matching.PartialThreshold <= 0 || c.Matching.PartialThreshold > 1 {
		return fmt.Errorf("config: matching.partial_threshold %v is out of range (0, 1]", c.Matching.PartialThreshold)
	}
	if c.Matching.PartialThreshold >= c.Matching.AnsweredThreshold {
		return fmt.Errorf("config: matching.partial_threshold %v must be below answered_threshold %v",
			c.Matching.PartialThreshold, c.Matching.AnsweredThreshold)
	}
	if c.Matching.TopK < 1 {
		return fmt.Errorf("config: matching.top_k must be >= 1, got %d", c.Matching.TopK)
	}

	// NLP
	if c.NLP.TransactionalThreshold <= 0 || c.NLP.TransactionalThreshold > 1 {
		return fmt.Errorf("config: nlp.transactional_threshold %v is out of range (0, 1]", c.NLP.TransactionalThreshold)
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
