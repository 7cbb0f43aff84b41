// Background worker entry point. Consumes analysis jobs from Kafka and
// runs the gap-analysis pipeline: classification, embedding, matching, and
// opportunity upkeep.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/searchlens/gapintel/internal/application/analysis"
	"github.com/searchlens/gapintel/internal/application/matching"
	"github.com/searchlens/gapintel/internal/application/nlp"
	oppgen "github.com/searchlens/gapintel/internal/application/opportunity"
	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/domain/vectormath"
	"github.com/searchlens/gapintel/internal/infrastructure/ai"
	"github.com/searchlens/gapintel/internal/infrastructure/database/postgres"
	"github.com/searchlens/gapintel/internal/infrastructure/database/postgres/repositories"
	"github.com/searchlens/gapintel/internal/infrastructure/database/redis"
	"github.com/searchlens/gapintel/internal/infrastructure/messaging/kafka"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/prometheus"
	"github.com/searchlens/gapintel/internal/infrastructure/search/milvus"
	"github.com/searchlens/gapintel/internal/infrastructure/storage/minio"
)

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment)")
	metricsAddr := flag.String("metrics-addr", ":9090", "listen address for the metrics endpoint")
	flag.Parse()

	if err := run(*configPath, *metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logging.SetDefault(logger)
	logger = logger.Named("worker")

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Metrics.
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "gapintel",
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	// PostgreSQL.
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer conn.Close()

	repoLogger := logging.KV(logger)
	promptRepo := repositories.NewPromptRepository(conn.Pool(), repoLogger)
	pageRepo := repositories.NewPageRepository(conn.Pool(), repoLogger)
	matchRepo := repositories.NewMatchRepository(conn.Pool(), repoLogger)
	oppRepo := repositories.NewOpportunityRepository(conn.Pool(), repoLogger)

	// Redis backs the embedding cache and per-project job locks.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	embeddingCache := redis.NewVectorCache(redisClient, logger)
	locks := redis.NewLockFactory(redisClient, logger, "analysis")

	// Model backends.
	embedder, err := ai.NewEmbedder(ai.EmbedderFromConfig(cfg.Embedding), logger, ai.WithCache(embeddingCache))
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	var suggester analysis.ContentSuggester
	if cfg.Enrichment.Enabled {
		s, err := ai.NewSuggester(ai.SuggesterFromConfig(cfg.Enrichment), logger)
		if err != nil {
			return fmt.Errorf("suggester: %w", err)
		}
		suggester = s
	}

	// Vector index is optional; without it matching scans the page corpus.
	var index analysis.VectorIndex
	if cfg.Milvus.Addr != "" {
		milvusClient, err := milvus.NewClient(milvus.ClientFromConfig(cfg.Milvus), logger)
		if err != nil {
			return fmt.Errorf("milvus: %w", err)
		}
		defer milvusClient.Close()

		collections := milvus.NewCollectionManager(milvusClient, milvus.CollectionManagerFromConfig(cfg.Milvus), logger)
		pageIndex, err := milvus.NewPageIndex(milvusClient, collections,
			milvus.PageIndexFromConfig(cfg.Milvus, cfg.Embedding.Dimension), logger)
		if err != nil {
			return fmt.Errorf("milvus index: %w", err)
		}
		if err := pageIndex.EnsureReady(ctx); err != nil {
			return fmt.Errorf("milvus index: %w", err)
		}
		index = pageIndex
	}

	// Snapshot archive is optional; when configured, page content is
	// archived alongside its embedding.
	var snapshots minio.SnapshotStore
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := minio.NewClient(minio.ClientFromConfig(cfg.MinIO), logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		snapshots = minio.NewSnapshotStore(minioClient, logger)
	}

	service := analysis.NewService(analysis.Deps{
		Prompts:       promptRepo,
		Pages:         pageRepo,
		Matches:       matchRepo,
		Opportunities: oppRepo,
		Embedder:      embedder,
		Suggester:     suggester,
		Detector:      nlp.NewLanguageDetector(),
		Index:         index,
		Classifier:    nlp.NewClassifier(nlp.Config{TransactionalThreshold: cfg.NLP.TransactionalThreshold}),
		Matcher: matching.NewMatcher(matching.Config{
			TopK: cfg.Matching.TopK,
			Thresholds: vectormath.Thresholds{
				Answered: cfg.Matching.AnsweredThreshold,
				Partial:  cfg.Matching.PartialThreshold,
			},
		}),
		Generator: oppgen.NewGenerator(oppgen.Config{TransactionalThreshold: cfg.NLP.TransactionalThreshold}),
		Logger:    logging.KV(logger),
	})

	jobs := &jobRunner{
		service:   service,
		prompts:   promptRepo,
		pages:     pageRepo,
		snapshots: snapshots,
		locks:     locks,
		metrics:   metrics,
		logger:    logger,
	}

	consumer, err := newPipelineConsumer(cfg.Kafka, jobs, logger)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	opsSrv := newOpsServer(metricsAddr, collector, conn, redisClient)
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics listener failed", logging.Err(err))
		}
	}()

	if err := consumer.Start(runCtx); err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	logger.Info("worker started",
		logging.String("group", cfg.Kafka.GroupID),
		logging.Bool("vector_index", index != nil),
		logging.Bool("enrichment", suggester != nil))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", logging.String("signal", sig.String()))

	stop()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics listener shutdown failed", logging.Err(err))
	}
	return consumer.Close()
}

// newOpsServer serves the metrics and liveness endpoints for the worker
// process.
func newOpsServer(addr string, collector prometheus.MetricsCollector, conn *postgres.Connection, redisClient *redis.Client) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.HealthCheck(r.Context()); err != nil {
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.HealthCheck(r.Context()); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// newPipelineConsumer subscribes the job runner to every pipeline topic.
func newPipelineConsumer(cfg config.KafkaConfig, jobs *jobRunner, logger logging.Logger) (*kafka.Consumer, error) {
	topics := []string{
		kafka.FullTopic(cfg.TopicPrefix, kafka.TopicPromptClassify),
		kafka.FullTopic(cfg.TopicPrefix, kafka.TopicPromptEmbed),
		kafka.FullTopic(cfg.TopicPrefix, kafka.TopicPageEmbed),
		kafka.FullTopic(cfg.TopicPrefix, kafka.TopicPromptMatch),
	}

	dlq := kafka.FullTopic(cfg.TopicPrefix, kafka.DeadLetterTopic("analysis.jobs"))
	consumer, err := kafka.NewConsumer(kafka.ConsumerFromConfig(cfg, topics, dlq), logger)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	consumer.Subscribe(topics[0], jobs.handleClassify)
	consumer.Subscribe(topics[1], jobs.handleEmbedPrompts)
	consumer.Subscribe(topics[2], jobs.handleEmbedPages)
	consumer.Subscribe(topics[3], jobs.handleRematch)

	return consumer, nil
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}
