// API server entry point. Serves the read surface over the prompt corpus
// and opportunity backlog, and enqueues analysis jobs for the worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/database/postgres"
	"github.com/searchlens/gapintel/internal/infrastructure/database/postgres/repositories"
	"github.com/searchlens/gapintel/internal/infrastructure/database/redis"
	"github.com/searchlens/gapintel/internal/infrastructure/messaging/kafka"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/searchlens/gapintel/internal/interfaces/http"
	"github.com/searchlens/gapintel/internal/interfaces/http/handlers"
	"github.com/searchlens/gapintel/internal/interfaces/http/middleware"
)

const startupTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrate := flag.Bool("migrate", false, "run database migrations before serving")
	flag.Parse()

	if err := run(*configPath, *port, *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, portOverride int, migrate bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logging.SetDefault(logger)

	if migrate && cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.BuildDSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Metrics.
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "gapintel",
		Subsystem:            "apiserver",
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
	oppRepo := repositories.NewOpportunityRepository(conn.Pool(), repoLogger)

	// Redis, for readiness only here; the worker owns the caches.
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	// Kafka producer for analysis triggers.
	producer, err := kafka.NewProducer(kafka.ProducerFromConfig(cfg.Kafka), logger)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()

	if cfg.Kafka.AutoCreateTopics {
		topics, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
		if err != nil {
			return fmt.Errorf("kafka admin: %w", err)
		}
		if err := topics.EnsurePipelineTopics(ctx, cfg.Kafka.TopicPrefix); err != nil {
			logger.Warn("failed to ensure pipeline topics", logging.Err(err))
		}
		topics.Close()
	}

	// Route tree.
	corsCfg := middleware.DefaultCORSConfig()
	rateCfg := middleware.DefaultRateLimitConfig()
	router := httpserver.NewRouter(httpserver.RouterConfig{
		PromptHandler:      handlers.NewPromptHandler(promptRepo, logger),
		OpportunityHandler: handlers.NewOpportunityHandler(oppRepo, logger),
		AnalysisHandler:    handlers.NewAnalysisHandler(producer, cfg.Kafka.TopicPrefix, logger),
		HealthHandler: handlers.NewHealthHandler(version,
			postgresChecker{conn},
			redisChecker{redisClient},
		),
		CORS:             &corsCfg,
		RateLimit:        &rateCfg,
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
		Mode:             cfg.Server.Mode,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}
