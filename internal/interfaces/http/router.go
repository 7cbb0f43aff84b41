// Package http assembles the gin route tree and the HTTP server around it.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/prometheus"
	"github.com/searchlens/gapintel/internal/interfaces/http/handlers"
	"github.com/searchlens/gapintel/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree. Nil handlers leave their
// routes unregistered; nil middleware is skipped.
type RouterConfig struct {
	// Handlers
	PromptHandler      *handlers.PromptHandler
	OpportunityHandler *handlers.OpportunityHandler
	AnalysisHandler    *handlers.AnalysisHandler
	HealthHandler      *handlers.HealthHandler

	// Middleware
	CORS      *middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
}

// NewRouter constructs the complete route tree from the given configuration.
func NewRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(logger, cfg.Metrics, middleware.DefaultLoggingConfig()))
	if cfg.RateLimit != nil {
		limiter := middleware.NewTokenBucketLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		)
		r.Use(middleware.RateLimit(limiter, *cfg.RateLimit))
	}

	// Probes and metrics sit outside /api/v1.
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerPromptRoutes(api, cfg.PromptHandler)
	registerOpportunityRoutes(api, cfg.OpportunityHandler)
	registerAnalysisRoutes(api, cfg.AnalysisHandler)

	return r
}

func registerPromptRoutes(r *gin.RouterGroup, h *handlers.PromptHandler) {
	if h == nil {
		return
	}
	prompts := r.Group("/prompts")
	prompts.GET("", h.List)
	prompts.GET("/:id", h.Get)
}

func registerOpportunityRoutes(r *gin.RouterGroup, h *handlers.OpportunityHandler) {
	if h == nil {
		return
	}
	opps := r.Group("/opportunities")
	opps.GET("", h.List)
	opps.GET("/:id", h.Get)
	opps.PATCH("/:id/status", h.UpdateStatus)
}

func registerAnalysisRoutes(r *gin.RouterGroup, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	analysis := r.Group("/analysis")
	analysis.POST("/classify", h.Classify)
	analysis.POST("/embed/prompts", h.EmbedPrompts)
	analysis.POST("/embed/pages", h.EmbedPages)
	analysis.POST("/rematch", h.Rematch)
}

// Handler adapts the engine for callers that want a plain http.Handler.
func Handler(engine *gin.Engine) http.Handler { return engine }
