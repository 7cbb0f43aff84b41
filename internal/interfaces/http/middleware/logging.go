package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/prometheus"
)

// RequestIDHeader carries the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are paths that should not be logged.
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged as slow.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns a sensible default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestID returns middleware that ensures every request carries a
// correlation ID, echoing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogging returns middleware that logs each request and records
// HTTP metrics. Metrics may be nil.
func RequestLogging(logger logging.Logger, metrics *prometheus.AppMetrics, config LoggingConfig) gin.HandlerFunc {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipSet[path] {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		reqSize := c.Request.ContentLength

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		if metrics != nil {
			// Route template, not the raw path, to bound label cardinality.
			metricPath := c.FullPath()
			if metricPath == "" {
				metricPath = "unmatched"
			}
			prometheus.RecordHTTPRequest(metrics, method, metricPath, status, duration, reqSize, respSize)
		}

		fields := []logging.Field{
			logging.String("method", method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.String("client_ip", c.ClientIP()),
			logging.Int64("response_bytes", respSize),
		}
		if id := c.GetString("request_id"); id != "" {
			fields = append(fields, logging.String("request_id", id))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		case config.SlowThreshold > 0 && duration > config.SlowThreshold:
			logger.Warn("slow request", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
