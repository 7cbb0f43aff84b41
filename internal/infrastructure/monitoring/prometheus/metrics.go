package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Batch Pipeline (classify / embed / match jobs)
	PipelineJobsTotal     CounterVec
	PipelineJobDuration   HistogramVec
	PipelineQueueDepth    GaugeVec
	PipelineActiveWorkers GaugeVec
	PipelineJobRetries    CounterVec

	// Prompt Corpus
	PromptsTotal       GaugeVec
	PromptMatchesTotal CounterVec
	MatchScore         HistogramVec
	OpportunitiesTotal GaugeVec

	// Model Backend (embedding + enrichment calls)
	ModelRequestsTotal   CounterVec
	ModelRequestDuration HistogramVec
	ModelBatchSize       HistogramVec
	EmbeddingCacheHits   GaugeVec

	// Vector Index
	IndexUpsertsTotal    CounterVec
	IndexSearchDuration  HistogramVec
	IndexSearchHitCount  HistogramVec

	// Infrastructure Layer
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageQueueDepth      GaugeVec
	MessageProcessDuration HistogramVec

	// System Health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultPipelineDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}
	DefaultModelDurationBuckets    = []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60}
	DefaultSizeBuckets             = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultScoreBuckets            = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Batch Pipeline
	m.PipelineJobsTotal = collector.RegisterCounter("pipeline_jobs_total", "Pipeline jobs total", "type", "status")
	m.PipelineJobDuration = collector.RegisterHistogram("pipeline_job_duration_seconds", "Pipeline job duration", DefaultPipelineDurationBuckets, "type")
	m.PipelineQueueDepth = collector.RegisterGauge("pipeline_queue_depth", "Pipeline queue depth", "topic")
	m.PipelineActiveWorkers = collector.RegisterGauge("pipeline_active_workers", "Active pipeline workers", "type")
	m.PipelineJobRetries = collector.RegisterCounter("pipeline_job_retries_total", "Pipeline job retries", "type", "reason")

	// Prompt Corpus
	m.PromptsTotal = collector.RegisterGauge("prompts_total", "Total prompts by status", "project", "status")
	m.PromptMatchesTotal = collector.RegisterCounter("prompt_matches_total", "Prompt match decisions", "status")
	m.MatchScore = collector.RegisterHistogram("match_score", "Best similarity score per matched prompt", DefaultScoreBuckets, "status")
	m.OpportunitiesTotal = collector.RegisterGauge("opportunities_total", "Open opportunities by priority", "project", "priority")

	// Model Backend
	m.ModelRequestsTotal = collector.RegisterCounter("model_requests_total", "Model backend requests", "model", "operation", "status")
	m.ModelRequestDuration = collector.RegisterHistogram("model_request_duration_seconds", "Model backend request duration", DefaultModelDurationBuckets, "model", "operation")
	m.ModelBatchSize = collector.RegisterHistogram("model_batch_size", "Texts per embedding request", []float64{1, 2, 4, 8, 16, 32, 64, 128}, "model")
	m.EmbeddingCacheHits = collector.RegisterGauge("embedding_cache_hit_rate", "Embedding cache hit rate", "model")

	// Vector Index
	m.IndexUpsertsTotal = collector.RegisterCounter("index_upserts_total", "Vectors written to the page index", "collection", "status")
	m.IndexSearchDuration = collector.RegisterHistogram("index_search_duration_seconds", "Vector search duration", DefaultDBDurationBuckets, "collection")
	m.IndexSearchHitCount = collector.RegisterHistogram("index_search_hit_count", "Hits returned per vector search", []float64{0, 1, 2, 5, 10, 20, 50, 100}, "collection")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessageQueueDepth = collector.RegisterGauge("mq_depth", "Message queue depth", "queue")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "queue", "message_type")

	// System Health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordPipelineJob(metrics *AppMetrics, jobType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.PipelineJobsTotal.WithLabelValues(jobType, status).Inc()
	metrics.PipelineJobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

func RecordPromptMatch(metrics *AppMetrics, status string, bestScore float64) {
	metrics.PromptMatchesTotal.WithLabelValues(status).Inc()
	metrics.MatchScore.WithLabelValues(status).Observe(bestScore)
}

func RecordModelCall(metrics *AppMetrics, model, operation string, success bool, duration time.Duration, batchSize int) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.ModelRequestsTotal.WithLabelValues(model, operation, status).Inc()
	metrics.ModelRequestDuration.WithLabelValues(model, operation).Observe(duration.Seconds())
	if batchSize > 0 {
		metrics.ModelBatchSize.WithLabelValues(model).Observe(float64(batchSize))
	}
}

func RecordIndexSearch(metrics *AppMetrics, collection string, duration time.Duration, hits int) {
	metrics.IndexSearchDuration.WithLabelValues(collection).Observe(duration.Seconds())
	metrics.IndexSearchHitCount.WithLabelValues(collection).Observe(float64(hits))
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
