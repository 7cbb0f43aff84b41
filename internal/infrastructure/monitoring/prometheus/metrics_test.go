package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	return m, c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.PipelineJobsTotal)
	assert.NotNil(t, m.PipelineQueueDepth)
	assert.NotNil(t, m.PromptMatchesTotal)
	assert.NotNil(t, m.MatchScore)
	assert.NotNil(t, m.ModelRequestsTotal)
	assert.NotNil(t, m.IndexSearchDuration)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest_AllMetricsUpdated(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/api/v1/prompts", 200, 100*time.Millisecond, 1024, 2048)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_http_requests_total{method="GET",path="/api/v1/prompts",status_code="200"} 1`)
	assert.Contains(t, output, `test_unit_http_request_size_bytes_sum{method="GET",path="/api/v1/prompts"} 1024`)
	assert.Contains(t, output, `test_unit_http_response_size_bytes_sum{method="GET",path="/api/v1/prompts"} 2048`)
	assert.Contains(t, output, `test_unit_http_request_duration_seconds_count{method="GET",path="/api/v1/prompts"} 1`)
}

func TestRecordPipelineJob(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordPipelineJob(m, "embed", true, 2*time.Second)
	RecordPipelineJob(m, "match", false, 500*time.Millisecond)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_pipeline_jobs_total{status="success",type="embed"} 1`)
	assert.Contains(t, output, `test_unit_pipeline_jobs_total{status="failure",type="match"} 1`)
	assert.Contains(t, output, `test_unit_pipeline_job_duration_seconds_count{type="embed"} 1`)
}

func TestRecordPromptMatch(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordPromptMatch(m, "answered", 0.91)
	RecordPromptMatch(m, "gap", 0.12)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_prompt_matches_total{status="answered"} 1`)
	assert.Contains(t, output, `test_unit_prompt_matches_total{status="gap"} 1`)
	assert.Contains(t, output, `test_unit_match_score_count{status="answered"} 1`)
}

func TestRecordModelCall(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordModelCall(m, "bge-m3", "embed", true, 2*time.Second, 32)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_model_requests_total{model="bge-m3",operation="embed",status="success"} 1`)
	assert.Contains(t, output, `test_unit_model_request_duration_seconds_count{model="bge-m3",operation="embed"} 1`)
	assert.Contains(t, output, `test_unit_model_batch_size_sum{model="bge-m3"} 32`)
}

func TestRecordModelCall_FailureSkipsBatchSize(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordModelCall(m, "qwen3", "suggest", false, time.Second, 0)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_model_requests_total{model="qwen3",operation="suggest",status="failure"} 1`)
	assert.NotContains(t, output, `test_unit_model_batch_size_sum{model="qwen3"}`)
}

func TestRecordIndexSearch(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordIndexSearch(m, "gapintel_pages", 15*time.Millisecond, 5)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_index_search_duration_seconds_count{collection="gapintel_pages"} 1`)
	assert.Contains(t, output, `test_unit_index_search_hit_count_sum{collection="gapintel_pages"} 5`)
}

func TestRecordDBQuery_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "select", 10*time.Millisecond, nil)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_db_query_duration_seconds_count{db="postgres",operation="select"} 1`)
}

func TestRecordDBQuery_Error(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "insert", 5*time.Millisecond, errors.New("db error"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_db_query_duration_seconds_count{db="postgres",operation="insert"} 1`)
	assert.Contains(t, output, `test_unit_errors_total{component="postgres",error_type="query_error",severity="error"} 1`)
}

func TestRecordCacheAccess_Hit(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "redis", true)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="redis"} 1`)
}

func TestRecordCacheAccess_Miss(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "local", false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="local"} 1`)
}

func TestDefaultBuckets(t *testing.T) {
	assert.NotNil(t, DefaultHTTPDurationBuckets)
	assert.NotNil(t, DefaultPipelineDurationBuckets)
	assert.NotNil(t, DefaultModelDurationBuckets)
	assert.NotNil(t, DefaultScoreBuckets)
}

func TestConcurrentMetricRecording(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				RecordHTTPRequest(m, "GET", "/path", 200, time.Millisecond, 10, 10)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
