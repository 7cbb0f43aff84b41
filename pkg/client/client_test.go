package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestClient_SubClientsAreSingletons(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)

	assert.Same(t, c.Prompts(), c.Prompts())
	assert.Same(t, c.Opportunities(), c.Opportunities())
	assert.Same(t, c.Analysis(), c.Analysis())
}

func TestClient_SetsStandardHeaders(t *testing.T) {
	var gotUA, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	require.NoError(t, c.get(context.Background(), "/ping", nil))
	assert.Contains(t, gotUA, "gapintel-go-sdk/")
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryMax(3), WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, c.get(context.Background(), "/flaky", nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"PROMPT_001","message":"prompt not found"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryMax(3), WithRetryWait(time.Millisecond, 2*time.Millisecond))
	require.NoError(t, err)

	err = c.get(context.Background(), "/missing", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "PROMPT_001", apiErr.Code)
	assert.Equal(t, "prompt not found", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "PROMPT_001")
}

func TestClient_ContextCancellationDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryMax(5), WithRetryWait(time.Second, 2*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = c.get(ctx, "/down", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAPIError_Predicates(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())
	assert.True(t, (&APIError{StatusCode: 502}).IsServerError())
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())
}
