package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// newEmbedServer fakes the /api/embed endpoint, answering each input with a
// deterministic vector of the given dimension.
func newEmbedServer(t *testing.T, dim int, requests *[]embedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if requests != nil {
			*requests = append(*requests, req)
		}

		embeddings := make([][]float32, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dim)
			vec[0] = float32(i + 1)
			embeddings[i] = vec
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": embeddings})
	}))
}

func newTestEmbedder(t *testing.T, baseURL string, opts ...EmbedderOption) *Embedder {
	t.Helper()
	e, err := NewEmbedder(EmbedderConfig{
		BaseURL:   baseURL,
		Model:     "bge-m3",
		Dimension: 4,
	}, logging.NewNopLogger(), opts...)
	require.NoError(t, err)
	return e
}

func TestNewEmbedder_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  EmbedderConfig
	}{
		{"missing base url", EmbedderConfig{Model: "m", Dimension: 4}},
		{"missing model", EmbedderConfig{BaseURL: "http://x", Dimension: 4}},
		{"zero dimension", EmbedderConfig{BaseURL: "http://x", Model: "m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmbedder(tt.cfg, logging.NewNopLogger())
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestEmbed(t *testing.T) {
	var requests []embedRequest
	srv := newEmbedServer(t, 4, &requests)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	vec, err := e.Embed(context.Background(), "best cheap flights")
	require.NoError(t, err)
	assert.Len(t, vec, 4)

	require.Len(t, requests, 1)
	assert.Equal(t, "bge-m3", requests[0].Model)
	assert.Equal(t, []string{"best cheap flights"}, requests[0].Input)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	srv := newEmbedServer(t, 4, nil)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, vec)
}

func TestEmbedBatch_MixesBlankAndRealTexts(t *testing.T) {
	var requests []embedRequest
	srv := newEmbedServer(t, 4, &requests)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	vectors, err := e.EmbedBatch(context.Background(), []string{"first", "", "third"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.Equal(t, []float32{0, 0, 0, 0}, vectors[1])
	assert.NotEqual(t, vectors[1], vectors[0])

	// Only the non-blank texts reach the backend.
	require.Len(t, requests, 1)
	assert.Equal(t, []string{"first", "third"}, requests[0].Input)
}

func TestEmbedBatch_ChunksByMaxBatchSize(t *testing.T) {
	var requests []embedRequest
	srv := newEmbedServer(t, 4, &requests)
	defer srv.Close()

	e, err := NewEmbedder(EmbedderConfig{
		BaseURL:      srv.URL,
		Model:        "bge-m3",
		Dimension:    4,
		MaxBatchSize: 2,
	}, logging.NewNopLogger())
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Len(t, requests, 3)
}

func TestEmbedBatch_BackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	_, err := e.EmbedBatch(context.Background(), []string{"text"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingUnavailable))
}

func TestEmbedBatch_WrongDimension(t *testing.T) {
	srv := newEmbedServer(t, 7, nil)
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	_, err := e.EmbedBatch(context.Background(), []string{"text"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingDimInvalid))
}

func TestEmbedBatch_WrongCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"embeddings": [][]float32{}})
	}))
	defer srv.Close()

	e := newTestEmbedder(t, srv.URL)

	_, err := e.EmbedBatch(context.Background(), []string{"text"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingFailed))
}

type stubCache struct {
	calls int
}

func (c *stubCache) GetOrCompute(ctx context.Context, model string, texts []string,
	compute func(ctx context.Context, texts []string) ([][]float32, error)) ([][]float32, error) {
	c.calls++
	return compute(ctx, texts)
}

func TestEmbedBatch_RoutesThroughCache(t *testing.T) {
	srv := newEmbedServer(t, 4, nil)
	defer srv.Close()

	cache := &stubCache{}
	e := newTestEmbedder(t, srv.URL, WithCache(cache))

	_, err := e.EmbedBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.calls)
}
