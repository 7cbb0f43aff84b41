// Package ai implements the embedding and content-suggestion adapters over
// an Ollama-compatible HTTP API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

// EmbedderConfig holds the embedding backend parameters.
type EmbedderConfig struct {
	BaseURL      string
	Model        string
	Dimension    int
	MaxBatchSize int
	Timeout      time.Duration
}

// EmbedderFromConfig maps the application embedding section onto an
// EmbedderConfig.
func EmbedderFromConfig(cfg config.EmbeddingConfig) EmbedderConfig {
	return EmbedderConfig{
		BaseURL:      cfg.BaseURL,
		Model:        cfg.Model,
		Dimension:    cfg.Dimension,
		MaxBatchSize: cfg.MaxBatchSize,
		Timeout:      cfg.Timeout,
	}
}

// EmbeddingCache deduplicates repeated embedding calls per model+text.
// *redis.VectorCache satisfies it.
type EmbeddingCache interface {
	GetOrCompute(ctx context.Context, model string, texts []string,
		compute func(ctx context.Context, texts []string) ([][]float32, error)) ([][]float32, error)
}

// Embedder computes text embeddings via the /api/embed endpoint.  Empty
// input yields a zero vector so downstream similarity math stays defined;
// transport failures surface as errors so batch callers can count them.
type Embedder struct {
	config     EmbedderConfig
	cache      EmbeddingCache
	httpClient *http.Client
	logger     logging.Logger
}

// EmbedderOption customizes the Embedder.
type EmbedderOption func(*Embedder)

// WithCache routes batch lookups through an embedding cache.
func WithCache(cache EmbeddingCache) EmbedderOption {
	return func(e *Embedder) { e.cache = cache }
}

func NewEmbedder(cfg EmbedderConfig, logger logging.Logger, opts ...EmbedderOption) (*Embedder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "embedding base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrCodeValidation, "embedding model is required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "embedding dimension must be positive")
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 64
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	e := &Embedder{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.cache != nil {
		return e.cache.GetOrCompute(ctx, e.config.Model, texts, e.embedBatch)
	}
	return e.embedBatch(ctx, texts)
}

// embedBatch is the uncached path.  Blank texts get a zero vector without
// touching the backend; the rest go out in MaxBatchSize chunks.
func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	pending := make([]string, 0, len(texts))
	pendingIdx := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			vectors[i] = make([]float32, e.config.Dimension)
			continue
		}
		pending = append(pending, text)
		pendingIdx = append(pendingIdx, i)
	}

	for start := 0; start < len(pending); start += e.config.MaxBatchSize {
		end := start + e.config.MaxBatchSize
		if end > len(pending) {
			end = len(pending)
		}

		chunk := pending[start:end]
		embeddings, err := e.callEmbed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if len(embeddings) != len(chunk) {
			return nil, errors.New(errors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("backend returned %d embeddings for %d texts", len(embeddings), len(chunk)))
		}
		for i, vec := range embeddings {
			if len(vec) != e.config.Dimension {
				return nil, errors.New(errors.ErrCodeEmbeddingDimInvalid,
					fmt.Sprintf("backend returned %d-dimensional vector, expected %d", len(vec), e.config.Dimension))
			}
			vectors[pendingIdx[start+i]] = vec
		}
	}

	return vectors, nil
}

func (e *Embedder) callEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	payload := map[string]interface{}{
		"model": e.config.Model,
		"input": texts,
	}
	body, err := postJSON(ctx, e.httpClient, e.config.BaseURL+"/api/embed", payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingUnavailable, "embedding request failed")
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to decode embedding response")
	}
	return resp.Embeddings, nil
}

// postJSON posts a JSON payload and returns the response body, treating any
// non-200 status as an error.
func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
