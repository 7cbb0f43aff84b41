package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

var ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")

// VectorCache stores embedding vectors keyed by model and input text so that
// repeated embedding of identical text never hits the embedding backend twice.
type VectorCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
	group  singleflight.Group
}

type VectorCacheOption func(*VectorCache)

func WithVectorPrefix(prefix string) VectorCacheOption {
	return func(c *VectorCache) { c.prefix = prefix }
}

func WithVectorTTL(ttl time.Duration) VectorCacheOption {
	return func(c *VectorCache) { c.ttl = ttl }
}

func NewVectorCache(client *Client, log logging.Logger, opts ...VectorCacheOption) *VectorCache {
	c := &VectorCache{
		client: client,
		logger: log,
		prefix: "gapintel:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *VectorCache) key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

// jitter spreads expirations by +/- 10% so a bulk import does not expire as
// one thundering herd.
func (c *VectorCache) jitter(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	return ttl + time.Duration(float64(ttl)*0.1*(rand.Float64()*2-1))
}

// Lookup returns cached vectors aligned with texts; a nil entry is a miss.
// The second return value lists the indexes of the misses.
func (c *VectorCache) Lookup(ctx context.Context, model string, texts []string) ([][]float32, []int) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}
	if c.client.isClosed() {
		return vectors, allIndexes(len(texts))
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(model, t)
	}

	vals, err := c.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("Vector cache lookup failed", logging.Err(err))
		return vectors, allIndexes(len(texts))
	}

	var misses []int
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, i)
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(s), &vec); err != nil {
			c.logger.Warn("Discarding corrupt cached vector", logging.String("key", keys[i]))
			misses = append(misses, i)
			continue
		}
		vectors[i] = vec
	}
	return vectors, misses
}

// Store writes vectors for texts; entries whose vector is nil are skipped.
func (c *VectorCache) Store(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return ErrSerializationFailed
	}
	if len(texts) == 0 || c.client.isClosed() {
		return nil
	}

	pipe := c.client.rdb.Pipeline()
	for i, t := range texts {
		if vectors[i] == nil {
			continue
		}
		data, err := json.Marshal(vectors[i])
		if err != nil {
			return ErrSerializationFailed
		}
		pipe.Set(ctx, c.key(model, t), data, c.jitter(c.ttl))
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to store vectors")
	}
	return nil
}

// GetOrCompute resolves texts from the cache and falls back to compute for
// the misses. Concurrent callers computing an identical miss batch are
// collapsed into a single backend call.
func (c *VectorCache) GetOrCompute(
	ctx context.Context,
	model string,
	texts []string,
	compute func(ctx context.Context, texts []string) ([][]float32, error),
) ([][]float32, error) {
	vectors, misses := c.Lookup(ctx, model, texts)
	if len(misses) == 0 {
		return vectors, nil
	}

	missing := make([]string, len(misses))
	for i, idx := range misses {
		missing[i] = texts[idx]
	}

	computed, err, _ := c.group.Do(batchKey(model, missing), func() (interface{}, error) {
		return compute(ctx, missing)
	})
	if err != nil {
		return nil, err
	}

	fresh, ok := computed.([][]float32)
	if !ok || len(fresh) != len(missing) {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding backend returned mismatched vector count")
	}

	for i, idx := range misses {
		vectors[idx] = fresh[i]
	}
	if err := c.Store(ctx, model, missing, fresh); err != nil {
		c.logger.Warn("Failed to store computed vectors", logging.Err(err))
	}
	return vectors, nil
}

func batchKey(model string, texts []string) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, t := range texts {
		h.Write([]byte{0})
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
