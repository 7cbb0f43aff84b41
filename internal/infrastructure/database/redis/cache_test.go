package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

const testModel = "nomic-embed-text"

func newTestVectorCache(t *testing.T) *VectorCache {
	t.Helper()
	client, _ := newTestClient(t)
	return NewVectorCache(client, logging.NewNopLogger(), WithVectorPrefix("test:"))
}

func TestVectorCache_LookupMiss(t *testing.T) {
	cache := newTestVectorCache(t)

	vectors, misses := cache.Lookup(context.Background(), testModel, []string{"a", "b"})

	assert.Equal(t, []int{0, 1}, misses)
	assert.Nil(t, vectors[0])
	assert.Nil(t, vectors[1])
}

func TestVectorCache_StoreThenLookup(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()
	texts := []string{"first prompt", "second prompt"}
	stored := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	require.NoError(t, cache.Store(ctx, testModel, texts, stored))

	vectors, misses := cache.Lookup(ctx, testModel, texts)
	assert.Empty(t, misses)
	assert.Equal(t, stored, vectors)
}

func TestVectorCache_StoreSkipsNilVectors(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()
	texts := []string{"kept", "skipped"}

	require.NoError(t, cache.Store(ctx, testModel, texts, [][]float32{{1}, nil}))

	vectors, misses := cache.Lookup(ctx, testModel, texts)
	assert.Equal(t, []int{1}, misses)
	assert.Equal(t, []float32{1}, vectors[0])
}

func TestVectorCache_StoreLengthMismatch(t *testing.T) {
	cache := newTestVectorCache(t)

	err := cache.Store(context.Background(), testModel, []string{"a"}, nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestVectorCache_ModelsDoNotCollide(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, "model-a", []string{"text"}, [][]float32{{1}}))

	_, misses := cache.Lookup(ctx, "model-b", []string{"text"})
	assert.Equal(t, []int{0}, misses)
}

func TestVectorCache_GetOrCompute_FillsMisses(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()
	texts := []string{"cached", "fresh"}

	require.NoError(t, cache.Store(ctx, testModel, texts[:1], [][]float32{{9}}))

	var computed []string
	vectors, err := cache.GetOrCompute(ctx, testModel, texts, func(_ context.Context, missing []string) ([][]float32, error) {
		computed = missing
		out := make([][]float32, len(missing))
		for i := range out {
			out[i] = []float32{2}
		}
		return out, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, computed)
	assert.Equal(t, []float32{9}, vectors[0])
	assert.Equal(t, []float32{2}, vectors[1])

	// The computed vector is now cached.
	_, misses := cache.Lookup(ctx, testModel, texts)
	assert.Empty(t, misses)
}

func TestVectorCache_GetOrCompute_AllCachedSkipsBackend(t *testing.T) {
	cache := newTestVectorCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, testModel, []string{"a"}, [][]float32{{1}}))

	vectors, err := cache.GetOrCompute(ctx, testModel, []string{"a"}, func(context.Context, []string) ([][]float32, error) {
		t.Fatal("backend should not be called")
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vectors[0])
}

func TestVectorCache_GetOrCompute_MismatchedBackend(t *testing.T) {
	cache := newTestVectorCache(t)

	_, err := cache.GetOrCompute(context.Background(), testModel, []string{"a", "b"}, func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})

	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingFailed))
}
