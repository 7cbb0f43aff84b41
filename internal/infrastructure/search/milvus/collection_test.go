package milvus

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

type mockCollectionClient struct {
	client.Client

	createFn      func(ctx context.Context, schema *entity.Schema, shardsNum int32) error
	hasFn         func(ctx context.Context, name string) (bool, error)
	dropFn        func(ctx context.Context, name string) error
	createIndexFn func(ctx context.Context, collName, fieldName string, idx entity.Index) error
	loadFn        func(ctx context.Context, name string) error
	releaseFn     func(ctx context.Context, name string) error
}

func (m *mockCollectionClient) CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error {
	if m.createFn != nil {
		return m.createFn(ctx, schema, shardsNum)
	}
	return nil
}

func (m *mockCollectionClient) HasCollection(ctx context.Context, name string) (bool, error) {
	if m.hasFn != nil {
		return m.hasFn(ctx, name)
	}
	return false, nil
}

func (m *mockCollectionClient) DropCollection(ctx context.Context, name string, opts ...client.DropCollectionOption) error {
	if m.dropFn != nil {
		return m.dropFn(ctx, name)
	}
	return nil
}

func (m *mockCollectionClient) CreateIndex(ctx context.Context, collName, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, collName, fieldName, idx)
	}
	return nil
}

func (m *mockCollectionClient) LoadCollection(ctx context.Context, name string, async bool, opts ...client.LoadCollectionOption) error {
	if m.loadFn != nil {
		return m.loadFn(ctx, name)
	}
	return nil
}

func (m *mockCollectionClient) ReleaseCollection(ctx context.Context, name string, opts ...client.ReleaseCollectionOption) error {
	if m.releaseFn != nil {
		return m.releaseFn(ctx, name)
	}
	return nil
}

func (m *mockCollectionClient) Close() error { return nil }

func newTestManager(mock client.Client) *CollectionManager {
	return NewCollectionManager(newIndexTestClient(mock), CollectionConfig{}, logging.NewNopLogger())
}

func TestNewCollectionManager_Defaults(t *testing.T) {
	m := newTestManager(&mockCollectionClient{})

	assert.Equal(t, int32(2), m.config.ShardsNum)
	assert.Equal(t, entity.ClBounded, m.config.ConsistencyLevel)
	assert.Equal(t, "HNSW", m.config.IndexType)
	assert.Equal(t, 16, m.config.HNSWM)
	assert.Equal(t, 200, m.config.HNSWEfConstruct)
}

func TestCollectionManagerFromConfig(t *testing.T) {
	cc := CollectionManagerFromConfig(config.MilvusConfig{
		IndexType:          "HNSW",
		HNSWM:              32,
		HNSWEfConstruction: 400,
	})
	assert.Equal(t, 32, cc.HNSWM)
	assert.Equal(t, 400, cc.HNSWEfConstruct)
}

func TestCreateCollection(t *testing.T) {
	var gotName string
	var gotShards int32
	mock := &mockCollectionClient{
		createFn: func(ctx context.Context, schema *entity.Schema, shardsNum int32) error {
			gotName = schema.CollectionName
			gotShards = shardsNum
			return nil
		},
	}
	m := newTestManager(mock)

	err := m.CreateCollection(context.Background(), PageVectorSchema("gapintel", 768))
	require.NoError(t, err)
	assert.Equal(t, "gapintel_pages", gotName)
	assert.Equal(t, int32(2), gotShards)
}

func TestCreateCollection_AlreadyExists(t *testing.T) {
	mock := &mockCollectionClient{
		hasFn: func(ctx context.Context, name string) (bool, error) { return true, nil },
	}
	m := newTestManager(mock)

	err := m.CreateCollection(context.Background(), PageVectorSchema("gapintel", 768))
	assert.ErrorIs(t, err, ErrCollectionAlreadyExists)
}

func TestDropCollection_NotFound(t *testing.T) {
	m := newTestManager(&mockCollectionClient{})

	err := m.DropCollection(context.Background(), "gapintel_pages")
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestHasCollection_BackendError(t *testing.T) {
	mock := &mockCollectionClient{
		hasFn: func(ctx context.Context, name string) (bool, error) { return false, assert.AnError },
	}
	m := newTestManager(mock)

	_, err := m.HasCollection(context.Background(), "gapintel_pages")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func TestCreateIndex_UsesConfiguredHNSWParams(t *testing.T) {
	var gotField string
	var gotIdx entity.Index
	mock := &mockCollectionClient{
		createIndexFn: func(ctx context.Context, collName, fieldName string, idx entity.Index) error {
			gotField = fieldName
			gotIdx = idx
			return nil
		},
	}
	m := NewCollectionManager(newIndexTestClient(mock), CollectionConfig{HNSWM: 32, HNSWEfConstruct: 400}, logging.NewNopLogger())

	err := m.CreateIndex(context.Background(), "gapintel_pages", IndexConfig{FieldName: pageFieldEmbedding})
	require.NoError(t, err)
	assert.Equal(t, pageFieldEmbedding, gotField)
	require.NotNil(t, gotIdx)
	assert.Equal(t, entity.HNSW, gotIdx.IndexType())
}

func TestEnsureCollection_CreatesWhenMissing(t *testing.T) {
	var created, indexed, loaded bool
	mock := &mockCollectionClient{
		hasFn: func(ctx context.Context, name string) (bool, error) { return created, nil },
		createFn: func(ctx context.Context, schema *entity.Schema, shardsNum int32) error {
			created = true
			return nil
		},
		createIndexFn: func(ctx context.Context, collName, fieldName string, idx entity.Index) error {
			indexed = true
			return nil
		},
		loadFn: func(ctx context.Context, name string) error {
			loaded = true
			return nil
		},
	}
	m := newTestManager(mock)

	err := m.EnsureCollection(context.Background(), PageVectorSchema("gapintel", 768), []IndexConfig{{FieldName: pageFieldEmbedding}})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, indexed)
	assert.True(t, loaded)
}

func TestEnsureCollection_ExistingOnlyLoads(t *testing.T) {
	var created, loaded bool
	mock := &mockCollectionClient{
		hasFn: func(ctx context.Context, name string) (bool, error) { return true, nil },
		createFn: func(ctx context.Context, schema *entity.Schema, shardsNum int32) error {
			created = true
			return nil
		},
		loadFn: func(ctx context.Context, name string) error {
			loaded = true
			return nil
		},
	}
	m := newTestManager(mock)

	err := m.EnsureCollection(context.Background(), PageVectorSchema("gapintel", 768), []IndexConfig{{FieldName: pageFieldEmbedding}})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, loaded)
}

func TestPageVectorSchema(t *testing.T) {
	schema := PageVectorSchema("gapintel", 768)

	assert.Equal(t, "gapintel_pages", schema.Name)
	require.Len(t, schema.Fields, 3)

	byName := make(map[string]*entity.Field, len(schema.Fields))
	for _, f := range schema.Fields {
		byName[f.Name] = f
	}

	require.Contains(t, byName, pageFieldID)
	assert.True(t, byName[pageFieldID].PrimaryKey)
	assert.False(t, byName[pageFieldID].AutoID)

	require.Contains(t, byName, pageFieldProjectID)
	assert.True(t, byName[pageFieldProjectID].IsPartitionKey)

	require.Contains(t, byName, pageFieldEmbedding)
	assert.Equal(t, entity.FieldTypeFloatVector, byName[pageFieldEmbedding].DataType)
	assert.Equal(t, "768", byName[pageFieldEmbedding].TypeParams["dim"])
}

func TestPageCollectionName_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "gapintel_pages", PageCollectionName(""))
	assert.Equal(t, "acme_pages", PageCollectionName("acme"))
}
