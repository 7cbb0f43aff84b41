package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

var (
	ErrCollectionAlreadyExists = errors.New(errors.ErrCodeConflict, "collection already exists")
	ErrCollectionNotFound      = errors.New(errors.ErrCodeNotFound, "collection not found")
)

// CollectionConfig holds tunables for the CollectionManager.
type CollectionConfig struct {
	ShardsNum        int32
	ConsistencyLevel entity.ConsistencyLevel
	IndexType        string
	HNSWM            int
	HNSWEfConstruct  int
	LoadTimeout      time.Duration
}

// CollectionManagerFromConfig maps the milvus section of the service
// configuration onto a CollectionConfig.
func CollectionManagerFromConfig(cfg config.MilvusConfig) CollectionConfig {
	return CollectionConfig{
		IndexType:       cfg.IndexType,
		HNSWM:           cfg.HNSWM,
		HNSWEfConstruct: cfg.HNSWEfConstruction,
	}
}

// CollectionSchema describes a collection to create.
type CollectionSchema struct {
	Name        string
	Description string
	Fields      []*entity.Field
}

// IndexConfig describes a vector index on a single field.
type IndexConfig struct {
	FieldName string
}

// CollectionManager wraps collection lifecycle operations.
type CollectionManager struct {
	client *Client
	config CollectionConfig
	logger logging.Logger
}

func NewCollectionManager(client *Client, cfg CollectionConfig, logger logging.Logger) *CollectionManager {
	if cfg.ShardsNum == 0 {
		cfg.ShardsNum = 2
	}
	if cfg.ConsistencyLevel == 0 {
		cfg.ConsistencyLevel = entity.ClBounded
	}
	if cfg.IndexType == "" {
		cfg.IndexType = "HNSW"
	}
	if cfg.HNSWM == 0 {
		cfg.HNSWM = 16
	}
	if cfg.HNSWEfConstruct == 0 {
		cfg.HNSWEfConstruct = 200
	}
	if cfg.LoadTimeout == 0 {
		cfg.LoadTimeout = 120 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &CollectionManager{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// CreateCollection creates a new collection from the given schema.
func (m *CollectionManager) CreateCollection(ctx context.Context, schema CollectionSchema) error {
	has, err := m.HasCollection(ctx, schema.Name)
	if err != nil {
		return err
	}
	if has {
		return ErrCollectionAlreadyExists
	}

	s := &entity.Schema{
		CollectionName: schema.Name,
		Description:    schema.Description,
		Fields:         schema.Fields,
	}

	if err := m.client.Raw().CreateCollection(ctx, s, m.config.ShardsNum, client.WithConsistencyLevel(m.config.ConsistencyLevel)); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create collection")
	}

	m.logger.Info("collection created", logging.String("name", schema.Name))
	return nil
}

// DropCollection removes a collection and all of its data.
func (m *CollectionManager) DropCollection(ctx context.Context, name string) error {
	has, err := m.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !has {
		return ErrCollectionNotFound
	}

	if err := m.client.Raw().DropCollection(ctx, name); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to drop collection")
	}

	m.logger.Warn("collection dropped", logging.String("name", name))
	return nil
}

// HasCollection reports whether the collection exists.
func (m *CollectionManager) HasCollection(ctx context.Context, name string) (bool, error) {
	has, err := m.client.Raw().HasCollection(ctx, name)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to check collection existence")
	}
	return has, nil
}

// CreateIndex builds the configured vector index on a field.
func (m *CollectionManager) CreateIndex(ctx context.Context, collectionName string, idxCfg IndexConfig) error {
	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.HNSWM, m.config.HNSWEfConstruct)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid index parameters")
	}

	if err := m.client.Raw().CreateIndex(ctx, collectionName, idxCfg.FieldName, idx, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create index")
	}

	m.logger.Info("index created",
		logging.String("collection", collectionName),
		logging.String("field", idxCfg.FieldName),
		logging.String("type", m.config.IndexType))
	return nil
}

// LoadCollection loads a collection into query-node memory, blocking
// until loading finishes or the load timeout elapses.
func (m *CollectionManager) LoadCollection(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.LoadTimeout)
	defer cancel()

	if err := m.client.Raw().LoadCollection(ctx, name, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load collection")
	}
	m.logger.Info("collection loaded", logging.String("name", name))
	return nil
}

// ReleaseCollection evicts a collection from query-node memory.
func (m *CollectionManager) ReleaseCollection(ctx context.Context, name string) error {
	if err := m.client.Raw().ReleaseCollection(ctx, name); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to release collection")
	}
	m.logger.Info("collection released", logging.String("name", name))
	return nil
}

// EnsureCollection creates the collection and its indexes when missing,
// then loads it. Safe to call on every startup.
func (m *CollectionManager) EnsureCollection(ctx context.Context, schema CollectionSchema, indexes []IndexConfig) error {
	exists, err := m.HasCollection(ctx, schema.Name)
	if err != nil {
		return err
	}

	if !exists {
		if err := m.CreateCollection(ctx, schema); err != nil {
			return err
		}
		for _, idxCfg := range indexes {
			if err := m.CreateIndex(ctx, schema.Name, idxCfg); err != nil {
				return err
			}
		}
	}

	return m.LoadCollection(ctx, schema.Name)
}

const (
	pageFieldID        = "id"
	pageFieldProjectID = "project_id"
	pageFieldEmbedding = "embedding"
)

// PageCollectionName derives the pages collection name from the
// configured prefix.
func PageCollectionName(prefix string) string {
	if prefix == "" {
		prefix = "gapintel"
	}
	return prefix + "_pages"
}

// PageVectorSchema is the schema for the page-embedding collection.
// Rows are partitioned by project so searches never cross projects.
func PageVectorSchema(prefix string, dim int) CollectionSchema {
	return CollectionSchema{
		Name:        PageCollectionName(prefix),
		Description: "page content embeddings",
		Fields: []*entity.Field{
			{Name: pageFieldID, DataType: entity.FieldTypeVarChar, PrimaryKey: true, AutoID: false,
				TypeParams: map[string]string{"max_length": "64"}},
			{Name: pageFieldProjectID, DataType: entity.FieldTypeVarChar, IsPartitionKey: true,
				TypeParams: map[string]string{"max_length": "64"}},
			{Name: pageFieldEmbedding, DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", dim)}},
		},
	}
}
