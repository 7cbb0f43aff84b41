package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/searchlens/gapintel/internal/config"
	"github.com/searchlens/gapintel/internal/domain/page"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// PageIndexConfig holds tunables for the page vector index.
type PageIndexConfig struct {
	CollectionPrefix string
	Dim              int
	SearchEf         int
	SearchTimeout    time.Duration
	UpsertBatchSize  int
}

// PageIndexFromConfig maps the milvus section of the service
// configuration onto a PageIndexConfig for the given embedding
// dimension.
func PageIndexFromConfig(cfg config.MilvusConfig, dim int) PageIndexConfig {
	return PageIndexConfig{
		CollectionPrefix: cfg.CollectionPrefix,
		Dim:              dim,
	}
}

// PageIndex stores page embeddings in Milvus and answers approximate
// nearest-neighbour queries scoped to a single project. It backs the
// matching pipeline for projects whose corpus is too large to scan in
// memory.
type PageIndex struct {
	client      *Client
	collections *CollectionManager
	config      PageIndexConfig
	collection  string
	logger      logging.Logger
}

func NewPageIndex(client *Client, collections *CollectionManager, cfg PageIndexConfig, logger logging.Logger) (*PageIndex, error) {
	if cfg.Dim <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "embedding dimension must be positive")
	}
	if cfg.SearchEf == 0 {
		cfg.SearchEf = 64
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	if cfg.UpsertBatchSize == 0 {
		cfg.UpsertBatchSize = 1000
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &PageIndex{
		client:      client,
		collections: collections,
		config:      cfg,
		collection:  PageCollectionName(cfg.CollectionPrefix),
		logger:      logger,
	}, nil
}

// CollectionName returns the name of the backing collection.
func (x *PageIndex) CollectionName() string {
	return x.collection
}

// EnsureReady creates and loads the pages collection when missing.
// Called once on startup before the index is used.
func (x *PageIndex) EnsureReady(ctx context.Context) error {
	schema := PageVectorSchema(x.config.CollectionPrefix, x.config.Dim)
	indexes := []IndexConfig{{FieldName: pageFieldEmbedding}}
	return x.collections.EnsureCollection(ctx, schema, indexes)
}

// Upsert writes the embeddings of the given pages into the index.
// Pages without an embedding are skipped, a dimension mismatch is an
// error.
func (x *PageIndex) Upsert(ctx context.Context, pages []*page.Page) (int, error) {
	ids := make([]string, 0, len(pages))
	projects := make([]string, 0, len(pages))
	vectors := make([][]float32, 0, len(pages))

	for _, p := range pages {
		if p == nil || len(p.Embedding) == 0 {
			continue
		}
		if len(p.Embedding) != x.config.Dim {
			return 0, errors.New(errors.ErrCodeEmbeddingDimInvalid,
				fmt.Sprintf("page %s: embedding has %d dimensions, index expects %d", p.ID, len(p.Embedding), x.config.Dim))
		}
		ids = append(ids, string(p.ID))
		projects = append(projects, string(p.ProjectID))
		vectors = append(vectors, p.Embedding)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for start := 0; start < len(ids); start += x.config.UpsertBatchSize {
		end := start + x.config.UpsertBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		columns := []entity.Column{
			entity.NewColumnVarChar(pageFieldID, ids[start:end]),
			entity.NewColumnVarChar(pageFieldProjectID, projects[start:end]),
			entity.NewColumnFloatVector(pageFieldEmbedding, x.config.Dim, vectors[start:end]),
		}

		if _, err := x.client.Raw().Upsert(ctx, x.collection, "", columns...); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert page embeddings")
		}
	}

	x.logger.Debug("page embeddings indexed",
		logging.String("collection", x.collection),
		logging.Int("count", len(ids)))
	return len(ids), nil
}

// Delete removes page embeddings from the index, for pages that were
// deleted or re-crawled without content.
func (x *PageIndex) Delete(ctx context.Context, ids []common.ID) error {
	if len(ids) == 0 {
		return nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", string(id))
	}
	expr := fmt.Sprintf("%s in [%s]", pageFieldID, strings.Join(quoted, ","))

	if err := x.client.Raw().Delete(ctx, x.collection, "", expr); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete page embeddings")
	}
	return nil
}

// Search returns the topK nearest pages of a project for the given
// query vector, ordered by descending cosine similarity.
func (x *PageIndex) Search(ctx context.Context, projectID common.ProjectID, vector []float32, topK int) ([]page.Hit, error) {
	if len(vector) != x.config.Dim {
		return nil, errors.New(errors.ErrCodeEmbeddingDimInvalid,
			fmt.Sprintf("query vector has %d dimensions, index expects %d", len(vector), x.config.Dim))
	}
	if topK <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "topK must be positive")
	}

	sp, err := entity.NewIndexHNSWSearchParam(x.config.SearchEf)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMatchSearchFailed, "invalid search parameters")
	}

	ctx, cancel := context.WithTimeout(ctx, x.config.SearchTimeout)
	defer cancel()

	expr := fmt.Sprintf("%s == %q", pageFieldProjectID, string(projectID))
	results, err := x.client.Raw().Search(ctx, x.collection, nil, expr,
		[]string{pageFieldID}, []entity.Vector{entity.FloatVector(vector)},
		pageFieldEmbedding, entity.COSINE, topK, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMatchSearchFailed, "vector search failed")
	}

	var hits []page.Hit
	for _, res := range results {
		for j := 0; j < res.ResultCount; j++ {
			id, err := res.IDs.GetAsString(j)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeMatchSearchFailed, "unexpected primary key type in search result")
			}
			hits = append(hits, page.Hit{
				ID:    common.ID(id),
				Score: float64(res.Scores[j]),
			})
		}
	}

	x.logger.Debug("vector search executed",
		logging.String("project_id", string(projectID)),
		logging.Int("hits", len(hits)))
	return hits, nil
}
