package page

import (
	"context"

	"github.com/searchlens/gapintel/pkg/types/common"
)

// Hit is a single page returned by an approximate-nearest-neighbour
// lookup, carrying the raw similarity score from the index.
type Hit struct {
	ID    common.ID
	Score float64
}

// Repository defines the persistence contract for the page domain.
type Repository interface {
	Create(ctx context.Context, p *Page) error
	GetByID(ctx context.Context, id common.ID) (*Page, error)
	GetByURL(ctx context.Context, projectID common.ProjectID, url string) (*Page, error)
	Update(ctx context.Context, p *Page) error
	Delete(ctx context.Context, id common.ID) error
	List(ctx context.Context, projectID common.ProjectID, pagination common.Pagination) ([]*Page, int64, error)

	// ListCorpus returns every page of a project with its embedding loaded,
	// for in-memory matching.  Pages without an embedding are skipped.
	ListCorpus(ctx context.Context, projectID common.ProjectID) ([]*Page, error)
}
