package opportunity

import (
	"context"

	"github.com/searchlens/gapintel/pkg/types/common"
)

// ListFilter defines listing criteria for opportunities.
type ListFilter struct {
	ProjectID  common.ProjectID
	Status     *Status
	Action     *Action
	Pagination common.Pagination
}

// Repository defines the persistence contract for opportunities.
type Repository interface {
	Create(ctx context.Context, o *Opportunity) error
	GetByID(ctx context.Context, id common.ID) (*Opportunity, error)
	GetByPromptID(ctx context.Context, promptID common.ID) (*Opportunity, error)
	Update(ctx context.Context, o *Opportunity) error
	DeleteByPromptID(ctx context.Context, promptID common.ID) error

	// ReplaceForPrompt deletes any existing opportunity for the prompt and
	// inserts the new one in a single transaction.
	ReplaceForPrompt(ctx context.Context, promptID common.ID, o *Opportunity) error

	// List returns opportunities sorted by priority score descending.
	List(ctx context.Context, filter ListFilter) ([]*Opportunity, int64, error)
	ListByProject(ctx context.Context, projectID common.ProjectID) ([]*Opportunity, error)

	// UpdateRanks persists rank and percentile assigned by batch ranking.
	UpdateRanks(ctx context.Context, opportunities []*Opportunity) error
}
