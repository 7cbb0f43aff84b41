package prompt

import (
	"context"

	"github.com/searchlens/gapintel/pkg/types/common"
)

// ListFilter defines listing criteria for prompts.
type ListFilter struct {
	ProjectID   common.ProjectID
	MatchStatus *MatchStatus
	IntentLabel string
	Language    string
	Pagination  common.Pagination
}

// Repository defines the persistence contract for the prompt domain.
type Repository interface {
	Create(ctx context.Context, p *Prompt) error
	CreateBatch(ctx context.Context, prompts []*Prompt) error
	GetByID(ctx context.Context, id common.ID) (*Prompt, error)
	GetByIDs(ctx context.Context, ids []common.ID) ([]*Prompt, error)
	Update(ctx context.Context, p *Prompt) error
	Delete(ctx context.Context, id common.ID) error
	List(ctx context.Context, filter ListFilter) ([]*Prompt, int64, error)
	ListIDsByProject(ctx context.Context, projectID common.ProjectID) ([]common.ID, error)

	// UpdateMatchOutcome persists only match_status and best_match_score,
	// used on the re-match hot path to avoid full-row writes.
	UpdateMatchOutcome(ctx context.Context, id common.ID, status MatchStatus, best *float64) error
}
