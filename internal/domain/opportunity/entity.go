// Package opportunity implements the Opportunity bounded context: prioritized
// content-creation recommendations derived from unmatched or partially
// matched prompts.  At most one opportunity exists per prompt; regeneration
// always deletes and recreates, never patches in place.
package opportunity

import (
	"time"

	"github.com/searchlens/gapintel/internal/domain/vectormath"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// Action is the recommended content action for an opportunity.
type Action string

const (
	ActionCreateFAQ         Action = "create_faq"
	ActionCreateArticle     Action = "create_article"
	ActionCreateProductPage Action = "create_product_page"
	ActionCreateLandingPage Action = "create_landing_page"
	ActionExpandExisting    Action = "expand_existing"
	ActionAddCTA            Action = "add_cta"
	ActionAddStructuredData Action = "add_structured_data"
	ActionTranslate         Action = "translate"
	ActionCanonicalize      Action = "canonicalize"
	ActionOther             Action = "other"
)

// IsValid checks if the action is a known value.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreateFAQ, ActionCreateArticle, ActionCreateProductPage,
		ActionCreateLandingPage, ActionExpandExisting, ActionAddCTA,
		ActionAddStructuredData, ActionTranslate, ActionCanonicalize, ActionOther:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// ParseAction parses a string into an Action, failing fast on unknown values.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if a.IsValid() {
		return a, nil
	}
	return "", errors.New(errors.ErrCodeOpportunityActionInvalid, "unknown recommended action: "+s)
}

// Status is the workflow state of an opportunity.  It is mutated only by
// external actors through UpdateStatus, never by the scoring engine.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusDismissed  Status = "dismissed"
)

// IsValid checks if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusDismissed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a string into a Status, failing fast on unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.IsValid() {
		return st, nil
	}
	return "", errors.New(errors.ErrCodeOpportunityStatusInvalid, "unknown opportunity status: "+s)
}

// allowedTransitions defines the valid next states reachable from each
// workflow status.
//
//	new ──► in_progress ──► resolved
//	 │            │
//	 └────────────┴──► dismissed
var allowedTransitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusDismissed},
	StatusInProgress: {StatusResolved, StatusDismissed},
	StatusResolved:   {},
	StatusDismissed:  {StatusNew},
}

// DifficultyFactors is the breakdown of signals contributing to the
// difficulty estimate, kept alongside the composite so reviewers can audit
// the recommendation.
type DifficultyFactors struct {
	NeedsNewPage        bool    `json:"needs_new_page"`
	TechnicalComplexity float64 `json:"technical_complexity"`
	ContentComplexity   float64 `json:"content_complexity"`
	ResearchRequired    float64 `json:"research_required"`
}

// ContentSuggestion is the optional enrichment payload attached to an
// opportunity.  Its absence never blocks opportunity creation.
type ContentSuggestion struct {
	Title    string   `json:"title,omitempty"`
	Outline  []string `json:"outline,omitempty"`
	CTA      string   `json:"cta,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Opportunity is a prioritized content recommendation for one prompt.
type Opportunity struct {
	ID        common.ID        `json:"id"`
	PromptID  common.ID        `json:"prompt_id"`
	ProjectID common.ProjectID `json:"project_id"`

	PriorityScore     float64           `json:"priority_score"`
	DifficultyScore   float64           `json:"difficulty_score"`
	DifficultyFactors DifficultyFactors `json:"difficulty_factors"`

	RecommendedAction Action `json:"recommended_action"`
	Reason            string `json:"reason"`

	Status Status `json:"status"`

	// RelatedPageIDs holds up to three best-matching pages.
	RelatedPageIDs    []common.ID        `json:"related_page_ids,omitempty"`
	ContentSuggestion *ContentSuggestion `json:"content_suggestion,omitempty"`

	// Rank and Percentile are assigned by batch percentile ranking over a
	// project's full opportunity set; zero until ranked.
	Rank       int     `json:"rank,omitempty"`
	Percentile float64 `json:"percentile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an Opportunity in the initial workflow state.  Scores are
// sanitized; a non-finite priority or difficulty is rejected rather than
// silently zeroed, since it would corrupt priority ordering.
func New(promptID common.ID, projectID common.ProjectID, priority, difficulty float64,
	factors DifficultyFactors, action Action, reason string) (*Opportunity, error) {

	if !action.IsValid() {
		return nil, errors.New(errors.ErrCodeOpportunityActionInvalid, "unknown recommended action: "+string(action))
	}
	p, ok := vectormath.Sanitize(priority)
	if !ok {
		return nil, errors.NewValidationError("priority_score", "priority score must be finite")
	}
	d, ok := vectormath.Sanitize(difficulty)
	if !ok {
		return nil, errors.NewValidationError("difficulty_score", "difficulty score must be finite")
	}
	if p < 0 || p > 1 {
		return nil, errors.NewValidationError("priority_score", "priority score must be within [0,1]")
	}
	if d < 0.1 || d > 1 {
		return nil, errors.NewValidationError("difficulty_score", "difficulty score must be within [0.1,1]")
	}

	now := time.Now().UTC()
	return &Opportunity{
		ID:                common.NewID(),
		PromptID:          promptID,
		ProjectID:         projectID,
		PriorityScore:     p,
		DifficultyScore:   d,
		DifficultyFactors: factors,
		RecommendedAction: action,
		Reason:            reason,
		Status:            StatusNew,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// UpdateStatus applies a workflow transition, rejecting moves not listed in
// the transition table.
func (o *Opportunity) UpdateStatus(next Status) error {
	if !next.IsValid() {
		return errors.New(errors.ErrCodeOpportunityStatusInvalid, "unknown opportunity status: "+string(next))
	}
	for _, allowed := range allowedTransitions[o.Status] {
		if next == allowed {
			o.Status = next
			o.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return errors.New(errors.ErrCodeOpportunityStatusInvalid,
		"illegal status transition "+string(o.Status)+" -> "+string(next))
}

// SetRelatedPages records up to three best-matching page IDs.
func (o *Opportunity) SetRelatedPages(ids []common.ID) {
	if len(ids) > 3 {
		ids = ids[:3]
	}
	o.RelatedPageIDs = ids
	o.UpdatedAt = time.Now().UTC()
}

// AttachSuggestion decorates the opportunity with an enrichment payload.
func (o *Opportunity) AttachSuggestion(s *ContentSuggestion) {
	o.ContentSuggestion = s
	o.UpdatedAt = time.Now().UTC()
}
