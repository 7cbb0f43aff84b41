package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// OpportunitiesClient accesses the opportunity backlog endpoints.
type OpportunitiesClient struct {
	client *Client
}

// DifficultyFactors breaks a difficulty score into its components.
type DifficultyFactors struct {
	NeedsNewPage        bool    `json:"needs_new_page"`
	TechnicalComplexity float64 `json:"technical_complexity"`
	ContentComplexity   float64 `json:"content_complexity"`
	ResearchRequired    float64 `json:"research_required"`
}

// ContentSuggestion is generated content guidance attached to an
// opportunity.
type ContentSuggestion struct {
	Title    string   `json:"title,omitempty"`
	Outline  []string `json:"outline,omitempty"`
	CTA      string   `json:"cta,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Opportunity is a content gap with its priority assessment and workflow
// state.
type Opportunity struct {
	ID        string `json:"id"`
	PromptID  string `json:"prompt_id"`
	ProjectID string `json:"project_id"`

	PriorityScore     float64           `json:"priority_score"`
	DifficultyScore   float64           `json:"difficulty_score"`
	DifficultyFactors DifficultyFactors `json:"difficulty_factors"`

	RecommendedAction string `json:"recommended_action"`
	Reason            string `json:"reason"`

	Status string `json:"status"`

	RelatedPageIDs    []string           `json:"related_page_ids,omitempty"`
	ContentSuggestion *ContentSuggestion `json:"content_suggestion,omitempty"`

	Rank       int     `json:"rank,omitempty"`
	Percentile float64 `json:"percentile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OpportunityList is a page of opportunities, sorted by priority descending.
type OpportunityList struct {
	Items      []Opportunity `json:"items"`
	Pagination ListMeta      `json:"pagination"`
}

// ListOpportunitiesRequest filters the opportunity list. ProjectID is
// required.
type ListOpportunitiesRequest struct {
	ProjectID string
	Status    string
	Action    string
	Page      int
	PageSize  int
}

// List returns opportunities matching the filter.
func (oc *OpportunitiesClient) List(ctx context.Context, req ListOpportunitiesRequest) (*OpportunityList, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("client: project id is required")
	}

	q := url.Values{}
	q.Set("project_id", req.ProjectID)
	if req.Status != "" {
		q.Set("status", req.Status)
	}
	if req.Action != "" {
		q.Set("action", req.Action)
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(req.PageSize))
	}

	var result OpportunityList
	if err := oc.client.get(ctx, "/api/v1/opportunities?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single opportunity by ID.
func (oc *OpportunitiesClient) Get(ctx context.Context, id string) (*Opportunity, error) {
	if id == "" {
		return nil, fmt.Errorf("client: opportunity id is required")
	}

	var result Opportunity
	if err := oc.client.get(ctx, "/api/v1/opportunities/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateStatus moves an opportunity through its workflow and returns the
// updated entity. Invalid transitions are rejected by the server.
func (oc *OpportunitiesClient) UpdateStatus(ctx context.Context, id, status string) (*Opportunity, error) {
	if id == "" {
		return nil, fmt.Errorf("client: opportunity id is required")
	}
	if status == "" {
		return nil, fmt.Errorf("client: status is required")
	}

	body := map[string]string{"status": status}
	var result Opportunity
	if err := oc.client.patch(ctx, "/api/v1/opportunities/"+url.PathEscape(id)+"/status", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
