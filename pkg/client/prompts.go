package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// PromptsClient accesses the prompt corpus endpoints.
type PromptsClient struct {
	client *Client
}

// Prompt is a user question tracked in the corpus, with its classification
// and match outcome.
type Prompt struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`

	RawText        string `json:"raw_text"`
	NormalizedText string `json:"normalized_text"`

	Topic    string `json:"topic,omitempty"`
	Category string `json:"category,omitempty"`
	Region   string `json:"region,omitempty"`
	Language string `json:"language,omitempty"`

	PopularityScore *float64 `json:"popularity_score,omitempty"`
	SentimentScore  *float64 `json:"sentiment_score,omitempty"`
	VisibilityScore *float64 `json:"visibility_score,omitempty"`

	IntentLabel      string  `json:"intent_label,omitempty"`
	TransactionScore float64 `json:"transaction_score"`

	MatchStatus    string   `json:"match_status"`
	BestMatchScore *float64 `json:"best_match_score,omitempty"`
}

// PromptList is a page of prompts.
type PromptList struct {
	Items      []Prompt `json:"items"`
	Pagination ListMeta `json:"pagination"`
}

// ListPromptsRequest filters the prompt list. ProjectID is required.
type ListPromptsRequest struct {
	ProjectID   string
	MatchStatus string
	Intent      string
	Language    string
	Page        int
	PageSize    int
}

// List returns prompts matching the filter.
func (pc *PromptsClient) List(ctx context.Context, req ListPromptsRequest) (*PromptList, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("client: project id is required")
	}

	q := url.Values{}
	q.Set("project_id", req.ProjectID)
	if req.MatchStatus != "" {
		q.Set("match_status", req.MatchStatus)
	}
	if req.Intent != "" {
		q.Set("intent", req.Intent)
	}
	if req.Language != "" {
		q.Set("language", req.Language)
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(req.PageSize))
	}

	var result PromptList
	if err := pc.client.get(ctx, "/api/v1/prompts?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single prompt by ID.
func (pc *PromptsClient) Get(ctx context.Context, id string) (*Prompt, error) {
	if id == "" {
		return nil, fmt.Errorf("client: prompt id is required")
	}

	var result Prompt
	if err := pc.client.get(ctx, "/api/v1/prompts/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
