package client

import (
	"context"
	"fmt"
)

// AnalysisClient triggers the asynchronous analysis pipeline.
type AnalysisClient struct {
	client *Client
}

// TriggerRequest scopes a pipeline run. Empty PromptIDs (or PageIDs for
// page embedding) means the whole project.
type TriggerRequest struct {
	ProjectID string   `json:"project_id"`
	PromptIDs []string `json:"prompt_ids,omitempty"`
	PageIDs   []string `json:"page_ids,omitempty"`
}

// TriggerResponse acknowledges an enqueued batch. The work itself runs on
// the background worker.
type TriggerResponse struct {
	Topic     string `json:"topic"`
	ProjectID string `json:"project_id"`
	Enqueued  int    `json:"enqueued"`
}

// Classify enqueues intent classification for the given prompts.
func (ac *AnalysisClient) Classify(ctx context.Context, req TriggerRequest) (*TriggerResponse, error) {
	return ac.trigger(ctx, "/api/v1/analysis/classify", req)
}

// EmbedPrompts enqueues embedding computation for the given prompts.
func (ac *AnalysisClient) EmbedPrompts(ctx context.Context, req TriggerRequest) (*TriggerResponse, error) {
	return ac.trigger(ctx, "/api/v1/analysis/embed/prompts", req)
}

// EmbedPages enqueues embedding computation for the given pages.
func (ac *AnalysisClient) EmbedPages(ctx context.Context, req TriggerRequest) (*TriggerResponse, error) {
	return ac.trigger(ctx, "/api/v1/analysis/embed/pages", req)
}

// Rematch enqueues prompt-to-page rematching for the project.
func (ac *AnalysisClient) Rematch(ctx context.Context, req TriggerRequest) (*TriggerResponse, error) {
	return ac.trigger(ctx, "/api/v1/analysis/rematch", req)
}

func (ac *AnalysisClient) trigger(ctx context.Context, path string, req TriggerRequest) (*TriggerResponse, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("client: project id is required")
	}

	var result TriggerResponse
	if err := ac.client.post(ctx, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
