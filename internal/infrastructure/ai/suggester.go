package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/searchlens/gapintel/internal/application/analysis"
	"github.com/searchlens/gapintel/internal/config"
	domainopp "github.com/searchlens/gapintel/internal/domain/opportunity"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

// SuggesterConfig holds the content-suggestion backend parameters.
type SuggesterConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// SuggesterFromConfig maps the application enrichment section onto a
// SuggesterConfig.  Callers check cfg.Enabled before constructing.
func SuggesterFromConfig(cfg config.EnrichmentConfig) SuggesterConfig {
	return SuggesterConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
}

const suggesterSystemPrompt = `You are a content strategist for a website.
Given a user prompt the site does not answer well, propose one piece of
content that would close the gap. Respond with a single JSON object:
{"title": string, "outline": [string], "cta": string, "keywords": [string]}.
No prose outside the JSON.`

// Suggester generates content suggestions via the /api/chat endpoint.
// Failures are surfaced as errors; the caller treats enrichment as
// best-effort and never blocks opportunity creation on it.
type Suggester struct {
	config     SuggesterConfig
	httpClient *http.Client
	logger     logging.Logger
}

func NewSuggester(cfg SuggesterConfig, logger logging.Logger) (*Suggester, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "enrichment base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New(errors.ErrCodeValidation, "enrichment model is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Suggester{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

func (s *Suggester) Suggest(ctx context.Context, req analysis.SuggestionRequest) (*domainopp.ContentSuggestion, error) {
	payload := map[string]interface{}{
		"model": s.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": suggesterSystemPrompt},
			{"role": "user", "content": buildUserPrompt(req)},
		},
		"stream": false,
		"format": "json",
	}

	body, err := postJSON(ctx, s.httpClient, s.config.BaseURL+"/api/chat", payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "suggestion request failed")
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode chat response")
	}

	var suggestion domainopp.ContentSuggestion
	if err := json.Unmarshal([]byte(resp.Message.Content), &suggestion); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "model returned malformed suggestion")
	}
	if suggestion.Title == "" {
		return nil, errors.New(errors.ErrCodeSerialization, "model returned suggestion without a title")
	}
	return &suggestion, nil
}

func buildUserPrompt(req analysis.SuggestionRequest) string {
	var b strings.Builder
	b.WriteString("User prompt: ")
	b.WriteString(req.PromptText)
	if req.Intent != "" {
		b.WriteString("\nIntent: ")
		b.WriteString(req.Intent)
	}
	b.WriteString("\nCurrent coverage: ")
	b.WriteString(req.MatchStatus)
	if len(req.Snippets) > 0 {
		b.WriteString("\nClosest existing content:")
		for _, snippet := range req.Snippets {
			b.WriteString("\n- ")
			b.WriteString(snippet)
		}
	}
	return b.String()
}
