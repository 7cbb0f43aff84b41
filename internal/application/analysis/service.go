// Package analysis orchestrates the gap-analysis pipeline: batch
// classification, embedding, prompt-to-page matching, and opportunity
// upkeep.  Core computations stay pure; this layer owns persistence,
// external calls, and the per-record failure policy for batches.
package analysis

import (
	"context"

	"github.com/searchlens/gapintel/internal/application/matching"
	"github.com/searchlens/gapintel/internal/application/nlp"
	oppgen "github.com/searchlens/gapintel/internal/application/opportunity"
	"github.com/searchlens/gapintel/internal/domain/match"
	domainopp "github.com/searchlens/gapintel/internal/domain/opportunity"
	"github.com/searchlens/gapintel/internal/domain/page"
	"github.com/searchlens/gapintel/internal/domain/prompt"
	apperrors "github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// ---------------------------------------------------------------------------
// Port interfaces
// ---------------------------------------------------------------------------

// Embedder produces fixed-dimension vectors for text.  Implementations must
// return a zero vector, not an error, for empty input so downstream
// similarity math stays well-defined.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// SuggestionRequest carries the context given to the enrichment service.
type SuggestionRequest struct {
	PromptText  string   `json:"prompt_text"`
	Intent      string   `json:"intent"`
	MatchStatus string   `json:"match_status"`
	Snippets    []string `json:"snippets,omitempty"`
}

// ContentSuggester optionally decorates opportunities with generated content
// ideas.  Failures are swallowed at the call site; suggestions are cosmetic.
type ContentSuggester interface {
	Suggest(ctx context.Context, req SuggestionRequest) (*domainopp.ContentSuggestion, error)
}

// LanguageDetector reports the ISO 639-1 code of a text, empty when unknown.
type LanguageDetector interface {
	Detect(text string) string
}

// VectorIndex is an optional ANN index over page embeddings.  When set, the
// service upserts page vectors after embedding and narrows matching to the
// index's nearest pages instead of scanning the whole corpus.  Scoring still
// runs through the matcher so results are identical either way.
type VectorIndex interface {
	Upsert(ctx context.Context, pages []*page.Page) (int, error)
	Search(ctx context.Context, projectID common.ProjectID, vector []float32, topK int) ([]page.Hit, error)
}

// Logger abstracts logging.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// BatchResult reports how a batch run went.  Failed records were logged and
// skipped; the batch itself never aborts on a single record.
type BatchResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Service runs the analysis pipeline over prompts and pages.
type Service interface {
	// ClassifyPrompts assigns intent, transaction score, and language to
	// each prompt.
	ClassifyPrompts(ctx context.Context, ids []common.ID) (*BatchResult, error)

	// EmbedPrompts computes and stores embedding vectors for prompts.
	EmbedPrompts(ctx context.Context, ids []common.ID) (*BatchResult, error)

	// EmbedPages computes and stores embedding vectors for pages.
	EmbedPages(ctx context.Context, ids []common.ID) (*BatchResult, error)

	// RematchPrompts re-runs matching for the given prompts against the
	// project's page corpus, replacing match sets and reconciling
	// opportunities.  Empty ids means every prompt in the project.
	RematchPrompts(ctx context.Context, projectID common.ProjectID, ids []common.ID) (*BatchResult, error)

	// RankOpportunities recomputes rank and percentile across the
	// project's opportunity set.  Returns the number of opportunities
	// ranked.
	RankOpportunities(ctx context.Context, projectID common.ProjectID) (int, error)
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

// Deps holds all dependencies for the analysis service.  Suggester,
// Detector, and Index are optional; everything else is required.
type Deps struct {
	Prompts       prompt.Repository
	Pages         page.Repository
	Matches       match.Repository
	Opportunities domainopp.Repository
	Embedder      Embedder
	Suggester     ContentSuggester
	Detector      LanguageDetector
	Index         VectorIndex
	Classifier    *nlp.Classifier
	Matcher       *matching.Matcher
	Generator     *oppgen.Generator
	Logger        Logger
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type serviceImpl struct {
	prompts       prompt.Repository
	pages         page.Repository
	matches       match.Repository
	opportunities domainopp.Repository
	embedder      Embedder
	suggester     ContentSuggester
	detector      LanguageDetector
	index         VectorIndex
	classifier    *nlp.Classifier
	matcher       *matching.Matcher
	generator     *oppgen.Generator
	logger        Logger
}

// NewService creates the analysis Service.
func NewService(deps Deps) Service {
	return &serviceImpl{
		prompts:       deps.Prompts,
		pages:         deps.Pages,
		matches:       deps.Matches,
		opportunities: deps.Opportunities,
		embedder:      deps.Embedder,
		suggester:     deps.Suggester,
		detector:      deps.Detector,
		index:         deps.Index,
		classifier:    deps.Classifier,
		matcher:       deps.Matcher,
		generator:     deps.Generator,
		logger:        deps.Logger,
	}
}

func (s *serviceImpl) ClassifyPrompts(ctx context.Context, ids []common.ID) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("ids", "at least one prompt id is required")
	}

	prompts, err := s.prompts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, p := range prompts {
		res := s.classifier.Classify(p.RawText)
		p.ApplyClassification(res.Intent.String(), res.TransactionScore)

		if s.detector != nil && p.Language == "" {
			if lang := s.detector.Detect(p.RawText); lang != "" {
				p.SetLanguage(lang)
			}
		}

		if err := s.prompts.Update(ctx, p); err != nil {
			s.logger.Error("failed to store classification", "prompt_id", p.ID, "error", err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	s.logger.Info("classified prompts", "processed", result.Processed, "failed", result.Failed)
	return result, nil
}

func (s *serviceImpl) EmbedPrompts(ctx context.Context, ids []common.ID) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("ids", "at least one prompt id is required")
	}

	prompts, err := s.prompts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(prompts))
	for i, p := range prompts {
		texts[i] = p.NormalizedText
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeEmbeddingFailed, "batch embedding failed")
	}
	if len(vectors) != len(prompts) {
		return nil, apperrors.New(apperrors.ErrCodeEmbeddingFailed, "embedder returned wrong vector count")
	}

	result := &BatchResult{}
	for i, p := range prompts {
		p.SetEmbedding(vectors[i])
		if err := s.prompts.Update(ctx, p); err != nil {
			s.logger.Error("failed to store prompt embedding", "prompt_id", p.ID, "error", err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	s.logger.Info("embedded prompts", "processed", result.Processed, "failed", result.Failed)
	return result, nil
}

func (s *serviceImpl) EmbedPages(ctx context.Context, ids []common.ID) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("ids", "at least one page id is required")
	}

	result := &BatchResult{}
	embedded := make([]*page.Page, 0, len(ids))
	for _, id := range ids {
		pg, err := s.pages.GetByID(ctx, id)
		if err != nil {
			s.logger.Error("failed to load page", "page_id", id, "error", err)
			result.Failed++
			continue
		}

		vector, err := s.embedder.Embed(ctx, pg.EmbeddingText())
		if err != nil {
			s.logger.Error("failed to embed page", "page_id", id, "error", err)
			result.Failed++
			continue
		}

		pg.SetEmbedding(vector)
		if err := s.pages.Update(ctx, pg); err != nil {
			s.logger.Error("failed to store page embedding", "page_id", id, "error", err)
			result.Failed++
			continue
		}
		embedded = append(embedded, pg)
		result.Processed++
	}

	// The database stays the source of truth; index writes are best-effort
	// and caught up on the next rematch if they fail here.
	if s.index != nil && len(embedded) > 0 {
		if _, err := s.index.Upsert(ctx, embedded); err != nil {
			s.logger.Warn("failed to index page embeddings", "count", len(embedded), "error", err)
		}
	}

	s.logger.Info("embedded pages", "processed", result.Processed, "failed", result.Failed)
	return result, nil
}

func (s *serviceImpl) RematchPrompts(ctx context.Context, projectID common.ProjectID, ids []common.ID) (*BatchResult, error) {
	if projectID == "" {
		return nil, apperrors.NewValidationError("project_id", "project id is required")
	}

	if len(ids) == 0 {
		var err error
		ids, err = s.prompts.ListIDsByProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return &BatchResult{}, nil
	}

	var corpus []matching.PageCandidate
	if s.index == nil {
		var err error
		corpus, err = s.loadCorpus(ctx, projectID)
		if err != nil {
			return nil, err
		}
	}

	prompts, err := s.prompts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, p := range prompts {
		var err error
		if s.index != nil {
			err = s.rematchOneViaIndex(ctx, p)
		} else {
			err = s.rematchOne(ctx, p, corpus)
		}
		if err != nil {
			s.logger.Error("rematch failed", "prompt_id", p.ID, "error", err)
			result.Failed++
			continue
		}
		result.Processed++
	}

	s.logger.Info("rematched prompts",
		"project_id", projectID, "processed", result.Processed, "failed", result.Failed)
	return result, nil
}

// loadCorpus pulls the project's embedded pages into match candidates.
// Pages without an embedding are skipped; they cannot be scored.
func (s *serviceImpl) loadCorpus(ctx context.Context, projectID common.ProjectID) ([]matching.PageCandidate, error) {
	pages, err := s.pages.ListCorpus(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeMatchSearchFailed, "failed to load page corpus")
	}

	corpus := make([]matching.PageCandidate, 0, len(pages))
	for _, pg := range pages {
		if len(pg.Embedding) == 0 {
			continue
		}
		corpus = append(corpus, matching.PageCandidate{
			ID:        pg.ID,
			Embedding: pg.Embedding,
			Content:   pg.Content,
			Title:     pg.Title,
		})
	}
	return corpus, nil
}

// rematchOneViaIndex narrows the candidate set to the index's nearest pages
// before scoring.  Oversampled past the matcher's cut so exact-overlap
// promotion sees the same pool it would in a full scan.
func (s *serviceImpl) rematchOneViaIndex(ctx context.Context, p *prompt.Prompt) error {
	if len(p.Embedding) == 0 {
		return apperrors.New(apperrors.ErrCodeEmbeddingUnavailable, "prompt has no embedding")
	}

	hits, err := s.index.Search(ctx, p.ProjectID, p.Embedding, 2*s.matcher.TopK())
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMatchSearchFailed, "index search failed")
	}

	subset := make([]matching.PageCandidate, 0, len(hits))
	for _, h := range hits {
		pg, err := s.pages.GetByID(ctx, h.ID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeMatchSearchFailed, "failed to load candidate page")
		}
		if len(pg.Embedding) == 0 {
			continue
		}
		subset = append(subset, matching.PageCandidate{
			ID:        pg.ID,
			Embedding: pg.Embedding,
			Content:   pg.Content,
			Title:     pg.Title,
		})
	}
	return s.rematchOne(ctx, p, subset)
}

// rematchOne replaces one prompt's match set, updates its status, and
// reconciles its opportunity.  Matches and opportunity are replace-in-full
// so readers never see a half-written state.
func (s *serviceImpl) rematchOne(ctx context.Context, p *prompt.Prompt, corpus []matching.PageCandidate) error {
	if len(p.Embedding) == 0 {
		return apperrors.New(apperrors.ErrCodeEmbeddingUnavailable, "prompt has no embedding")
	}

	candidates := s.matcher.FindMatches(p.Embedding, p.NormalizedText, corpus)

	matches := make([]*match.Match, 0, len(candidates))
	for _, c := range candidates {
		m, err := match.New(p.ID, c.PageID, c.SimilarityScore, c.MatchType, c.MatchedSnippet, c.Rank)
		if err != nil {
			return err
		}
		matches = append(matches, m)
	}
	if err := match.ValidateSet(matches); err != nil {
		return err
	}
	if err := s.matches.ReplaceForPrompt(ctx, p.ID, matches); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMatchReplaceFailed, "failed to replace match set")
	}

	best := s.matcher.BestScore(candidates)
	status := s.matcher.ClassifyStatus(best)
	if err := p.ApplyMatchOutcome(status, best); err != nil {
		return err
	}
	if err := s.prompts.Update(ctx, p); err != nil {
		return err
	}

	if !status.NeedsOpportunity() {
		if err := s.opportunities.DeleteByPromptID(ctx, p.ID); err != nil {
			return err
		}
		return nil
	}
	return s.refreshOpportunity(ctx, p, candidates)
}

// refreshOpportunity regenerates the prompt's opportunity from the latest
// match outcome.  Enrichment is best-effort.
func (s *serviceImpl) refreshOpportunity(ctx context.Context, p *prompt.Prompt, candidates []matching.Candidate) error {
	assessment := s.generator.Generate(oppgen.Input{
		PromptText:       p.RawText,
		Topic:            p.Topic,
		PopularityScore:  p.PopularityScore,
		TransactionScore: p.TransactionScore,
		SentimentScore:   p.SentimentScore,
		MatchStatus:      p.MatchStatus,
		BestMatchScore:   p.BestMatchScore,
		HasRelatedPages:  len(candidates) > 0,
	})

	opp, err := domainopp.New(p.ID, p.ProjectID,
		assessment.PriorityScore, assessment.DifficultyScore,
		assessment.DifficultyFactors, assessment.RecommendedAction, assessment.Reason)
	if err != nil {
		return err
	}

	related := make([]common.ID, 0, len(candidates))
	for _, c := range candidates {
		related = append(related, c.PageID)
	}
	opp.SetRelatedPages(related)

	if s.suggester != nil {
		snippets := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if c.MatchedSnippet != "" {
				snippets = append(snippets, c.MatchedSnippet)
			}
		}
		suggestion, err := s.suggester.Suggest(ctx, SuggestionRequest{
			PromptText:  p.RawText,
			Intent:      p.IntentLabel,
			MatchStatus: p.MatchStatus.String(),
			Snippets:    snippets,
		})
		if err != nil {
			s.logger.Warn("content suggestion failed", "prompt_id", p.ID, "error", err)
		} else if suggestion != nil {
			opp.AttachSuggestion(suggestion)
		}
	}

	if err := s.opportunities.ReplaceForPrompt(ctx, p.ID, opp); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeOpportunityWriteFailed, "failed to replace opportunity")
	}
	return nil
}

func (s *serviceImpl) RankOpportunities(ctx context.Context, projectID common.ProjectID) (int, error) {
	if projectID == "" {
		return 0, apperrors.NewValidationError("project_id", "project id is required")
	}

	opps, err := s.opportunities.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if len(opps) == 0 {
		return 0, nil
	}

	ranked := oppgen.RankBatch(opps)
	if err := s.opportunities.UpdateRanks(ctx, ranked); err != nil {
		return 0, err
	}

	s.logger.Info("ranked opportunities", "project_id", projectID, "count", len(ranked))
	return len(ranked), nil
}
