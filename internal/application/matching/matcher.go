// Package matching finds the pages that answer a prompt.  It combines vector
// similarity with a lexical exact-overlap check, extracts a representative
// snippet per matched page, and classifies the prompt's overall match status
// from the best similarity seen.
package matching

import (
	"regexp"
	"strings"

	"github.com/searchlens/gapintel/internal/domain/match"
	"github.com/searchlens/gapintel/internal/domain/prompt"
	"github.com/searchlens/gapintel/internal/domain/vectormath"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// exactOverlapRatio is the share of prompt keywords that must literally
// appear in the page text for an exact classification.
const exactOverlapRatio = 0.7

// exactScoreFloor is the minimum similarity reported for exact matches.
// Lexical overlap must never surface as a low score even when the embedding
// similarity was mediocre.
const exactScoreFloor = 0.85

// DefaultTopK is the number of matches retained per prompt.
const DefaultTopK = 5

// PageCandidate is one corpus page offered to the matcher.
type PageCandidate struct {
	ID        common.ID
	Embedding []float32
	Content   string
	Title     string
}

// Candidate is one scored prompt-page pairing, ordered by rank.
type Candidate struct {
	PageID          common.ID
	SimilarityScore float64
	MatchType       match.Type
	MatchedSnippet  string
	Rank            int
}

// Config holds matcher tuning parameters.
type Config struct {
	TopK       int
	Thresholds vectormath.Thresholds
}

// DefaultConfig returns the standard matcher configuration.
func DefaultConfig() Config {
	return Config{
		TopK:       DefaultTopK,
		Thresholds: vectormath.DefaultThresholds(),
	}
}

// Matcher scores a prompt against a page corpus.  It is stateless; the same
// inputs always produce the same matches.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a Matcher, filling zero-valued config with defaults.
func NewMatcher(cfg Config) *Matcher {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Thresholds.Answered == 0 && cfg.Thresholds.Partial == 0 {
		cfg.Thresholds = vectormath.DefaultThresholds()
	}
	return &Matcher{cfg: cfg}
}

// FindMatches returns up to TopK candidates for the prompt, rank 1 first.
//
// Vector search oversamples to 2*TopK candidates, then the best TopK are
// reclassified: pages containing at least 70% of the prompt's keywords are
// exact matches with a floored score; the rest are semantic or partial
// depending on the partial threshold.
func (m *Matcher) FindMatches(promptEmbedding []float32, promptText string, pages []PageCandidate) []Candidate {
	if len(pages) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(pages))
	for i, p := range pages {
		embeddings[i] = p.Embedding
	}
	scored := vectormath.TopK(promptEmbedding, embeddings, m.cfg.TopK*2)

	keep := m.cfg.TopK
	if len(scored) < keep {
		keep = len(scored)
	}

	results := make([]Candidate, 0, keep)
	for rank := 1; rank <= keep; rank++ {
		s := scored[rank-1]
		page := pages[s.Index]
		similarity := s.Score

		var matchType match.Type
		switch {
		case hasExactOverlap(promptText, page.Content):
			matchType = match.TypeExact
			if similarity < exactScoreFloor {
				similarity = exactScoreFloor
			}
		case similarity >= m.cfg.Thresholds.Partial:
			matchType = match.TypeSemantic
		default:
			matchType = match.TypePartial
		}

		results = append(results, Candidate{
			PageID:          page.ID,
			SimilarityScore: similarity,
			MatchType:       matchType,
			MatchedSnippet:  ExtractSnippet(promptText, page.Content, snippetLength),
			Rank:            rank,
		})
	}
	return results
}

// TopK returns the number of matches retained per prompt.
func (m *Matcher) TopK() int {
	return m.cfg.TopK
}

// BestScore returns the rank-1 similarity, nil when there are no candidates.
func (m *Matcher) BestScore(candidates []Candidate) *float64 {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0].SimilarityScore
	return &best
}

// ClassifyStatus maps the best similarity onto the match-status buckets.
func (m *Matcher) ClassifyStatus(bestScore *float64) prompt.MatchStatus {
	switch m.cfg.Thresholds.ClassifyScore(bestScore) {
	case vectormath.BandAnswered:
		return prompt.StatusAnswered
	case vectormath.BandPartial:
		return prompt.StatusPartial
	default:
		return prompt.StatusGap
	}
}

// stopWords are excluded from the exact-overlap keyword set.
var stopWords = map[string]struct{}{
	"what": {}, "how": {}, "is": {}, "the": {}, "a": {}, "an": {},
	"to": {}, "for": {}, "of": {}, "in": {}, "on": {}, "and": {},
	"or": {}, "i": {}, "my": {}, "you": {}, "your": {}, "can": {},
	"do": {}, "does": {},
}

var wordPattern = regexp.MustCompile(`\w+`)

// hasExactOverlap reports whether at least 70% of the prompt's keywords
// (stop-words removed, length > 2) literally appear in the page content.
func hasExactOverlap(promptText, content string) bool {
	if promptText == "" || content == "" {
		return false
	}

	contentLower := strings.ToLower(content)

	var keywords []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(promptText), -1) {
		if _, stop := stopWords[w]; stop || len(w) <= 2 {
			continue
		}
		keywords = append(keywords, w)
	}
	if len(keywords) == 0 {
		return false
	}

	hits := 0
	for _, w := range keywords {
		if strings.Contains(contentLower, w) {
			hits++
		}
	}
	return float64(hits) >= float64(len(keywords))*exactOverlapRatio
}
