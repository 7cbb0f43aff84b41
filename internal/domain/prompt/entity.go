// Package prompt implements the Prompt bounded context: the aggregate root for
// imported user queries, their derived NLP annotations, and the match-status
// state machine that drives opportunity creation.  Infrastructure concerns
// (persistence, embedding generation) are handled by separate repository and
// adapter layers.
package prompt

import (
	"strings"
	"time"

	"github.com/searchlens/gapintel/internal/domain/vectormath"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// MatchStatus summarizes how well a prompt is currently served by existing
// content.
type MatchStatus string

const (
	StatusPending  MatchStatus = "pending"
	StatusAnswered MatchStatus = "answered"
	StatusPartial  MatchStatus = "partial"
	StatusGap      MatchStatus = "gap"
)

// IsValid checks if the match status is a known value.
func (s MatchStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAnswered, StatusPartial, StatusGap:
		return true
	default:
		return false
	}
}

// String returns the string representation of the match status.
func (s MatchStatus) String() string {
	return string(s)
}

// ParseMatchStatus parses a string into a MatchStatus.  Unknown values fail
// fast; the match-status state machine drives opportunity creation, so a
// silently coerced status would corrupt downstream state.
func ParseMatchStatus(s string) (MatchStatus, error) {
	m := MatchStatus(s)
	if m.IsValid() {
		return m, nil
	}
	return "", errors.New(errors.ErrCodePromptStatusInvalid, "unknown match status: "+s)
}

// NeedsOpportunity reports whether prompts in this status carry an Opportunity.
func (s MatchStatus) NeedsOpportunity() bool {
	return s == StatusGap || s == StatusPartial
}

// statusRank orders match statuses from worst to best coverage.
var statusRank = map[MatchStatus]int{
	StatusPending:  0,
	StatusGap:      1,
	StatusPartial:  2,
	StatusAnswered: 3,
}

// BetterThan reports whether s is a strictly better coverage bucket than o.
func (s MatchStatus) BetterThan(o MatchStatus) bool {
	return statusRank[s] > statusRank[o]
}

// Prompt is the aggregate root for an imported user query.  RawText is
// immutable after creation; all derived fields are recomputed whenever
// classification or matching reruns.
//
// Consumers must not modify fields directly; mutations go through the
// exported methods so invariants are maintained.
type Prompt struct {
	common.BaseEntity

	// RawText is the query exactly as imported.  Never mutated.
	RawText string `json:"raw_text"`

	// NormalizedText is lower-cased, whitespace-collapsed RawText.
	NormalizedText string `json:"normalized_text"`

	Topic    string `json:"topic,omitempty"`
	Category string `json:"category,omitempty"`
	Region   string `json:"region,omitempty"`
	Language string `json:"language,omitempty"`

	// Optional scores supplied with the import row.  Non-finite values are
	// sanitized to nil at the boundary.
	PopularityScore *float64 `json:"popularity_score,omitempty"`
	SentimentScore  *float64 `json:"sentiment_score,omitempty"`
	VisibilityScore *float64 `json:"visibility_score,omitempty"`

	// Derived NLP annotations.
	IntentLabel      string  `json:"intent_label,omitempty"`
	TransactionScore float64 `json:"transaction_score"`

	// Embedding is the fixed-dimension vector for NormalizedText.
	Embedding []float32 `json:"embedding,omitempty"`

	MatchStatus    MatchStatus `json:"match_status"`
	BestMatchScore *float64    `json:"best_match_score,omitempty"`
}

// New creates a Prompt from an import row.  Empty raw text is rejected.
func New(projectID common.ProjectID, rawText string) (*Prompt, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, errors.New(errors.ErrCodePromptTextEmpty, "prompt text must not be empty")
	}
	now := time.Now().UTC()
	return &Prompt{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			ProjectID: projectID,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		RawText:        rawText,
		NormalizedText: Normalize(rawText),
		MatchStatus:    StatusPending,
	}, nil
}

// Normalize lower-cases text and collapses runs of whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ApplyClassification records the intent label and transaction score produced
// by the classifier.
func (p *Prompt) ApplyClassification(intent string, transactionScore float64) {
	p.IntentLabel = intent
	if s, ok := vectormath.Sanitize(transactionScore); ok {
		p.TransactionScore = s
	} else {
		p.TransactionScore = 0
	}
	p.touch()
}

// SetLanguage records the detected language code.
func (p *Prompt) SetLanguage(lang string) {
	p.Language = lang
	p.touch()
}

// SetEmbedding replaces the prompt's embedding vector.
func (p *Prompt) SetEmbedding(v []float32) {
	p.Embedding = v
	p.touch()
}

// ApplyMatchOutcome overwrites the match status and best score after a
// re-match run.  The status must be a post-matching value, never pending.
func (p *Prompt) ApplyMatchOutcome(status MatchStatus, best *float64) error {
	if !status.IsValid() || status == StatusPending {
		return errors.New(errors.ErrCodePromptStatusInvalid,
			"match outcome must be answered, partial, or gap")
	}
	p.MatchStatus = status
	p.BestMatchScore = vectormath.SanitizePtr(best)
	p.touch()
	return nil
}

// SetScores records the optional import-row metrics, sanitizing non-finite
// values to absent.
func (p *Prompt) SetScores(popularity, sentiment, visibility *float64) {
	p.PopularityScore = vectormath.SanitizePtr(popularity)
	p.SentimentScore = vectormath.SanitizePtr(sentiment)
	p.VisibilityScore = vectormath.SanitizePtr(visibility)
	p.touch()
}

// WordCount returns the number of whitespace-separated words in the
// normalized text.
func (p *Prompt) WordCount() int {
	if p.NormalizedText == "" {
		return 0
	}
	return len(strings.Fields(p.NormalizedText))
}

func (p *Prompt) touch() {
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}
