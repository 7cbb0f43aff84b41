// Package match implements the Match bounded context: scored prompt-to-page
// associations.  Match sets are regenerated in full on every re-match run,
// never patched incrementally.
package match

import (
	"context"
	"time"

	"github.com/searchlens/gapintel/internal/domain/vectormath"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// Type classifies how a prompt relates to a matched page.
type Type string

const (
	// TypeExact marks matches with strong literal word overlap.
	TypeExact Type = "exact"
	// TypeSemantic marks matches carried primarily by embedding similarity.
	TypeSemantic Type = "semantic"
	// TypePartial marks weak matches below the semantic band.
	TypePartial Type = "partial"
)

// IsValid checks if the match type is a known value.
func (t Type) IsValid() bool {
	switch t {
	case TypeExact, TypeSemantic, TypePartial:
		return true
	default:
		return false
	}
}

// String returns the string representation of the match type.
func (t Type) String() string {
	return string(t)
}

// ParseType parses a string into a Type, failing fast on unknown values.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if t.IsValid() {
		return t, nil
	}
	return "", errors.New(errors.ErrCodeMatchTypeInvalid, "unknown match type: "+s)
}

// Match is a directed edge from a prompt to a page.  For a given prompt,
// ranks are contiguous starting at 1, ordered by embedding similarity before
// any exact-overlap adjustment of the stored score.
type Match struct {
	ID              common.ID `json:"id"`
	PromptID        common.ID `json:"prompt_id"`
	PageID          common.ID `json:"page_id"`
	SimilarityScore float64   `json:"similarity_score"`
	MatchType       Type      `json:"match_type"`
	MatchedSnippet  string    `json:"matched_snippet,omitempty"`
	Rank            int       `json:"rank"`
	CreatedAt       time.Time `json:"created_at"`
}

// New creates a Match edge.  The score is clamped to finite [0,1] input.
func New(promptID, pageID common.ID, score float64, matchType Type, snippet string, rank int) (*Match, error) {
	if !matchType.IsValid() {
		return nil, errors.New(errors.ErrCodeMatchTypeInvalid, "unknown match type: "+string(matchType))
	}
	if rank < 1 {
		return nil, errors.NewValidationError("rank", "match rank must be >= 1")
	}
	s, ok := vectormath.Sanitize(score)
	if !ok {
		s = 0
	}
	return &Match{
		ID:              common.NewID(),
		PromptID:        promptID,
		PageID:          pageID,
		SimilarityScore: s,
		MatchType:       matchType,
		MatchedSnippet:  snippet,
		Rank:            rank,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ValidateSet checks the rank invariant over a prompt's full match set:
// ranks are contiguous starting at 1 with no duplicates.  Stored scores need
// not be monotonic with rank; ranking follows embedding similarity, and the
// exact-overlap floor can later raise a lower-ranked score above rank 1.
func ValidateSet(matches []*Match) error {
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		if m.Rank < 1 || m.Rank > len(matches) {
			return errors.NewValidationError("rank", "match ranks must be contiguous from 1")
		}
		if seen[m.Rank] {
			return errors.NewValidationError("rank", "duplicate match rank")
		}
		seen[m.Rank] = true
	}
	return nil
}

// Repository defines the persistence contract for match sets.
type Repository interface {
	// ReplaceForPrompt deletes the prompt's existing matches and inserts the
	// new set in one transaction.  Readers never observe a partial state.
	ReplaceForPrompt(ctx context.Context, promptID common.ID, matches []*Match) error
	ListByPrompt(ctx context.Context, promptID common.ID) ([]*Match, error)
	ListByPage(ctx context.Context, pageID common.ID) ([]*Match, error)
	DeleteByPrompt(ctx context.Context, promptID common.ID) error
}
