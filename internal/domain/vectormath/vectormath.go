// Package vectormath provides cosine similarity and top-k nearest-neighbor
// search over embedding vectors.  All functions are pure and deterministic;
// non-finite values are trapped at this boundary so that NaN/Inf can never
// reach scoring formulas or JSON-facing output.
package vectormath

import (
	"math"
	"sort"

	"github.com/searchlens/gapintel/pkg/errors"
)

// Scored pairs a candidate index with its similarity score.
type Scored struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Similarity computes cosine similarity between two vectors, remapped from
// [-1,1] to [0,1] via (cos+1)/2.  It returns exactly 0 when either vector has
// zero norm, and never returns NaN or Inf.  Vectors of different lengths are
// compared over the shorter prefix.
func Similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		normA += fa * fa
		normB += fb * fb
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	score := (cos + 1) / 2
	if s, ok := Sanitize(score); ok {
		return s
	}
	return 0
}

// TopK returns the indices and scores of the k candidates most similar to
// query, sorted descending by score with ties broken by ascending candidate
// index.  The result is deterministic for identical input.  An empty
// candidate list yields an empty result; non-finite scores are clamped to 0.
func TopK(query []float32, candidates [][]float32, k int) []Scored {
	if k <= 0 || len(candidates) == 0 {
		return []Scored{}
	}

	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		s := Similarity(query, c)
		if _, ok := Sanitize(s); !ok {
			s = 0
		}
		scored[i] = Scored{Index: i, Score: s}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// Sanitize reports whether f is a usable finite value.  Callers at external
// numeric boundaries (import rows, upstream APIs) must treat a false return
// as "absent" rather than substituting a default themselves.
func Sanitize(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SanitizePtr maps a possibly non-finite optional value to nil.
func SanitizePtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	if _, ok := Sanitize(*f); !ok {
		return nil
	}
	return f
}

// Thresholds holds the score bands used to classify how well a prompt is
// served by existing content.
type Thresholds struct {
	Answered float64
	Partial  float64
}

// DefaultThresholds returns the standard answered/partial bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Answered: 0.75, Partial: 0.50}
}

// Validate checks threshold ordering and bounds.
func (t Thresholds) Validate() error {
	if t.Answered < 0 || t.Answered > 1 || t.Partial < 0 || t.Partial > 1 {
		return errors.New(errors.ErrCodeThresholdInvalid, "thresholds must be within [0,1]")
	}
	if t.Partial > t.Answered {
		return errors.New(errors.ErrCodeThresholdInvalid, "partial threshold must not exceed answered threshold")
	}
	return nil
}

// Band is a coarse classification of a best-match score.
type Band string

const (
	BandAnswered Band = "answered"
	BandPartial  Band = "partial"
	BandGap      Band = "gap"
)

// ClassifyScore maps an optional best score into a Band.  A nil or non-finite
// score means nothing matched at all and classifies as gap.
func (t Thresholds) ClassifyScore(best *float64) Band {
	best = SanitizePtr(best)
	if best == nil {
		return BandGap
	}
	switch {
	case *best >= t.Answered:
		return BandAnswered
	case *best >= t.Partial:
		return BandPartial
	default:
		return BandGap
	}
}

// IsZero reports whether v has zero norm.
func IsZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// ZeroVector returns an all-zero vector of dimension d.  Embedding adapters
// return it for empty input so downstream similarity math stays well-defined.
func ZeroVector(d int) []float32 {
	return make([]float32, d)
}
