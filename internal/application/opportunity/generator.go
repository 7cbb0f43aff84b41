// Package opportunity scores content gaps and recommends the action to
// close them.  Priority is an explicit linear weighting of popularity,
// purchase intent, sentiment strength and difficulty, kept deliberately
// simple so end users reviewing recommendations can audit every score.
package opportunity

import (
	"strings"

	domainopp "github.com/searchlens/gapintel/internal/domain/opportunity"
	"github.com/searchlens/gapintel/internal/domain/prompt"
)

// Priority weights.
const (
	weightPopularity  = 0.4
	weightTransaction = 0.3
	weightSentiment   = 0.2
	weightDifficulty  = 0.1
)

// defaultTransactionalThreshold is the transaction score above which a
// prompt is treated as purchase-driven when recommending an action.
const defaultTransactionalThreshold = 0.6

// Input carries everything the generator needs about one prompt.
type Input struct {
	PromptText       string
	Topic            string
	PopularityScore  *float64
	TransactionScore float64
	SentimentScore   *float64
	MatchStatus      prompt.MatchStatus
	BestMatchScore   *float64
	HasRelatedPages  bool
}

// Assessment is the generator's scoring and recommendation for one prompt.
type Assessment struct {
	PriorityScore     float64
	DifficultyScore   float64
	DifficultyFactors domainopp.DifficultyFactors
	RecommendedAction domainopp.Action
	Reason            string
}

// Config holds generator tuning parameters.
type Config struct {
	TransactionalThreshold float64
}

// DefaultConfig returns the standard generator configuration.
func DefaultConfig() Config {
	return Config{TransactionalThreshold: defaultTransactionalThreshold}
}

// Generator turns gap-analysis outcomes into scored opportunities.  It is
// stateless and deterministic.
type Generator struct {
	cfg Config
}

// NewGenerator creates a Generator, filling a zero threshold with the
// default.
func NewGenerator(cfg Config) *Generator {
	if cfg.TransactionalThreshold <= 0 {
		cfg.TransactionalThreshold = defaultTransactionalThreshold
	}
	return &Generator{cfg: cfg}
}

// Generate scores one prompt's opportunity.
func (g *Generator) Generate(in Input) Assessment {
	difficulty, factors := estimateDifficulty(in)

	popularity := 0.5
	if in.PopularityScore != nil {
		popularity = *in.PopularityScore
	}
	sentimentImpact := 0.0
	if in.SentimentScore != nil {
		sentimentImpact = abs(*in.SentimentScore)
	}

	priority := weightPopularity*popularity +
		weightTransaction*in.TransactionScore +
		weightSentiment*sentimentImpact -
		weightDifficulty*difficulty
	priority = clamp01(priority)

	action, reason := g.recommendAction(in)

	return Assessment{
		PriorityScore:     priority,
		DifficultyScore:   difficulty,
		DifficultyFactors: factors,
		RecommendedAction: action,
		Reason:            reason,
	}
}

// difficulty component weights.
const (
	difficultyWeightNewPage   = 0.25
	difficultyWeightTechnical = 0.30
	difficultyWeightContent   = 0.25
	difficultyWeightResearch  = 0.20
)

var precisionKeywords = []string{
	"how much", "how many", "price", "cost", "exact", "specific",
	"requirements", "deadline", "limit", "minimum", "maximum",
}

var comparisonKeywords = []string{
	"better", "best", "compare", "vs", "difference", "which",
}

var technicalKeywords = []string{
	"api", "integration", "technical", "developer", "code", "sdk",
	"policy", "regulation", "passport", "visa", "requirement",
}

var policyKeywords = []string{
	"can i", "am i allowed", "is it possible", "do i need", "what happens if",
}

// estimateDifficulty scores how much work closing the gap takes.  The result
// is clamped to [0.1, 1.0]: nothing is ever zero difficulty.
func estimateDifficulty(in Input) (float64, domainopp.DifficultyFactors) {
	textLower := strings.ToLower(in.PromptText)

	factors := domainopp.DifficultyFactors{
		NeedsNewPage: in.MatchStatus == prompt.StatusGap && !in.HasRelatedPages,
	}

	switch {
	case factors.NeedsNewPage:
		factors.TechnicalComplexity = 0.6
	case in.MatchStatus == prompt.StatusGap:
		factors.TechnicalComplexity = 0.4
	case in.MatchStatus == prompt.StatusPartial:
		if in.BestMatchScore != nil && *in.BestMatchScore != 0 {
			factors.TechnicalComplexity = max0(0.4 - *in.BestMatchScore*0.3)
		} else {
			factors.TechnicalComplexity = 0.25
		}
	}

	wordCount := len(strings.Fields(in.PromptText))
	switch {
	case wordCount > 15:
		factors.ContentComplexity = 0.5
	case wordCount > 10:
		factors.ContentComplexity = 0.35
	case wordCount > 6:
		factors.ContentComplexity = 0.25
	default:
		factors.ContentComplexity = 0.15
	}

	if containsAny(textLower, precisionKeywords) {
		factors.ResearchRequired = 0.3
	}
	if containsAny(textLower, comparisonKeywords) && factors.ResearchRequired < 0.35 {
		factors.ResearchRequired = 0.35
	}
	if containsAny(textLower, technicalKeywords) {
		factors.TechnicalComplexity += 0.15
	}
	if containsAny(textLower, policyKeywords) && factors.ResearchRequired < 0.25 {
		factors.ResearchRequired = 0.25
	}

	difficulty := difficultyWeightNewPage*boolToFloat(factors.NeedsNewPage) +
		difficultyWeightTechnical*factors.TechnicalComplexity +
		difficultyWeightContent*factors.ContentComplexity +
		difficultyWeightResearch*factors.ResearchRequired

	if difficulty < 0.1 {
		difficulty = 0.1
	}
	if difficulty > 1.0 {
		difficulty = 1.0
	}
	return difficulty, factors
}

var faqStems = []string{
	"what is", "what are", "what does", "how do", "how to", "can i", "is there",
}

// recommendAction picks the content action for the prompt.  The first
// matching rule wins and its reason string is returned verbatim to users.
func (g *Generator) recommendAction(in Input) (domainopp.Action, string) {
	textLower := strings.ToLower(in.PromptText)
	isGap := in.MatchStatus == prompt.StatusGap

	if in.TransactionScore >= g.cfg.TransactionalThreshold {
		if isGap {
			if containsAny(textLower, []string{"price", "cost", "rate"}) {
				return domainopp.ActionCreateProductPage,
					"High purchase intent query about pricing needs dedicated pricing/product page with clear CTAs"
			}
			return domainopp.ActionCreateLandingPage,
				"High purchase intent query needs conversion-focused landing page"
		}
		return domainopp.ActionAddCTA,
			"Partial match exists - add or improve call-to-action for conversion"
	}

	for _, stem := range faqStems {
		if strings.HasPrefix(textLower, stem) {
			if isGap {
				return domainopp.ActionCreateFAQ,
					"Common question not answered - add to FAQ or help content"
			}
			return domainopp.ActionExpandExisting,
				"Question partially answered - expand existing content"
		}
	}

	if isGap {
		if in.HasRelatedPages {
			return domainopp.ActionExpandExisting,
				"Related content exists - expand to cover this topic"
		}
		return domainopp.ActionCreateArticle,
			"No related content - create new informational article"
	}

	if in.MatchStatus == prompt.StatusPartial {
		return domainopp.ActionExpandExisting,
			"Content partially addresses query - needs expansion"
	}

	return domainopp.ActionOther, "Review and determine best approach"
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
