package opportunity

import (
	"math"
	"testing"

	domainopp "github.com/searchlens/gapintel/internal/domain/opportunity"
	"github.com/searchlens/gapintel/internal/domain/prompt"
)

func newTestGenerator() *Generator {
	return NewGenerator(DefaultConfig())
}

func score(v float64) *float64 { return &v }

func TestGenerate_GapWithoutRelatedPagesNeedsNewPage(t *testing.T) {
	g := newTestGenerator()

	got := g.Generate(Input{
		PromptText:  "simple question here",
		MatchStatus: prompt.StatusGap,
	})

	if !got.DifficultyFactors.NeedsNewPage {
		t.Error("NeedsNewPage = false, want true for gap with no related pages")
	}
	if got.DifficultyFactors.TechnicalComplexity != 0.6 {
		t.Errorf("technical complexity = %v, want 0.6", got.DifficultyFactors.TechnicalComplexity)
	}
}

func TestGenerate_GapWithRelatedPages(t *testing.T) {
	g := newTestGenerator()

	got := g.Generate(Input{
		PromptText:      "simple question here",
		MatchStatus:     prompt.StatusGap,
		HasRelatedPages: true,
	})

	if got.DifficultyFactors.NeedsNewPage {
		t.Error("NeedsNewPage = true, want false when related pages exist")
	}
	if got.DifficultyFactors.TechnicalComplexity != 0.4 {
		t.Errorf("technical complexity = %v, want 0.4", got.DifficultyFactors.TechnicalComplexity)
	}
}

func TestGenerate_PartialScalesWithBestScore(t *testing.T) {
	g := newTestGenerator()

	got := g.Generate(Input{
		PromptText:      "simple question here",
		MatchStatus:     prompt.StatusPartial,
		BestMatchScore:  score(0.6),
		HasRelatedPages: true,
	})

	want := 0.4 - 0.6*0.3
	if math.Abs(got.DifficultyFactors.TechnicalComplexity-want) > 1e-9 {
		t.Errorf("technical complexity = %v, want %v", got.DifficultyFactors.TechnicalComplexity, want)
	}

	noScore := g.Generate(Input{
		PromptText:      "simple question here",
		MatchStatus:     prompt.StatusPartial,
		HasRelatedPages: true,
	})
	if noScore.DifficultyFactors.TechnicalComplexity != 0.25 {
		t.Errorf("technical complexity without best score = %v, want 0.25", noScore.DifficultyFactors.TechnicalComplexity)
	}
}

func TestGenerate_ContentComplexityBands(t *testing.T) {
	g := newTestGenerator()

	cases := []struct {
		words int
		want  float64
	}{
		{20, 0.5},
		{12, 0.35},
		{8, 0.25},
		{4, 0.15},
	}
	for _, tc := range cases {
		text := ""
		for i := 0; i < tc.words; i++ {
			text += "zz "
		}
		got := g.Generate(Input{PromptText: text, MatchStatus: prompt.StatusGap})
		if got.DifficultyFactors.ContentComplexity != tc.want {
			t.Errorf("%d words: content complexity = %v, want %v", tc.words, got.DifficultyFactors.ContentComplexity, tc.want)
		}
	}
}

func TestGenerate_ResearchVocabulary(t *testing.T) {
	g := newTestGenerator()

	precision := g.Generate(Input{PromptText: "exact deadline for applications", MatchStatus: prompt.StatusGap})
	if precision.DifficultyFactors.ResearchRequired != 0.3 {
		t.Errorf("precision research = %v, want 0.3", precision.DifficultyFactors.ResearchRequired)
	}

	comparison := g.Generate(Input{PromptText: "best route overall", MatchStatus: prompt.StatusGap})
	if comparison.DifficultyFactors.ResearchRequired != 0.35 {
		t.Errorf("comparison research = %v, want 0.35", comparison.DifficultyFactors.ResearchRequired)
	}

	// Comparison vocabulary raises, never lowers, an existing precision hit.
	both := g.Generate(Input{PromptText: "exact deadline which is better", MatchStatus: prompt.StatusGap})
	if both.DifficultyFactors.ResearchRequired != 0.35 {
		t.Errorf("combined research = %v, want 0.35", both.DifficultyFactors.ResearchRequired)
	}

	policy := g.Generate(Input{PromptText: "am i allowed two bags", MatchStatus: prompt.StatusGap})
	if policy.DifficultyFactors.ResearchRequired != 0.25 {
		t.Errorf("policy research = %v, want 0.25", policy.DifficultyFactors.ResearchRequired)
	}
}

func TestGenerate_TechnicalVocabularyRaisesComplexity(t *testing.T) {
	g := newTestGenerator()

	got := g.Generate(Input{PromptText: "visa details", MatchStatus: prompt.StatusGap})
	if math.Abs(got.DifficultyFactors.TechnicalComplexity-0.75) > 1e-9 {
		t.Errorf("technical complexity = %v, want 0.6 + 0.15", got.DifficultyFactors.TechnicalComplexity)
	}
}

func TestGenerate_DifficultyBounds(t *testing.T) {
	g := newTestGenerator()

	// Partial against a perfect best score produces almost no work, but
	// difficulty is floored.
	easy := g.Generate(Input{
		PromptText:      "ok",
		MatchStatus:     prompt.StatusPartial,
		BestMatchScore:  score(1.0),
		HasRelatedPages: true,
	})
	if easy.DifficultyScore != 0.1 {
		t.Errorf("difficulty = %v, want floored at 0.1", easy.DifficultyScore)
	}

	hard := g.Generate(Input{
		PromptText:  "exact api integration requirements deadline visa passport policy which is better and how much does it cost for developers",
		MatchStatus: prompt.StatusGap,
	})
	if hard.DifficultyScore < 0.1 || hard.DifficultyScore > 1.0 {
		t.Errorf("difficulty = %v, want within [0.1, 1.0]", hard.DifficultyScore)
	}
}

func TestGenerate_PriorityFormula(t *testing.T) {
	g := newTestGenerator()

	got := g.Generate(Input{
		PromptText:       "simple question here",
		PopularityScore:  score(0.8),
		TransactionScore: 0.5,
		SentimentScore:   score(-0.5),
		MatchStatus:      prompt.StatusGap,
	})

	want := clamp01(0.4*0.8 + 0.3*0.5 + 0.2*0.5 - 0.1*got.DifficultyScore)
	if math.Abs(got.PriorityScore-want) > 1e-9 {
		t.Errorf("priority = %v, want %v", got.PriorityScore, want)
	}
}

func TestGenerate_PriorityDefaults(t *testing.T) {
	g := newTestGenerator()

	// Popularity defaults to 0.5 and sentiment to 0 when absent.
	got := g.Generate(Input{
		PromptText:  "simple question here",
		MatchStatus: prompt.StatusGap,
	})
	want := clamp01(0.4*0.5 - 0.1*got.DifficultyScore)
	if math.Abs(got.PriorityScore-want) > 1e-9 {
		t.Errorf("priority = %v, want %v", got.PriorityScore, want)
	}
	if got.PriorityScore < 0 || got.PriorityScore > 1 {
		t.Errorf("priority = %v, out of [0,1]", got.PriorityScore)
	}
}

func TestRecommendAction_Cascade(t *testing.T) {
	g := newTestGenerator()

	cases := []struct {
		name string
		in   Input
		want domainopp.Action
	}{
		{
			"transactional gap about pricing",
			Input{PromptText: "ticket price to rome", TransactionScore: 0.7, MatchStatus: prompt.StatusGap},
			domainopp.ActionCreateProductPage,
		},
		{
			"transactional gap otherwise",
			Input{PromptText: "book a premium seat", TransactionScore: 0.7, MatchStatus: prompt.StatusGap},
			domainopp.ActionCreateLandingPage,
		},
		{
			"transactional non-gap",
			Input{PromptText: "book a premium seat", TransactionScore: 0.7, MatchStatus: prompt.StatusPartial},
			domainopp.ActionAddCTA,
		},
		{
			"faq stem gap",
			Input{PromptText: "what is the baggage allowance", MatchStatus: prompt.StatusGap},
			domainopp.ActionCreateFAQ,
		},
		{
			"faq stem non-gap",
			Input{PromptText: "can i bring my dog", MatchStatus: prompt.StatusPartial},
			domainopp.ActionExpandExisting,
		},
		{
			"gap with related pages",
			Input{PromptText: "airport lounge details", MatchStatus: prompt.StatusGap, HasRelatedPages: true},
			domainopp.ActionExpandExisting,
		},
		{
			"gap without related pages",
			Input{PromptText: "airport lounge details", MatchStatus: prompt.StatusGap},
			domainopp.ActionCreateArticle,
		},
		{
			"plain partial",
			Input{PromptText: "airport lounge details", MatchStatus: prompt.StatusPartial},
			domainopp.ActionExpandExisting,
		},
		{
			"answered falls through to other",
			Input{PromptText: "airport lounge details", MatchStatus: prompt.StatusAnswered},
			domainopp.ActionOther,
		},
	}

	for _, tc := range cases {
		got := g.Generate(tc.in)
		if got.RecommendedAction != tc.want {
			t.Errorf("%s: action = %s, want %s", tc.name, got.RecommendedAction, tc.want)
		}
		if got.Reason == "" {
			t.Errorf("%s: empty reason", tc.name)
		}
	}
}

func TestRecommendAction_ReasonIsFixedText(t *testing.T) {
	g := newTestGenerator()

	got := g.Generate(Input{PromptText: "what is the baggage allowance", MatchStatus: prompt.StatusGap})
	want := "Common question not answered - add to FAQ or help content"
	if got.Reason != want {
		t.Errorf("reason = %q, want %q", got.Reason, want)
	}
}
