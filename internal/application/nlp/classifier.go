// Package nlp implements intent classification for prompts: weighted pattern
// scoring across a fixed 13-category taxonomy, priority-ordered tie-breaking,
// and derivation of a transaction-likelihood score.  Classification is a pure
// function of the input text and the pattern table; the same text always
// yields the same result.
package nlp

import (
	"strings"
)

// scoreThreshold is the minimum normalized category score needed to win
// outright.  Below it the fallback cascade decides.  Empirically chosen;
// keep stable.
const scoreThreshold = 0.25

// fallbackScore is the fixed raw score assigned to fallback decisions.  It
// runs through the same min(1, score*1.5) confidence mapping as scored
// categories, so a fallback reports confidence 0.45.
const fallbackScore = 0.3

// Result is the outcome of classifying one text.
type Result struct {
	Intent           Intent   `json:"intent"`
	TransactionScore float64  `json:"transaction_score"`
	Confidence       float64  `json:"confidence"`
	Signals          []string `json:"signals"`
}

// Config holds classifier tuning parameters.
type Config struct {
	// TransactionalThreshold is the transaction score at which a prompt is
	// considered transactional by IsTransactional.
	TransactionalThreshold float64
}

// DefaultConfig returns the standard classifier configuration.
func DefaultConfig() Config {
	return Config{TransactionalThreshold: 0.6}
}

// Classifier scores free text against the intent taxonomy.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a Classifier.  A zero threshold falls back to the
// default.
func NewClassifier(cfg Config) *Classifier {
	if cfg.TransactionalThreshold <= 0 {
		cfg.TransactionalThreshold = DefaultConfig().TransactionalThreshold
	}
	return &Classifier{cfg: cfg}
}

// Classify determines the intent of text.
//
// Every category's normalized score is computed from its pattern table, then
// categories are scanned in priority order and the highest score wins, with
// ties going to the earlier category so actionable intents beat the
// catch-all informational.  When nothing clears the score threshold a
// deterministic rule cascade over surface cues decides, at fixed confidence.
func (c *Classifier) Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{
			Intent:           IntentInformational,
			TransactionScore: 0,
			Confidence:       0,
			Signals:          []string{"empty text"},
		}
	}

	textLower := strings.ToLower(strings.TrimSpace(text))

	scores := make(map[Intent]float64, len(patternTable))
	signals := make(map[Intent][]string, len(patternTable))
	for _, cp := range patternTable {
		score, sig := patternScore(textLower, cp.Rules)
		scores[cp.Category] = score
		signals[cp.Category] = sig
	}

	bestIntent := IntentInformational
	bestScore := 0.0
	var bestSignals []string
	for _, intent := range priorityOrder {
		if s := scores[intent]; s >= scoreThreshold && s > bestScore {
			bestIntent = intent
			bestScore = s
			bestSignals = signals[intent]
		}
	}

	if bestScore < scoreThreshold {
		bestIntent, bestSignals = fallback(textLower)
		bestScore = fallbackScore
	}

	return Result{
		Intent:           bestIntent,
		TransactionScore: transactionScore(bestIntent, scores),
		Confidence:       minf(1.0, bestScore*1.5),
		Signals:          bestSignals,
	}
}

// IsTransactional reports whether text clears the transactional threshold.
func (c *Classifier) IsTransactional(text string) bool {
	return c.Classify(text).TransactionScore >= c.cfg.TransactionalThreshold
}

// TransactionScore returns just the transaction-likelihood score for text.
func (c *Classifier) TransactionScore(text string) float64 {
	return c.Classify(text).TransactionScore
}

// patternScore sums the weights of every matching rule and normalizes via
// min(1, total/2), giving diminishing returns for additional matches.
func patternScore(text string, rules []PatternRule) (float64, []string) {
	var total float64
	var signals []string
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			total += r.Weight
			signals = append(signals, "Matched: "+r.Source)
		}
	}
	if total == 0 {
		return 0, signals
	}
	return minf(1.0, total/2), signals
}

// transactionScore derives the transaction-likelihood from the winning
// category and the raw category scores.
func transactionScore(winner Intent, scores map[Intent]float64) float64 {
	trans := scores[IntentTransactional]
	comm := scores[IntentCommercial]
	comp := scores[IntentComparison]

	switch {
	case winner == IntentTransactional:
		return minf(1.0, 0.6+trans)
	case winner == IntentCommercial:
		return minf(0.8, 0.4+comm)
	case winner == IntentComparison:
		return minf(0.7, 0.35+comp)
	case winner == IntentNavigational && trans > 0.2:
		return minf(0.5, 0.3+trans)
	case winner == IntentOpinionSeeking || winner == IntentExploratory:
		return minf(0.4, 0.2+comm)
	default:
		return minf(0.25, trans)
	}
}

// fallback decides the intent from surface cues when no category clears the
// score threshold.  First matching rule wins.
func fallback(textLower string) (Intent, []string) {
	containsAny := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(textLower, t) {
				return true
			}
		}
		return false
	}

	if strings.HasSuffix(textLower, "?") {
		switch {
		case containsAny("how to", "how do i", "how can i", "steps to"):
			return IntentProcedural, []string{"Question with 'how to' pattern"}
		case containsAny("why is", "why isn't", "why does", "not working"):
			return IntentTroubleshooting, []string{"Question about problem"}
		case containsAny("policy", "rule", "allowed", "legal"):
			return IntentRegulatory, []string{"Question about rules/policy"}
		case containsAny("good", "worth", "recommend", "opinion"):
			return IntentOpinionSeeking, []string{"Subjective question detected"}
		case containsAny("best", "vs", "versus", "compare", "better"):
			return IntentCommercial, []string{"Comparison question"}
		case containsAny("tell me about", "what are", "explain"):
			return IntentExploratory, []string{"Exploratory question"}
		default:
			return IntentInformational, []string{"General question detected"}
		}
	}

	firstWord := ""
	if fields := strings.Fields(textLower); len(fields) > 0 {
		firstWord = fields[0]
	}

	switch firstWord {
	case "write", "generate", "create", "compose", "draft", "summarize":
		return IntentMeta, []string{"Starts with generation verb"}
	case "how":
		return IntentProcedural, []string{"Starts with 'how'"}
	case "what", "where", "when", "who":
		return IntentInformational, []string{"Starts with question word"}
	case "why":
		return IntentTroubleshooting, []string{"Starts with 'why'"}
	case "which":
		return IntentComparison, []string{"Starts with 'which'"}
	}

	if containsAny("book", "buy", "purchase", "order") {
		return IntentTransactional, []string{"Contains transaction verb"}
	}
	if containsAny("login", "sign in", "my account") {
		return IntentNavigational, []string{"Contains navigation term"}
	}

	return IntentInformational, []string{"Default classification"}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
