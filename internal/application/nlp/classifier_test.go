package nlp

import (
	"reflect"
	"testing"
)

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultConfig())
}

func TestClassify_EmptyText(t *testing.T) {
	c := newTestClassifier()

	for _, text := range []string{"", "   ", "\t\n"} {
		res := c.Classify(text)
		if res.Intent != IntentInformational {
			t.Errorf("Classify(%q) intent = %s, want informational", text, res.Intent)
		}
		if res.TransactionScore != 0 || res.Confidence != 0 {
			t.Errorf("Classify(%q) = (%v, %v), want zero scores", text, res.TransactionScore, res.Confidence)
		}
		if len(res.Signals) != 1 {
			t.Errorf("Classify(%q) signals = %v, want a single default signal", text, res.Signals)
		}
	}
}

func TestClassify_IntentByCategory(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		text string
		want Intent
	}{
		{"buy cheap running shoes online", IntentTransactional},
		{"book a flight to london", IntentTransactional},
		{"best laptop for programming", IntentCommercial},
		{"iphone vs android which is better", IntentComparison},
		{"go to the login page of my account", IntentNavigational},
		{"how to install postgres on ubuntu", IntentProcedural},
		{"my printer is not working error 49", IntentTroubleshooting},
		{"is it legal to fly a drone in germany", IntentRegulatory},
		{"write a poem about autumn", IntentMeta},
		{"i am so frustrated and angry about this", IntentEmotional},
		{"summarize the quarterly report", IntentMeta},
		{"tell me about the solar system?", IntentExploratory},
		{"is this discount worth it?", IntentOpinionSeeking},
	}

	for _, tc := range cases {
		got := c.Classify(tc.text)
		if got.Intent != tc.want {
			t.Errorf("Classify(%q) intent = %s, want %s (signals: %v)", tc.text, got.Intent, tc.want, got.Signals)
		}
	}
}

func TestClassify_CommercialFlightExample(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify("what is the best cheap flight to paris")
	if res.Intent != IntentCommercial {
		t.Fatalf("intent = %s, want commercial (signals: %v)", res.Intent, res.Signals)
	}
	if res.TransactionScore <= 0.4 || res.TransactionScore > 0.8 {
		t.Errorf("transaction score = %v, want in (0.4, 0.8]", res.TransactionScore)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Errorf("confidence = %v, want in (0, 1]", res.Confidence)
	}
}

func TestClassify_TransactionalScoreFloor(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify("buy concert tickets and checkout now")
	if res.Intent != IntentTransactional {
		t.Fatalf("intent = %s, want transactional", res.Intent)
	}
	if res.TransactionScore < 0.6 {
		t.Errorf("transaction score = %v, want >= 0.6", res.TransactionScore)
	}
	if !c.IsTransactional("buy concert tickets and checkout now") {
		t.Error("IsTransactional = false, want true")
	}
}

func TestClassify_NonCommercialLowTransactionScore(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify("how to install postgres on ubuntu")
	if res.TransactionScore > 0.25 {
		t.Errorf("transaction score = %v, want <= 0.25 for procedural text", res.TransactionScore)
	}
	if c.IsTransactional("how to install postgres on ubuntu") {
		t.Error("IsTransactional = true, want false")
	}
}

func TestClassify_FallbackRules(t *testing.T) {
	c := newTestClassifier()

	// None of these trip a pattern above the score threshold, so the
	// surface-cue cascade decides.
	cases := []struct {
		text string
		want Intent
	}{
		{"which database should we use", IntentComparison},
		{"why bother trying again", IntentTroubleshooting},
		{"what happened at the meeting yesterday", IntentInformational},
		{"random noise zxqv", IntentInformational},
	}

	for _, tc := range cases {
		got := c.Classify(tc.text)
		if got.Intent != tc.want {
			t.Errorf("Classify(%q) intent = %s, want %s (signals: %v)", tc.text, got.Intent, tc.want, got.Signals)
		}
	}
}

func TestClassify_FallbackConfidence(t *testing.T) {
	c := newTestClassifier()

	// No pattern fires for this one, so the fallback cascade decides and
	// confidence is fixed at min(1, 0.3*1.5).
	res := c.Classify("random noise zxqv")
	if res.Confidence != 0.45 {
		t.Errorf("confidence = %v, want 0.45 for fallback decisions", res.Confidence)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier()

	text := "compare aws and gcp pricing for small teams"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		again := c.Classify(text)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestClassify_SignalsNamePatterns(t *testing.T) {
	c := newTestClassifier()

	res := c.Classify("buy shoes")
	if len(res.Signals) == 0 {
		t.Fatal("expected at least one signal")
	}
	for _, s := range res.Signals {
		if s == "" {
			t.Error("empty signal string")
		}
	}
}

func TestNewClassifier_ZeroThresholdUsesDefault(t *testing.T) {
	c := NewClassifier(Config{})
	if c.cfg.TransactionalThreshold != 0.6 {
		t.Errorf("threshold = %v, want default 0.6", c.cfg.TransactionalThreshold)
	}
}

func TestIntent_IsValid(t *testing.T) {
	for _, in := range priorityOrder {
		if !in.IsValid() {
			t.Errorf("priority-order intent %q not valid", in)
		}
	}
	if Intent("bogus").IsValid() {
		t.Error("bogus intent reported valid")
	}
}
