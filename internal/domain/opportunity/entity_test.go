package opportunity

import (
	"math"
	"testing"

	"github.com/searchlens/gapintel/pkg/types/common"
)

func newTestOpportunity(t *testing.T) *Opportunity {
	t.Helper()
	o, err := New(common.NewID(), "proj-1", 0.6, 0.4,
		DifficultyFactors{NeedsNewPage: true, TechnicalComplexity: 0.6},
		ActionCreateArticle, "no existing content answers this query")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{
		"create_faq", "create_article", "create_product_page", "create_landing_page",
		"expand_existing", "add_cta", "add_structured_data", "translate", "canonicalize", "other",
	} {
		if _, err := ParseAction(s); err != nil {
			t.Errorf("expected %q to parse, got %v", s, err)
		}
	}
	if _, err := ParseAction("delete_page"); err == nil {
		t.Error("expected unknown action to fail fast")
	}
}

func TestNew_Validation(t *testing.T) {
	promptID := common.NewID()
	factors := DifficultyFactors{}

	if _, err := New(promptID, "p", 0.5, 0.4, factors, Action("bogus"), "r"); err == nil {
		t.Error("unknown action must be rejected")
	}
	if _, err := New(promptID, "p", math.NaN(), 0.4, factors, ActionOther, "r"); err == nil {
		t.Error("non-finite priority must be rejected")
	}
	if _, err := New(promptID, "p", 0.5, math.Inf(1), factors, ActionOther, "r"); err == nil {
		t.Error("non-finite difficulty must be rejected")
	}
	if _, err := New(promptID, "p", 1.2, 0.4, factors, ActionOther, "r"); err == nil {
		t.Error("priority above 1 must be rejected")
	}
	if _, err := New(promptID, "p", 0.5, 0.05, factors, ActionOther, "r"); err == nil {
		t.Error("difficulty below the 0.1 floor must be rejected")
	}

	o, err := New(promptID, "p", 0.5, 0.1, factors, ActionOther, "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusNew {
		t.Errorf("new opportunities must start in status new, got %s", o.Status)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	o := newTestOpportunity(t)

	if err := o.UpdateStatus(StatusResolved); err == nil {
		t.Error("new -> resolved must be illegal")
	}
	if err := o.UpdateStatus(Status("bogus")); err == nil {
		t.Error("unknown status must be rejected")
	}

	if err := o.UpdateStatus(StatusInProgress); err != nil {
		t.Fatalf("new -> in_progress should be allowed: %v", err)
	}
	if err := o.UpdateStatus(StatusResolved); err != nil {
		t.Fatalf("in_progress -> resolved should be allowed: %v", err)
	}
	if err := o.UpdateStatus(StatusInProgress); err == nil {
		t.Error("resolved is terminal")
	}
}

func TestUpdateStatus_DismissedCanReopen(t *testing.T) {
	o := newTestOpportunity(t)
	if err := o.UpdateStatus(StatusDismissed); err != nil {
		t.Fatalf("new -> dismissed should be allowed: %v", err)
	}
	if err := o.UpdateStatus(StatusNew); err != nil {
		t.Fatalf("dismissed -> new should be allowed: %v", err)
	}
}

func TestSetRelatedPages_CapsAtThree(t *testing.T) {
	o := newTestOpportunity(t)
	ids := []common.ID{common.NewID(), common.NewID(), common.NewID(), common.NewID()}
	o.SetRelatedPages(ids)
	if len(o.RelatedPageIDs) != 3 {
		t.Errorf("expected at most 3 related pages, got %d", len(o.RelatedPageIDs))
	}
}

func TestAttachSuggestion(t *testing.T) {
	o := newTestOpportunity(t)
	o.AttachSuggestion(&ContentSuggestion{Title: "Visa requirements for France"})
	if o.ContentSuggestion == nil || o.ContentSuggestion.Title == "" {
		t.Error("suggestion not attached")
	}
}
