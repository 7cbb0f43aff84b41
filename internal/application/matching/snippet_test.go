package matching

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractSnippet_EmptyContent(t *testing.T) {
	if got := ExtractSnippet("prompt", "", 300); got != "" {
		t.Errorf("snippet = %q, want empty", got)
	}
}

func TestExtractSnippet_ShortContentReturnedWhole(t *testing.T) {
	content := "a short page about baggage allowance"
	if got := ExtractSnippet("baggage allowance", content, 300); got != content {
		t.Errorf("snippet = %q, want full content", got)
	}
}

func TestExtractSnippet_NoKeywordsTakesLeadingWindow(t *testing.T) {
	content := strings.Repeat("x", 500)
	got := ExtractSnippet("a an it", content, 300)
	if got != content[:300]+ellipsis {
		t.Errorf("snippet = %q, want leading 300 chars with trailing ellipsis", got)
	}
}

func TestExtractSnippet_PicksWindowWithMostKeywords(t *testing.T) {
	filler := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	target := "the baggage allowance for economy passengers is twenty three kilograms"
	content := filler + target + filler

	got := ExtractSnippet("baggage allowance economy", content, 300)
	if !strings.Contains(got, "baggage allowance") {
		t.Errorf("snippet %q does not contain the keyword region", got)
	}
	if !strings.HasPrefix(got, ellipsis) || !strings.HasSuffix(got, ellipsis) {
		t.Errorf("snippet %q should be fenced by ellipses on both sides", got)
	}
}

func TestExtractSnippet_NoLeadingEllipsisAtStart(t *testing.T) {
	content := "baggage allowance rules for economy " + strings.Repeat("padding words here ", 30)
	got := ExtractSnippet("baggage allowance economy", content, 300)
	if strings.HasPrefix(got, ellipsis) {
		t.Errorf("snippet %q should not start with an ellipsis when the window is at the start", got)
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("snippet %q should end with an ellipsis", got)
	}
}

func TestExtractSnippet_WindowLength(t *testing.T) {
	content := strings.Repeat("baggage allowance details ", 40)
	got := ExtractSnippet("baggage allowance", content, 300)
	trimmed := strings.Trim(got, ellipsis)
	if len(trimmed) != 300 {
		t.Errorf("window length = %d, want 300", len(trimmed))
	}
}

func TestExtractSnippet_MultibyteContentStaysValidUTF8(t *testing.T) {
	filler := strings.Repeat("füllwörter über die gepäckregeln ", 20)
	target := "the baggage allowance for economy passengers is twenty three kilograms"
	content := filler + target + filler

	got := ExtractSnippet("baggage allowance economy", content, 300)
	if !utf8.ValidString(got) {
		t.Errorf("snippet %q is not valid UTF-8", got)
	}
	if !strings.Contains(got, "baggage allowance") {
		t.Errorf("snippet %q does not contain the keyword region", got)
	}
	trimmed := strings.Trim(got, ellipsis)
	if n := utf8.RuneCountInString(trimmed); n != 300 {
		t.Errorf("window length = %d runes, want 300", n)
	}
}

func TestExtractSnippet_MultibyteLeadingWindow(t *testing.T) {
	content := strings.Repeat("ö", 500)
	got := ExtractSnippet("a an it", content, 300)
	if !utf8.ValidString(got) {
		t.Errorf("snippet %q is not valid UTF-8", got)
	}
	want := strings.Repeat("ö", 300) + ellipsis
	if got != want {
		t.Errorf("snippet = %q, want leading 300 runes with trailing ellipsis", got)
	}
}

func TestLongestWords(t *testing.T) {
	got := longestWords("what is the best cheap flight to paris", 5)
	// Only words longer than 3 chars qualify; longest first, ties keep
	// prompt order.
	want := []string{"flight", "cheap", "paris", "what", "best"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLongestWords_CapsAtLimit(t *testing.T) {
	got := longestWords("alpha bravo charlie delta echoes foxtrot golfing hotels", 5)
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}
