package page

import (
	"strings"
	"testing"
)

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("proj-1", "/pricing", "Pricing", "content"); err == nil {
		t.Error("expected relative URL to be rejected")
	}
	if _, err := New("proj-1", "not a url at all ::", "t", "c"); err == nil {
		t.Error("expected malformed URL to be rejected")
	}
}

func TestNew_ComputesWordCount(t *testing.T) {
	p, err := New("proj-1", "https://example.com/pricing", "Pricing", "our plans start at ten dollars")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.WordCount != 6 {
		t.Errorf("expected 6 words, got %d", p.WordCount)
	}
	if p.CrawledAt == nil {
		t.Error("crawl time must be set")
	}
}

func TestOverwrite_ResetsDerivedFields(t *testing.T) {
	p, _ := New("proj-1", "https://example.com/a", "Old", "old content here")
	p.SetEmbedding([]float32{1, 2, 3})

	p.Overwrite("New", "fresh body")

	if p.Title != "New" || p.Content != "fresh body" {
		t.Error("overwrite did not replace content")
	}
	if p.WordCount != 2 {
		t.Errorf("expected recomputed word count 2, got %d", p.WordCount)
	}
	if p.Embedding != nil {
		t.Error("embedding must be cleared on re-crawl")
	}
	if p.URL != "https://example.com/a" {
		t.Error("URL must be preserved")
	}
}

func TestEmbeddingText_TruncatesContent(t *testing.T) {
	long := strings.Repeat("x", 2000)
	p, _ := New("proj-1", "https://example.com/a", "Title", long)
	p.MetaDescription = "meta"

	text := p.EmbeddingText()

	if !strings.HasPrefix(text, "Title meta ") {
		t.Errorf("embedding text must lead with title and meta, got %q", text[:20])
	}
	if len(text) > len("Title meta ")+1000 {
		t.Errorf("content portion must be capped at 1000 chars, got %d", len(text))
	}
}

func TestEmbeddingText_EmptyBody(t *testing.T) {
	p, _ := New("proj-1", "https://example.com/a", "Only Title", "")
	if p.EmbeddingText() != "Only Title" {
		t.Errorf("unexpected embedding text: %q", p.EmbeddingText())
	}
}
