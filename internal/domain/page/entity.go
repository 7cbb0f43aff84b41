// Package page implements the Page bounded context: crawled documents with
// extracted text and an embedding vector.  Pages are immutable once crawled
// except for a full overwrite on re-crawl.
package page

import (
	"net/url"
	"strings"
	"time"

	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// Page is a crawled document in the project's content corpus.
type Page struct {
	common.BaseEntity

	URL             string `json:"url"`
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description,omitempty"`

	// Content is the extracted plain text of the page body.
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`

	// Embedding is the fixed-dimension vector for the page text.
	Embedding []float32 `json:"embedding,omitempty"`

	// SnapshotPath is the object-store key of the raw HTML captured at crawl
	// time, empty when no snapshot was stored.
	SnapshotPath string     `json:"snapshot_path,omitempty"`
	CrawledAt    *time.Time `json:"crawled_at,omitempty"`
}

// New creates a Page from a crawl result.  The URL must be absolute.
func New(projectID common.ProjectID, rawURL, title, content string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, errors.New(errors.ErrCodePageURLInvalid, "page URL must be absolute").
			WithDetail("url=" + rawURL)
	}
	now := time.Now().UTC()
	return &Page{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			ProjectID: projectID,
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		URL:       rawURL,
		Title:     title,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		CrawledAt: &now,
	}, nil
}

// Overwrite replaces the crawled content on re-crawl.  Identity and URL are
// preserved; everything derived from the body is recomputed.
func (p *Page) Overwrite(title, content string) {
	now := time.Now().UTC()
	p.Title = title
	p.Content = content
	p.WordCount = len(strings.Fields(content))
	p.Embedding = nil
	p.CrawledAt = &now
	p.UpdatedAt = now
	p.Version++
}

// SetEmbedding replaces the page's embedding vector.
func (p *Page) SetEmbedding(v []float32) {
	p.Embedding = v
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}

// SetSnapshotPath records the object-store key of the stored HTML snapshot.
func (p *Page) SetSnapshotPath(key string) {
	p.SnapshotPath = key
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}

// EmbeddingText returns the text fed to the embedding provider: title plus
// meta description plus the first 1000 characters of content.
func (p *Page) EmbeddingText() string {
	var sb strings.Builder
	sb.WriteString(p.Title)
	if p.MetaDescription != "" {
		sb.WriteString(" ")
		sb.WriteString(p.MetaDescription)
	}
	if p.Content != "" {
		sb.WriteString(" ")
		content := p.Content
		if len(content) > 1000 {
			content = content[:1000]
		}
		sb.WriteString(content)
	}
	return strings.TrimSpace(sb.String())
}
