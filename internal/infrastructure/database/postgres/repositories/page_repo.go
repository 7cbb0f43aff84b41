package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/searchlens/gapintel/internal/domain/page"
	appErrors "github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// PageRepository
// ─────────────────────────────────────────────────────────────────────────────

// PageRepository is the PostgreSQL implementation of page.Repository.
type PageRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewPageRepository constructs a ready-to-use PageRepository.
func NewPageRepository(pool *pgxpool.Pool, logger Logger) *PageRepository {
	return &PageRepository{pool: pool, logger: logger}
}

const pageColumns = `
	id, project_id, url, title, meta_description,
	content, word_count, embedding, snapshot_path, crawled_at,
	created_at, updated_at, version`

func scanPage(s rowScanner) (*page.Page, error) {
	p := &page.Page{}
	err := s.Scan(
		&p.ID, &p.ProjectID, &p.URL, &p.Title, &p.MetaDescription,
		&p.Content, &p.WordCount, &p.Embedding, &p.SnapshotPath, &p.CrawledAt,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create persists a new page record.  A duplicate (project_id, url) pair is
// reported as an already-exists conflict.
func (r *PageRepository) Create(ctx context.Context, p *page.Page) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.ProjectID, p.URL, p.Title, p.MetaDescription,
		p.Content, p.WordCount, p.Embedding, p.SnapshotPath, p.CrawledAt,
		p.CreatedAt, p.UpdatedAt, p.Version,
	)
	if err != nil {
		r.logger.Error("PageRepository.Create", "page_id", p.ID, "url", p.URL, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert page")
	}
	return nil
}

// GetByID loads a single page.
func (r *PageRepository) GetByID(ctx context.Context, id common.ID) (*page.Page, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.New(appErrors.ErrCodePageNotFound, "page not found").
				WithDetail("id=" + string(id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load page")
	}
	return p, nil
}

// GetByURL loads a page by its crawl URL within a project.
func (r *PageRepository) GetByURL(ctx context.Context, projectID common.ProjectID, url string) (*page.Page, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE project_id = $1 AND url = $2`, projectID, url)
	p, err := scanPage(row)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.New(appErrors.ErrCodePageNotFound, "page not found").
				WithDetail("url=" + url)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load page")
	}
	return p, nil
}

// Update persists every mutable field of the page.
func (r *PageRepository) Update(ctx context.Context, p *page.Page) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pages SET
			title = $2, meta_description = $3, content = $4, word_count = $5,
			embedding = $6, snapshot_path = $7, crawled_at = $8,
			updated_at = $9, version = $10
		WHERE id = $1`,
		p.ID,
		p.Title, p.MetaDescription, p.Content, p.WordCount,
		p.Embedding, p.SnapshotPath, p.CrawledAt,
		p.UpdatedAt, p.Version,
	)
	if err != nil {
		r.logger.Error("PageRepository.Update", "page_id", p.ID, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update page")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodePageNotFound, "page not found").
			WithDetail("id=" + string(p.ID))
	}
	return nil
}

// Delete removes a page.  Matches referencing it cascade at the schema level.
func (r *PageRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete page")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodePageNotFound, "page not found").
			WithDetail("id=" + string(id))
	}
	return nil
}

// List returns a paginated page of the project's pages plus the total count.
func (r *PageRepository) List(ctx context.Context, projectID common.ProjectID, pagination common.Pagination) ([]*page.Page, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pages WHERE project_id = $1`, projectID).Scan(&total)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count pages")
	}

	pg := pagination.Page
	if pg < 1 {
		pg = 1
	}
	size := pagination.PageSize
	if size < 1 {
		size = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+pageColumns+` FROM pages WHERE project_id = $1
		ORDER BY url LIMIT $2 OFFSET $3`,
		projectID, size, (pg-1)*size)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list pages")
	}
	defer rows.Close()

	out := make([]*page.Page, 0, size)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan page")
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ListCorpus returns every page of a project that has an embedding, with the
// content loaded for snippet extraction.
func (r *PageRepository) ListCorpus(ctx context.Context, projectID common.ProjectID) ([]*page.Page, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE project_id = $1 AND embedding IS NOT NULL
		ORDER BY url`, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load page corpus")
	}
	defer rows.Close()

	var out []*page.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan page")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
