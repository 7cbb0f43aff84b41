package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/searchlens/gapintel/internal/domain/match"
	appErrors "github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// MatchRepository
// ─────────────────────────────────────────────────────────────────────────────

// MatchRepository is the PostgreSQL implementation of match.Repository.
// Match sets are replaced wholesale per prompt; there is no row-level update.
type MatchRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewMatchRepository constructs a ready-to-use MatchRepository.
func NewMatchRepository(pool *pgxpool.Pool, logger Logger) *MatchRepository {
	return &MatchRepository{pool: pool, logger: logger}
}

const matchColumns = `
	id, prompt_id, page_id, similarity_score, match_type,
	matched_snippet, rank, created_at`

func scanMatch(s rowScanner) (*match.Match, error) {
	m := &match.Match{}
	var matchType string
	err := s.Scan(
		&m.ID, &m.PromptID, &m.PageID, &m.SimilarityScore, &matchType,
		&m.MatchedSnippet, &m.Rank, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.MatchType = match.Type(matchType)
	return m, nil
}

// ReplaceForPrompt deletes the prompt's existing matches and inserts the new
// set in one transaction.  Readers never observe a partial state.
func (r *MatchRepository) ReplaceForPrompt(ctx context.Context, promptID common.ID, matches []*match.Match) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM matches WHERE prompt_id = $1`, promptID); err != nil {
		r.logger.Error("MatchRepository.ReplaceForPrompt: delete", "prompt_id", promptID, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeMatchReplaceFailed, "failed to clear existing matches")
	}

	if len(matches) > 0 {
		batch := &pgx.Batch{}
		for _, m := range matches {
			batch.Queue(`
				INSERT INTO matches (`+matchColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				m.ID, m.PromptID, m.PageID, m.SimilarityScore, string(m.MatchType),
				m.MatchedSnippet, m.Rank, m.CreatedAt,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range matches {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				r.logger.Error("MatchRepository.ReplaceForPrompt: insert", "prompt_id", promptID, "error", err)
				return appErrors.Wrap(err, appErrors.ErrCodeMatchReplaceFailed, "failed to insert match set")
			}
		}
		if err := br.Close(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeMatchReplaceFailed, "failed to close match batch")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeMatchReplaceFailed, "failed to commit match replacement")
	}
	return nil
}

// ListByPrompt returns the prompt's match set ordered by rank.
func (r *MatchRepository) ListByPrompt(ctx context.Context, promptID common.ID) ([]*match.Match, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE prompt_id = $1 ORDER BY rank`, promptID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list matches")
	}
	defer rows.Close()

	var out []*match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan match")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByPage returns every match pointing at the page, across prompts,
// ordered by similarity descending.
func (r *MatchRepository) ListByPage(ctx context.Context, pageID common.ID) ([]*match.Match, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE page_id = $1 ORDER BY similarity_score DESC`, pageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list matches by page")
	}
	defer rows.Close()

	var out []*match.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan match")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteByPrompt removes the prompt's match set.
func (r *MatchRepository) DeleteByPrompt(ctx context.Context, promptID common.ID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE prompt_id = $1`, promptID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete matches")
	}
	return nil
}
