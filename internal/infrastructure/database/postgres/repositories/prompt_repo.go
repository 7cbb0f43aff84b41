package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/searchlens/gapintel/internal/domain/prompt"
	appErrors "github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// PromptRepository
// ─────────────────────────────────────────────────────────────────────────────

// PromptRepository is the PostgreSQL implementation of prompt.Repository.
// Every method accepts a context.Context for cancellation propagation and
// uses parameterised queries exclusively.
type PromptRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewPromptRepository constructs a ready-to-use PromptRepository.
func NewPromptRepository(pool *pgxpool.Pool, logger Logger) *PromptRepository {
	return &PromptRepository{pool: pool, logger: logger}
}

const promptColumns = `
	id, project_id, raw_text, normalized_text,
	topic, category, region, language,
	popularity_score, sentiment_score, visibility_score,
	intent_label, transaction_score, embedding,
	match_status, best_match_score,
	created_at, updated_at, version`

func scanPrompt(s rowScanner) (*prompt.Prompt, error) {
	p := &prompt.Prompt{}
	var status string
	err := s.Scan(
		&p.ID, &p.ProjectID, &p.RawText, &p.NormalizedText,
		&p.Topic, &p.Category, &p.Region, &p.Language,
		&p.PopularityScore, &p.SentimentScore, &p.VisibilityScore,
		&p.IntentLabel, &p.TransactionScore, &p.Embedding,
		&status, &p.BestMatchScore,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	p.MatchStatus = prompt.MatchStatus(status)
	return p, nil
}

// Create persists a new prompt record.
func (r *PromptRepository) Create(ctx context.Context, p *prompt.Prompt) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prompts (`+promptColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		p.ID, p.ProjectID, p.RawText, p.NormalizedText,
		p.Topic, p.Category, p.Region, p.Language,
		p.PopularityScore, p.SentimentScore, p.VisibilityScore,
		p.IntentLabel, p.TransactionScore, p.Embedding,
		string(p.MatchStatus), p.BestMatchScore,
		p.CreatedAt, p.UpdatedAt, p.Version,
	)
	if err != nil {
		r.logger.Error("PromptRepository.Create", "prompt_id", p.ID, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert prompt")
	}
	return nil
}

// CreateBatch inserts a set of prompts in one transaction using pgx's batch
// API.  Either every row lands or none does.
func (r *PromptRepository) CreateBatch(ctx context.Context, prompts []*prompt.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, p := range prompts {
		batch.Queue(`
			INSERT INTO prompts (`+promptColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			p.ID, p.ProjectID, p.RawText, p.NormalizedText,
			p.Topic, p.Category, p.Region, p.Language,
			p.PopularityScore, p.SentimentScore, p.VisibilityScore,
			p.IntentLabel, p.TransactionScore, p.Embedding,
			string(p.MatchStatus), p.BestMatchScore,
			p.CreatedAt, p.UpdatedAt, p.Version,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range prompts {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			r.logger.Error("PromptRepository.CreateBatch", "count", len(prompts), "error", err)
			return appErrors.Wrap(err, appErrors.ErrCodePromptImportFailed, "failed to batch insert prompts")
		}
	}
	if err := br.Close(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodePromptImportFailed, "failed to close prompt batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to commit prompt batch")
	}
	return nil
}

// GetByID loads a single prompt.
func (r *PromptRepository) GetByID(ctx context.Context, id common.ID) (*prompt.Prompt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id)
	p, err := scanPrompt(row)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.New(appErrors.ErrCodePromptNotFound, "prompt not found").
				WithDetail("id=" + string(id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load prompt")
	}
	return p, nil
}

// GetByIDs loads multiple prompts.  Missing ids are silently absent from the
// result; callers that need strict presence reconcile counts themselves.
func (r *PromptRepository) GetByIDs(ctx context.Context, ids []common.ID) ([]*prompt.Prompt, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load prompts")
	}
	defer rows.Close()

	out := make([]*prompt.Prompt, 0, len(ids))
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan prompt")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update persists every mutable field of the prompt.
func (r *PromptRepository) Update(ctx context.Context, p *prompt.Prompt) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE prompts SET
			topic = $2, category = $3, region = $4, language = $5,
			popularity_score = $6, sentiment_score = $7, visibility_score = $8,
			intent_label = $9, transaction_score = $10, embedding = $11,
			match_status = $12, best_match_score = $13,
			updated_at = $14, version = $15
		WHERE id = $1`,
		p.ID,
		p.Topic, p.Category, p.Region, p.Language,
		p.PopularityScore, p.SentimentScore, p.VisibilityScore,
		p.IntentLabel, p.TransactionScore, p.Embedding,
		string(p.MatchStatus), p.BestMatchScore,
		p.UpdatedAt, p.Version,
	)
	if err != nil {
		r.logger.Error("PromptRepository.Update", "prompt_id", p.ID, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update prompt")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodePromptNotFound, "prompt not found").
			WithDetail("id=" + string(p.ID))
	}
	return nil
}

// Delete removes a prompt.  Matches and opportunities cascade at the schema
// level.
func (r *PromptRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete prompt")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodePromptNotFound, "prompt not found").
			WithDetail("id=" + string(id))
	}
	return nil
}

// List returns a filtered, paginated page of prompts plus the total count.
func (r *PromptRepository) List(ctx context.Context, filter prompt.ListFilter) ([]*prompt.Prompt, int64, error) {
	where := []string{"project_id = $1"}
	args := []interface{}{filter.ProjectID}

	if filter.MatchStatus != nil {
		args = append(args, string(*filter.MatchStatus))
		where = append(where, fmt.Sprintf("match_status = $%d", len(args)))
	}
	if filter.IntentLabel != "" {
		args = append(args, filter.IntentLabel)
		where = append(where, fmt.Sprintf("intent_label = $%d", len(args)))
	}
	if filter.Language != "" {
		args = append(args, filter.Language)
		where = append(where, fmt.Sprintf("language = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prompts WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count prompts")
	}

	page := filter.Pagination.Page
	if page < 1 {
		page = 1
	}
	size := filter.Pagination.PageSize
	if size < 1 {
		size = 50
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT `+promptColumns+` FROM prompts WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list prompts")
	}
	defer rows.Close()

	out := make([]*prompt.Prompt, 0, size)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan prompt")
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ListIDsByProject returns every prompt id of a project, used by whole-project
// batch operations.
func (r *PromptRepository) ListIDsByProject(ctx context.Context, projectID common.ProjectID) ([]common.ID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM prompts WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list prompt ids")
	}
	defer rows.Close()

	var ids []common.ID
	for rows.Next() {
		var id common.ID
		if err := rows.Scan(&id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan prompt id")
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateMatchOutcome persists only match_status and best_match_score, used on
// the re-match hot path to avoid full-row writes.
func (r *PromptRepository) UpdateMatchOutcome(ctx context.Context, id common.ID, status prompt.MatchStatus, best *float64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE prompts SET match_status = $2, best_match_score = $3,
			updated_at = now(), version = version + 1
		WHERE id = $1`,
		id, string(status), best,
	)
	if err != nil {
		r.logger.Error("PromptRepository.UpdateMatchOutcome", "prompt_id", id, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update match outcome")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodePromptNotFound, "prompt not found").
			WithDetail("id=" + string(id))
	}
	return nil
}
