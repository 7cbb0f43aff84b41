package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/searchlens/gapintel/internal/domain/opportunity"
	appErrors "github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// OpportunityRepository
// ─────────────────────────────────────────────────────────────────────────────

// OpportunityRepository is the PostgreSQL implementation of
// opportunity.Repository.  The content suggestion payload is stored as JSONB
// since its shape evolves with the enrichment backend.
type OpportunityRepository struct {
	pool   *pgxpool.Pool
	logger Logger
}

// NewOpportunityRepository constructs a ready-to-use OpportunityRepository.
func NewOpportunityRepository(pool *pgxpool.Pool, logger Logger) *OpportunityRepository {
	return &OpportunityRepository{pool: pool, logger: logger}
}

const opportunityColumns = `
	id, prompt_id, project_id,
	priority_score, difficulty_score,
	needs_new_page, technical_complexity, content_complexity, research_required,
	recommended_action, reason, status,
	related_page_ids, content_suggestion,
	rank, percentile,
	created_at, updated_at`

func scanOpportunity(s rowScanner) (*opportunity.Opportunity, error) {
	o := &opportunity.Opportunity{}
	var (
		action, status string
		suggestion     []byte
	)
	err := s.Scan(
		&o.ID, &o.PromptID, &o.ProjectID,
		&o.PriorityScore, &o.DifficultyScore,
		&o.DifficultyFactors.NeedsNewPage, &o.DifficultyFactors.TechnicalComplexity,
		&o.DifficultyFactors.ContentComplexity, &o.DifficultyFactors.ResearchRequired,
		&action, &o.Reason, &status,
		&o.RelatedPageIDs, &suggestion,
		&o.Rank, &o.Percentile,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.RecommendedAction = opportunity.Action(action)
	o.Status = opportunity.Status(status)
	if len(suggestion) > 0 {
		cs := &opportunity.ContentSuggestion{}
		if err := json.Unmarshal(suggestion, cs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to decode content suggestion")
		}
		o.ContentSuggestion = cs
	}
	return o, nil
}

func suggestionJSON(o *opportunity.Opportunity) ([]byte, error) {
	if o.ContentSuggestion == nil {
		return nil, nil
	}
	b, err := json.Marshal(o.ContentSuggestion)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to encode content suggestion")
	}
	return b, nil
}

func (r *OpportunityRepository) insert(ctx context.Context, tx pgx.Tx, o *opportunity.Opportunity) error {
	suggestion, err := suggestionJSON(o)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO opportunities (`+opportunityColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		o.ID, o.PromptID, o.ProjectID,
		o.PriorityScore, o.DifficultyScore,
		o.DifficultyFactors.NeedsNewPage, o.DifficultyFactors.TechnicalComplexity,
		o.DifficultyFactors.ContentComplexity, o.DifficultyFactors.ResearchRequired,
		string(o.RecommendedAction), o.Reason, string(o.Status),
		o.RelatedPageIDs, suggestion,
		o.Rank, o.Percentile,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to insert opportunity")
	}
	return nil
}

// Create persists a new opportunity.
func (r *OpportunityRepository) Create(ctx context.Context, o *opportunity.Opportunity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := r.insert(ctx, tx, o); err != nil {
		r.logger.Error("OpportunityRepository.Create", "opportunity_id", o.ID, "error", err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to commit opportunity insert")
	}
	return nil
}

// GetByID loads a single opportunity.
func (r *OpportunityRepository) GetByID(ctx context.Context, id common.ID) (*opportunity.Opportunity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	o, err := scanOpportunity(row)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.New(appErrors.ErrCodeOpportunityNotFound, "opportunity not found").
				WithDetail("id=" + string(id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load opportunity")
	}
	return o, nil
}

// GetByPromptID loads the opportunity attached to a prompt, if any.
func (r *OpportunityRepository) GetByPromptID(ctx context.Context, promptID common.ID) (*opportunity.Opportunity, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE prompt_id = $1`, promptID)
	o, err := scanOpportunity(row)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.New(appErrors.ErrCodeOpportunityNotFound, "opportunity not found").
				WithDetail("prompt_id=" + string(promptID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load opportunity")
	}
	return o, nil
}

// Update persists every mutable field of the opportunity.
func (r *OpportunityRepository) Update(ctx context.Context, o *opportunity.Opportunity) error {
	suggestion, err := suggestionJSON(o)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE opportunities SET
			priority_score = $2, difficulty_score = $3,
			needs_new_page = $4, technical_complexity = $5,
			content_complexity = $6, research_required = $7,
			recommended_action = $8, reason = $9, status = $10,
			related_page_ids = $11, content_suggestion = $12,
			rank = $13, percentile = $14, updated_at = $15
		WHERE id = $1`,
		o.ID,
		o.PriorityScore, o.DifficultyScore,
		o.DifficultyFactors.NeedsNewPage, o.DifficultyFactors.TechnicalComplexity,
		o.DifficultyFactors.ContentComplexity, o.DifficultyFactors.ResearchRequired,
		string(o.RecommendedAction), o.Reason, string(o.Status),
		o.RelatedPageIDs, suggestion,
		o.Rank, o.Percentile, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("OpportunityRepository.Update", "opportunity_id", o.ID, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to update opportunity")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodeOpportunityNotFound, "opportunity not found").
			WithDetail("id=" + string(o.ID))
	}
	return nil
}

// DeleteByPromptID removes the opportunity attached to a prompt.  Deleting an
// absent opportunity is a no-op since re-match runs call this unconditionally
// for answered prompts.
func (r *OpportunityRepository) DeleteByPromptID(ctx context.Context, promptID common.ID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM opportunities WHERE prompt_id = $1`, promptID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete opportunity")
	}
	return nil
}

// ReplaceForPrompt deletes any existing opportunity for the prompt and
// inserts the new one in a single transaction.
func (r *OpportunityRepository) ReplaceForPrompt(ctx context.Context, promptID common.ID, o *opportunity.Opportunity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM opportunities WHERE prompt_id = $1`, promptID); err != nil {
		r.logger.Error("OpportunityRepository.ReplaceForPrompt: delete", "prompt_id", promptID, "error", err)
		return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to clear existing opportunity")
	}
	if err := r.insert(ctx, tx, o); err != nil {
		r.logger.Error("OpportunityRepository.ReplaceForPrompt: insert", "prompt_id", promptID, "error", err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to commit opportunity replacement")
	}
	return nil
}

// List returns a filtered, paginated set of opportunities sorted by priority
// score descending, plus the total count.
func (r *OpportunityRepository) List(ctx context.Context, filter opportunity.ListFilter) ([]*opportunity.Opportunity, int64, error) {
	where := []string{"project_id = $1"}
	args := []interface{}{filter.ProjectID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Action != nil {
		args = append(args, string(*filter.Action))
		where = append(where, fmt.Sprintf("recommended_action = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM opportunities WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count opportunities")
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
	query := fmt.Sprintf(`SELECT `+opportunityColumns+` FROM opportunities WHERE %s
		ORDER BY priority_score DESC LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list opportunities")
	}
	defer rows.Close()

	out := make([]*opportunity.Opportunity, 0, size)
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan opportunity")
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// ListByProject returns every opportunity of a project ordered by priority
// score descending, for batch ranking.
func (r *OpportunityRepository) ListByProject(ctx context.Context, projectID common.ProjectID) ([]*opportunity.Opportunity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+opportunityColumns+` FROM opportunities
		WHERE project_id = $1 ORDER BY priority_score DESC`, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list opportunities")
	}
	defer rows.Close()

	var out []*opportunity.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan opportunity")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateRanks persists rank and percentile for a batch of opportunities in
// one transaction.
func (r *OpportunityRepository) UpdateRanks(ctx context.Context, opportunities []*opportunity.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, o := range opportunities {
		batch.Queue(`UPDATE opportunities SET rank = $2, percentile = $3, updated_at = now() WHERE id = $1`,
			o.ID, o.Rank, o.Percentile)
	}
	br := tx.SendBatch(ctx, batch)
	for range opportunities {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			r.logger.Error("OpportunityRepository.UpdateRanks", "count", len(opportunities), "error", err)
			return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to update opportunity ranks")
		}
	}
	if err := br.Close(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to close rank batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeOpportunityWriteFailed, "failed to commit rank updates")
	}
	return nil
}
