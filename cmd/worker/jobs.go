package main

import (
	"context"
	"time"

	"github.com/searchlens/gapintel/internal/application/analysis"
	"github.com/searchlens/gapintel/internal/domain/page"
	"github.com/searchlens/gapintel/internal/domain/prompt"
	"github.com/searchlens/gapintel/internal/infrastructure/database/redis"
	"github.com/searchlens/gapintel/internal/infrastructure/messaging/kafka"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/prometheus"
	"github.com/searchlens/gapintel/internal/infrastructure/storage/minio"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// pageListBatchSize bounds a single page-listing query when a job covers the
// whole project.
const pageListBatchSize = 200

// jobRunner dispatches consumed pipeline jobs to the analysis service.
type jobRunner struct {
	service   analysis.Service
	prompts   prompt.Repository
	pages     page.Repository
	snapshots minio.SnapshotStore
	locks     *redis.LockFactory
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
}

// decodeJob unwraps the event envelope. A malformed message is returned as
// nil job so the handler can drop it instead of retrying forever.
func (r *jobRunner) decodeJob(msg *kafka.Message) *kafka.JobPayload {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		r.logger.Error("dropping malformed job message",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return nil
	}

	var job kafka.JobPayload
	if err := env.DecodePayload(&job); err != nil {
		r.logger.Error("dropping job with undecodable payload",
			logging.String("topic", msg.Topic),
			logging.String("event_id", env.EventID),
			logging.Err(err))
		return nil
	}
	if job.ProjectID == "" {
		r.logger.Error("dropping job without project id",
			logging.String("topic", msg.Topic),
			logging.String("event_id", env.EventID))
		return nil
	}
	return &job
}

func (r *jobRunner) handleClassify(ctx context.Context, msg *kafka.Message) error {
	job := r.decodeJob(msg)
	if job == nil {
		return nil
	}

	ids, err := r.promptScope(ctx, job)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		r.logger.Info("classify job matched no prompts", logging.String("project_id", job.ProjectID))
		return nil
	}

	start := time.Now()
	result, err := r.service.ClassifyPrompts(ctx, ids)
	prometheus.RecordPipelineJob(r.metrics, "classify", err == nil, time.Since(start))
	if err != nil {
		return err
	}

	r.logger.Info("classify job done",
		logging.String("project_id", job.ProjectID),
		logging.Int("processed", result.Processed),
		logging.Int("failed", result.Failed))
	return nil
}

func (r *jobRunner) handleEmbedPrompts(ctx context.Context, msg *kafka.Message) error {
	job := r.decodeJob(msg)
	if job == nil {
		return nil
	}

	ids, err := r.promptScope(ctx, job)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		r.logger.Info("embed job matched no prompts", logging.String("project_id", job.ProjectID))
		return nil
	}

	start := time.Now()
	result, err := r.service.EmbedPrompts(ctx, ids)
	prometheus.RecordPipelineJob(r.metrics, "embed_prompts", err == nil, time.Since(start))
	if err != nil {
		return err
	}

	r.logger.Info("prompt embed job done",
		logging.String("project_id", job.ProjectID),
		logging.Int("processed", result.Processed),
		logging.Int("failed", result.Failed))
	return nil
}

func (r *jobRunner) handleEmbedPages(ctx context.Context, msg *kafka.Message) error {
	job := r.decodeJob(msg)
	if job == nil {
		return nil
	}

	ids, err := r.pageScope(ctx, job)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		r.logger.Info("embed job matched no pages", logging.String("project_id", job.ProjectID))
		return nil
	}

	start := time.Now()
	result, err := r.service.EmbedPages(ctx, ids)
	prometheus.RecordPipelineJob(r.metrics, "embed_pages", err == nil, time.Since(start))
	if err != nil {
		return err
	}

	if r.snapshots != nil {
		r.archiveSnapshots(ctx, ids)
	}

	r.logger.Info("page embed job done",
		logging.String("project_id", job.ProjectID),
		logging.Int("processed", result.Processed),
		logging.Int("failed", result.Failed))
	return nil
}

func (r *jobRunner) handleRematch(ctx context.Context, msg *kafka.Message) error {
	job := r.decodeJob(msg)
	if job == nil {
		return nil
	}
	projectID := common.ProjectID(job.ProjectID)

	// One rematch per project at a time; concurrent runs would race on the
	// match sets and opportunity reconciliation.
	lock := r.locks.ForProject(job.ProjectID)
	acquired, err := lock.TryLock(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		r.logger.Warn("rematch already in progress, skipping",
			logging.String("project_id", job.ProjectID))
		return nil
	}
	defer func() {
		if err := lock.Unlock(context.Background()); err != nil {
			r.logger.Warn("failed to release rematch lock",
				logging.String("project_id", job.ProjectID),
				logging.Err(err))
		}
	}()

	start := time.Now()
	result, err := r.service.RematchPrompts(ctx, projectID, toIDs(job.PromptIDs))
	prometheus.RecordPipelineJob(r.metrics, "match", err == nil, time.Since(start))
	if err != nil {
		return err
	}

	ranked, err := r.service.RankOpportunities(ctx, projectID)
	if err != nil {
		return err
	}

	r.logger.Info("rematch job done",
		logging.String("project_id", job.ProjectID),
		logging.Int("processed", result.Processed),
		logging.Int("failed", result.Failed),
		logging.Int("ranked", ranked))
	return nil
}

// promptScope resolves a job's prompt ids, expanding an empty list to the
// whole project.
func (r *jobRunner) promptScope(ctx context.Context, job *kafka.JobPayload) ([]common.ID, error) {
	if len(job.PromptIDs) > 0 {
		return toIDs(job.PromptIDs), nil
	}
	return r.prompts.ListIDsByProject(ctx, common.ProjectID(job.ProjectID))
}

// pageScope resolves a job's page ids, paging through the project corpus when
// the list is empty.
func (r *jobRunner) pageScope(ctx context.Context, job *kafka.JobPayload) ([]common.ID, error) {
	if len(job.PageIDs) > 0 {
		return toIDs(job.PageIDs), nil
	}

	var ids []common.ID
	for pageNum := 1; ; pageNum++ {
		batch, _, err := r.pages.List(ctx, common.ProjectID(job.ProjectID), common.Pagination{
			Page:     pageNum,
			PageSize: pageListBatchSize,
		})
		if err != nil {
			return nil, err
		}
		for _, p := range batch {
			ids = append(ids, p.ID)
		}
		if len(batch) < pageListBatchSize {
			return ids, nil
		}
	}
}

// archiveSnapshots stores the content of freshly embedded pages in the object
// store, recording the key on the page. Best effort: archival failures are
// logged and never fail the job.
func (r *jobRunner) archiveSnapshots(ctx context.Context, ids []common.ID) {
	for _, id := range ids {
		pg, err := r.pages.GetByID(ctx, id)
		if err != nil {
			r.logger.Warn("snapshot archival: page lookup failed",
				logging.String("page_id", string(id)), logging.Err(err))
			continue
		}
		if pg.Content == "" || pg.SnapshotPath != "" {
			continue
		}

		key, err := r.snapshots.Put(ctx, id, []byte(pg.Content))
		if err != nil {
			r.logger.Warn("snapshot archival: upload failed",
				logging.String("page_id", string(id)), logging.Err(err))
			continue
		}
		pg.SetSnapshotPath(key)
		if err := r.pages.Update(ctx, pg); err != nil {
			r.logger.Warn("snapshot archival: page update failed",
				logging.String("page_id", string(id)), logging.Err(err))
		}
	}
}

func toIDs(ss []string) []common.ID {
	if len(ss) == 0 {
		return nil
	}
	ids := make([]common.ID, len(ss))
	for i, s := range ss {
		ids[i] = common.ID(s)
	}
	return ids
}
