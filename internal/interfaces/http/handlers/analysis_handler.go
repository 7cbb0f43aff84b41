package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/searchlens/gapintel/internal/infrastructure/messaging/kafka"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
)

// jobSource identifies this producer in event envelopes.
const jobSource = "apiserver"

// JobQueue publishes pipeline jobs. *kafka.Producer satisfies it.
type JobQueue interface {
	Publish(ctx context.Context, msg *kafka.ProducerMessage) error
}

// AnalysisHandler triggers pipeline batches. Triggers only enqueue; the
// actual work runs on the workers consuming the job topics.
type AnalysisHandler struct {
	queue       JobQueue
	topicPrefix string
	logger      logging.Logger
}

func NewAnalysisHandler(queue JobQueue, topicPrefix string, logger logging.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalysisHandler{queue: queue, topicPrefix: topicPrefix, logger: logger}
}

// triggerRequest is the body of the analysis trigger endpoints. Empty
// PromptIDs means the whole project.
type triggerRequest struct {
	ProjectID string   `json:"project_id"`
	PromptIDs []string `json:"prompt_ids,omitempty"`
	PageIDs   []string `json:"page_ids,omitempty"`
}

// triggerResponse acknowledges an enqueued batch.
type triggerResponse struct {
	Topic     string `json:"topic"`
	ProjectID string `json:"project_id"`
	Enqueued  int    `json:"enqueued"`
}

// Classify handles POST /analysis/classify.
func (h *AnalysisHandler) Classify(c *gin.Context) {
	h.trigger(c, kafka.TopicPromptClassify)
}

// EmbedPrompts handles POST /analysis/embed/prompts.
func (h *AnalysisHandler) EmbedPrompts(c *gin.Context) {
	h.trigger(c, kafka.TopicPromptEmbed)
}

// EmbedPages handles POST /analysis/embed/pages.
func (h *AnalysisHandler) EmbedPages(c *gin.Context) {
	h.trigger(c, kafka.TopicPageEmbed)
}

// Rematch handles POST /analysis/rematch.
func (h *AnalysisHandler) Rematch(c *gin.Context) {
	h.trigger(c, kafka.TopicPromptMatch)
}

func (h *AnalysisHandler) trigger(c *gin.Context, topic string) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.ProjectID == "" {
		respondBadRequest(c, "project_id is required")
		return
	}
	if topic == kafka.TopicPageEmbed && len(req.PromptIDs) > 0 {
		respondBadRequest(c, "prompt_ids is not valid for a page job")
		return
	}

	payload := kafka.JobPayload{
		ProjectID: req.ProjectID,
		PromptIDs: req.PromptIDs,
		PageIDs:   req.PageIDs,
	}
	env, err := kafka.NewEventEnvelope(topic, jobSource, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	msg, err := env.ToMessage(kafka.FullTopic(h.topicPrefix, topic), req.ProjectID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.queue.Publish(c.Request.Context(), msg); err != nil {
		h.logger.Error("failed to enqueue pipeline job",
			logging.String("topic", topic),
			logging.String("project_id", req.ProjectID),
			logging.Err(err))
		respondError(c, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to enqueue job"))
		return
	}

	enqueued := len(req.PromptIDs) + len(req.PageIDs)
	h.logger.Info("pipeline job enqueued",
		logging.String("topic", topic),
		logging.String("project_id", req.ProjectID),
		logging.Int("ids", enqueued))

	c.JSON(http.StatusAccepted, triggerResponse{
		Topic:     topic,
		ProjectID: req.ProjectID,
		Enqueued:  enqueued,
	})
}
