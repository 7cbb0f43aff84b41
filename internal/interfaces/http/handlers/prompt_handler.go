package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/searchlens/gapintel/internal/domain/prompt"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// PromptHandler serves read access to the prompt corpus.
type PromptHandler struct {
	prompts prompt.Repository
	logger  logging.Logger
}

func NewPromptHandler(prompts prompt.Repository, logger logging.Logger) *PromptHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PromptHandler{prompts: prompts, logger: logger}
}

// List handles GET /prompts. Filters: project_id (required), match_status,
// intent, language.
func (h *PromptHandler) List(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		respondBadRequest(c, "project_id is required")
		return
	}

	filter := prompt.ListFilter{
		ProjectID:   common.ProjectID(projectID),
		IntentLabel: c.Query("intent"),
		Language:    c.Query("language"),
		Pagination:  parsePagination(c),
	}

	if raw := c.Query("match_status"); raw != "" {
		status, err := prompt.ParseMatchStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.MatchStatus = &status
	}

	prompts, total, err := h.prompts.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list prompts", logging.Err(err))
		respondError(c, err)
		return
	}

	filter.Pagination.Total = total
	c.JSON(http.StatusOK, ListResponse{Items: prompts, Pagination: filter.Pagination})
}

// Get handles GET /prompts/:id.
func (h *PromptHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "prompt id is required")
		return
	}

	p, err := h.prompts.GetByID(c.Request.Context(), common.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
