package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/searchlens/gapintel/internal/domain/opportunity"
	"github.com/searchlens/gapintel/internal/infrastructure/monitoring/logging"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// OpportunityHandler serves the opportunity backlog and its workflow
// transitions.
type OpportunityHandler struct {
	opportunities opportunity.Repository
	logger        logging.Logger
}

func NewOpportunityHandler(opportunities opportunity.Repository, logger logging.Logger) *OpportunityHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &OpportunityHandler{opportunities: opportunities, logger: logger}
}

// List handles GET /opportunities. Results come back sorted by priority
// score descending. Filters: project_id (required), status, action.
func (h *OpportunityHandler) List(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		respondBadRequest(c, "project_id is required")
		return
	}

	filter := opportunity.ListFilter{
		ProjectID:  common.ProjectID(projectID),
		Pagination: parsePagination(c),
	}

	if raw := c.Query("status"); raw != "" {
		status, err := opportunity.ParseStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("action"); raw != "" {
		action, err := opportunity.ParseAction(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Action = &action
	}

	items, total, err := h.opportunities.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list opportunities", logging.Err(err))
		respondError(c, err)
		return
	}

	filter.Pagination.Total = total
	c.JSON(http.StatusOK, ListResponse{Items: items, Pagination: filter.Pagination})
}

// Get handles GET /opportunities/:id.
func (h *OpportunityHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "opportunity id is required")
		return
	}

	o, err := h.opportunities.GetByID(c.Request.Context(), common.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// updateStatusRequest is the body of PATCH /opportunities/:id/status.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /opportunities/:id/status. Transitions go
// through the entity's workflow rules; invalid moves are rejected with a
// validation error.
func (h *OpportunityHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "opportunity id is required")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	next, err := opportunity.ParseStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	o, err := h.opportunities.GetByID(ctx, common.ID(id))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := o.UpdateStatus(next); err != nil {
		respondError(c, err)
		return
	}

	if err := h.opportunities.Update(ctx, o); err != nil {
		h.logger.Error("failed to persist opportunity status",
			logging.String("opportunity_id", id),
			logging.Err(err))
		respondError(c, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update opportunity"))
		return
	}

	c.JSON(http.StatusOK, o)
}
