// Package handlers implements the HTTP API handlers. The surface is thin:
// handlers validate input, delegate to repositories or the analysis
// pipeline, and translate AppError codes to HTTP statuses.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

// parsePagination extracts page and page_size from query parameters.
func parsePagination(c *gin.Context) common.Pagination {
	page := 1
	pageSize := 20

	if v := c.Query("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := c.Query("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 100 {
			pageSize = ps
		}
	}
	return common.Pagination{Page: page, PageSize: pageSize}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListResponse is the standard paginated list envelope.
type ListResponse struct {
	Items      interface{}       `json:"items"`
	Pagination common.Pagination `json:"pagination"`
}

// respondError maps an application error to its HTTP status via the
// pkg/errors code table. Server-side errors are masked.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code.String(),
		Message: msg,
	})
}

// respondBadRequest rejects malformed input with a validation error body.
func respondBadRequest(c *gin.Context, detail string) {
	respondError(c, errors.New(errors.ErrCodeValidation, detail))
}
