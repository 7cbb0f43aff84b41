package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/gapintel/internal/domain/prompt"
	"github.com/searchlens/gapintel/pkg/errors"
	"github.com/searchlens/gapintel/pkg/types/common"
)

type mockPromptRepo struct {
	prompt.Repository

	listFn    func(ctx context.Context, filter prompt.ListFilter) ([]*prompt.Prompt, int64, error)
	getByIDFn func(ctx context.Context, id common.ID) (*prompt.Prompt, error)
}

func (m *mockPromptRepo) List(ctx context.Context, filter prompt.ListFilter) ([]*prompt.Prompt, int64, error) {
	return m.listFn(ctx, filter)
}

func (m *mockPromptRepo) GetByID(ctx context.Context, id common.ID) (*prompt.Prompt, error) {
	return m.getByIDFn(ctx, id)
}

func newPromptTestRouter(t *testing.T, repo prompt.Repository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewPromptHandler(repo, nil)
	r := gin.New()
	r.GET("/prompts", h.List)
	r.GET("/prompts/:id", h.Get)
	return r
}

func newTestPrompt(t *testing.T, text string) *prompt.Prompt {
	t.Helper()
	p, err := prompt.New("proj-1", text)
	require.NoError(t, err)
	return p
}

func TestPromptList(t *testing.T) {
	var gotFilter prompt.ListFilter
	repo := &mockPromptRepo{
		listFn: func(_ context.Context, filter prompt.ListFilter) ([]*prompt.Prompt, int64, error) {
			gotFilter = filter
			return []*prompt.Prompt{newTestPrompt(t, "best running shoes")}, 1, nil
		},
	}
	r := newPromptTestRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prompts?project_id=proj-1&match_status=gap&intent=commercial&page=2&page_size=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, common.ProjectID("proj-1"), gotFilter.ProjectID)
	require.NotNil(t, gotFilter.MatchStatus)
	assert.Equal(t, prompt.StatusGap, *gotFilter.MatchStatus)
	assert.Equal(t, "commercial", gotFilter.IntentLabel)
	assert.Equal(t, 2, gotFilter.Pagination.Page)
	assert.Equal(t, 10, gotFilter.Pagination.PageSize)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestPromptList_MissingProjectID(t *testing.T) {
	r := newPromptTestRouter(t, &mockPromptRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prompts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPromptList_UnknownMatchStatus(t *testing.T) {
	r := newPromptTestRouter(t, &mockPromptRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prompts?project_id=proj-1&match_status=bogus", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPromptGet(t *testing.T) {
	p := newTestPrompt(t, "how to train for a marathon")
	repo := &mockPromptRepo{
		getByIDFn: func(_ context.Context, id common.ID) (*prompt.Prompt, error) {
			assert.Equal(t, p.ID, id)
			return p, nil
		},
	}
	r := newPromptTestRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prompts/"+string(p.ID), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "how to train for a marathon")
}

func TestPromptGet_NotFound(t *testing.T) {
	repo := &mockPromptRepo{
		getByIDFn: func(_ context.Context, _ common.ID) (*prompt.Prompt, error) {
			return nil, errors.New(errors.ErrCodePromptNotFound, "prompt not found")
		},
	}
	r := newPromptTestRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prompts/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodePromptNotFound.String(), resp.Code)
}

func TestPromptList_RepositoryError(t *testing.T) {
	repo := &mockPromptRepo{
		listFn: func(_ context.Context, _ prompt.ListFilter) ([]*prompt.Prompt, int64, error) {
			return nil, 0, errors.New(errors.ErrCodeDatabaseError, "connection refused")
		},
	}
	r := newPromptTestRouter(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prompts?project_id=proj-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal detail must not leak.
	assert.NotContains(t, w.Body.String(), "connection refused")
}
