package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSDKTestServer(t *testing.T, wantMethod, wantPath string, status int, body interface{}) (*httptest.Server, *http.Request) {
	t.Helper()
	captured := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = *r
		assert.Equal(t, wantMethod, r.Method)
		assert.Equal(t, wantPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			json.NewEncoder(w).Encode(body)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestPromptsList(t *testing.T) {
	srv, captured := newSDKTestServer(t, http.MethodGet, "/api/v1/prompts", http.StatusOK, PromptList{
		Items: []Prompt{
			{ID: "p-1", ProjectID: "proj-1", RawText: "how do I renew?", MatchStatus: "gap"},
		},
		Pagination: ListMeta{Page: 1, PageSize: 20, Total: 1},
	})

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	list, err := c.Prompts().List(context.Background(), ListPromptsRequest{
		ProjectID:   "proj-1",
		MatchStatus: "gap",
		Language:    "en",
		Page:        2,
		PageSize:    10,
	})
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "p-1", list.Items[0].ID)
	assert.Equal(t, int64(1), list.Pagination.Total)

	q := captured.URL.Query()
	assert.Equal(t, "proj-1", q.Get("project_id"))
	assert.Equal(t, "gap", q.Get("match_status"))
	assert.Equal(t, "en", q.Get("language"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "10", q.Get("page_size"))
}

func TestPromptsList_RequiresProjectID(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)

	_, err = c.Prompts().List(context.Background(), ListPromptsRequest{})
	assert.Error(t, err)
}

func TestPromptsGet(t *testing.T) {
	srv, _ := newSDKTestServer(t, http.MethodGet, "/api/v1/prompts/p-1", http.StatusOK, Prompt{
		ID: "p-1", ProjectID: "proj-1", RawText: "how do I renew?", IntentLabel: "transactional",
	})

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	p, err := c.Prompts().Get(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "transactional", p.IntentLabel)
}

func TestPromptsGet_NotFound(t *testing.T) {
	srv, _ := newSDKTestServer(t, http.MethodGet, "/api/v1/prompts/nope", http.StatusNotFound, map[string]string{
		"code": "PROMPT_001", "message": "prompt not found",
	})

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Prompts().Get(context.Background(), "nope")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}
