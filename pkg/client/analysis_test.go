package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisTriggers(t *testing.T) {
	tests := []struct {
		name     string
		call     func(ac *AnalysisClient, ctx context.Context, req TriggerRequest) (*TriggerResponse, error)
		wantPath string
	}{
		{"classify", (*AnalysisClient).Classify, "/api/v1/analysis/classify"},
		{"embed prompts", (*AnalysisClient).EmbedPrompts, "/api/v1/analysis/embed/prompts"},
		{"embed pages", (*AnalysisClient).EmbedPages, "/api/v1/analysis/embed/pages"},
		{"rematch", (*AnalysisClient).Rematch, "/api/v1/analysis/rematch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var gotReq TriggerRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				raw, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				require.NoError(t, json.Unmarshal(raw, &gotReq))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusAccepted)
				json.NewEncoder(w).Encode(TriggerResponse{
					Topic: "gapintel.job", ProjectID: gotReq.ProjectID, Enqueued: len(gotReq.PromptIDs),
				})
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL)
			require.NoError(t, err)

			resp, err := tt.call(c.Analysis(), context.Background(), TriggerRequest{
				ProjectID: "proj-1",
				PromptIDs: []string{"p-1", "p-2"},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, "proj-1", gotReq.ProjectID)
			assert.Equal(t, 2, resp.Enqueued)
		})
	}
}

func TestAnalysisTrigger_RequiresProjectID(t *testing.T) {
	c, err := NewClient("http://localhost:8080")
	require.NoError(t, err)

	_, err = c.Analysis().Classify(context.Background(), TriggerRequest{})
	assert.Error(t, err)
}
