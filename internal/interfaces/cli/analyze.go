package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/searchlens/gapintel/pkg/client"
)

var (
	analyzeProject string
	analyzePrompts []string
	analyzePages   []string
)

// NewAnalyzeCmd creates the analyze command group. Every subcommand
// enqueues a batch job; the work itself runs on the background worker.
func NewAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Trigger analysis pipeline runs",
	}

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify prompt intent and language",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeTrigger(cmd, func(ac *client.AnalysisClient, ctx context.Context, req client.TriggerRequest) (*client.TriggerResponse, error) {
				return ac.Classify(ctx, req)
			})
		},
	}

	embedPromptsCmd := &cobra.Command{
		Use:   "embed-prompts",
		Short: "Compute prompt embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeTrigger(cmd, func(ac *client.AnalysisClient, ctx context.Context, req client.TriggerRequest) (*client.TriggerResponse, error) {
				return ac.EmbedPrompts(ctx, req)
			})
		},
	}

	embedPagesCmd := &cobra.Command{
		Use:   "embed-pages",
		Short: "Compute page embeddings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeTrigger(cmd, func(ac *client.AnalysisClient, ctx context.Context, req client.TriggerRequest) (*client.TriggerResponse, error) {
				return ac.EmbedPages(ctx, req)
			})
		},
	}

	rematchCmd := &cobra.Command{
		Use:   "rematch",
		Short: "Rematch prompts against the page corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeTrigger(cmd, func(ac *client.AnalysisClient, ctx context.Context, req client.TriggerRequest) (*client.TriggerResponse, error) {
				return ac.Rematch(ctx, req)
			})
		},
	}

	for _, sub := range []*cobra.Command{classifyCmd, embedPromptsCmd, embedPagesCmd, rematchCmd} {
		sub.Flags().StringVar(&analyzeProject, "project", "", "Project ID (required)")
		sub.MarkFlagRequired("project")
	}
	for _, sub := range []*cobra.Command{classifyCmd, embedPromptsCmd, rematchCmd} {
		sub.Flags().StringSliceVar(&analyzePrompts, "prompts", nil, "Prompt IDs (default: whole project)")
	}
	embedPagesCmd.Flags().StringSliceVar(&analyzePages, "pages", nil, "Page IDs (default: whole project)")

	analyzeCmd.AddCommand(classifyCmd, embedPromptsCmd, embedPagesCmd, rematchCmd)
	return analyzeCmd
}

func runAnalyzeTrigger(cmd *cobra.Command, call func(*client.AnalysisClient, context.Context, client.TriggerRequest) (*client.TriggerResponse, error)) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	resp, err := call(cliCtx.Client.Analysis(), cmd.Context(), client.TriggerRequest{
		ProjectID: analyzeProject,
		PromptIDs: analyzePrompts,
		PageIDs:   analyzePages,
	})
	if err != nil {
		return err
	}

	scope := "whole project"
	if resp.Enqueued > 0 {
		scope = fmt.Sprintf("%d records", resp.Enqueued)
	}
	PrintSuccess(cmd, fmt.Sprintf("enqueued %s on %s for project %s", scope, resp.Topic, resp.ProjectID))
	return nil
}
