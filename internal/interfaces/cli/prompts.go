package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/searchlens/gapintel/pkg/client"
)

var (
	promptsProject  string
	promptsStatus   string
	promptsIntent   string
	promptsLanguage string
	promptsPage     int
	promptsPageSize int
)

// NewPromptsCmd creates the prompts command group.
func NewPromptsCmd() *cobra.Command {
	promptsCmd := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect the prompt corpus",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List prompts with their match status",
		RunE:  runPromptsList,
	}
	listCmd.Flags().StringVar(&promptsProject, "project", "", "Project ID (required)")
	listCmd.Flags().StringVar(&promptsStatus, "status", "", "Match status filter: pending|answered|partial|gap")
	listCmd.Flags().StringVar(&promptsIntent, "intent", "", "Intent label filter")
	listCmd.Flags().StringVar(&promptsLanguage, "language", "", "ISO 639-1 language filter")
	listCmd.Flags().IntVar(&promptsPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&promptsPageSize, "page-size", 20, "Results per page (max 100)")
	listCmd.MarkFlagRequired("project")

	getCmd := &cobra.Command{
		Use:   "get <prompt-id>",
		Short: "Show a single prompt",
		Args:  cobra.ExactArgs(1),
		RunE:  runPromptsGet,
	}

	promptsCmd.AddCommand(listCmd, getCmd)
	return promptsCmd
}

func runPromptsList(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	list, err := cliCtx.Client.Prompts().List(cmd.Context(), client.ListPromptsRequest{
		ProjectID:   promptsProject,
		MatchStatus: promptsStatus,
		Intent:      promptsIntent,
		Language:    promptsLanguage,
		Page:        promptsPage,
		PageSize:    promptsPageSize,
	})
	if err != nil {
		return err
	}

	return PrintResult(cmd, promptTable(list.Items))
}

func runPromptsGet(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	p, err := cliCtx.Client.Prompts().Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return PrintResult(cmd, p)
}

// promptTable renders a prompt list as a table.
type promptTable []client.Prompt

func (pt promptTable) TableHeaders() []string {
	return []string{"ID", "PROMPT", "INTENT", "LANG", "STATUS", "BEST SCORE"}
}

func (pt promptTable) TableRows() [][]string {
	rows := make([][]string, 0, len(pt))
	for _, p := range pt {
		text := p.RawText
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		best := "-"
		if p.BestMatchScore != nil {
			best = strconv.FormatFloat(*p.BestMatchScore, 'f', 3, 64)
		}
		rows = append(rows, []string{
			p.ID, text, p.IntentLabel, p.Language, p.MatchStatus, best,
		})
	}
	return rows
}

func (pt promptTable) String() string {
	return fmt.Sprintf("%d prompts\n%s", len(pt), FormatTable(pt.TableHeaders(), pt.TableRows()))
}
