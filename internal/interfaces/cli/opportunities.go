package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/searchlens/gapintel/pkg/client"
)

var (
	oppsProject  string
	oppsStatus   string
	oppsAction   string
	oppsPage     int
	oppsPageSize int
)

// NewOpportunitiesCmd creates the opportunities command group.
func NewOpportunitiesCmd() *cobra.Command {
	oppsCmd := &cobra.Command{
		Use:     "opportunities",
		Aliases: []string{"opps"},
		Short:   "Work the content-opportunity backlog",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List opportunities by priority",
		RunE:  runOpportunitiesList,
	}
	listCmd.Flags().StringVar(&oppsProject, "project", "", "Project ID (required)")
	listCmd.Flags().StringVar(&oppsStatus, "status", "", "Workflow status filter: new|in_progress|resolved|dismissed")
	listCmd.Flags().StringVar(&oppsAction, "action", "", "Recommended action filter (e.g. create_article)")
	listCmd.Flags().IntVar(&oppsPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&oppsPageSize, "page-size", 20, "Results per page (max 100)")
	listCmd.MarkFlagRequired("project")

	getCmd := &cobra.Command{
		Use:   "get <opportunity-id>",
		Short: "Show a single opportunity",
		Args:  cobra.ExactArgs(1),
		RunE:  runOpportunitiesGet,
	}

	setStatusCmd := &cobra.Command{
		Use:   "set-status <opportunity-id> <status>",
		Short: "Move an opportunity through its workflow",
		Long:  "Move an opportunity to a new workflow status.\nValid transitions: new → in_progress|dismissed, in_progress → resolved|dismissed,\ndismissed → new.",
		Args:  cobra.ExactArgs(2),
		RunE:  runOpportunitiesSetStatus,
	}

	oppsCmd.AddCommand(listCmd, getCmd, setStatusCmd)
	return oppsCmd
}

func runOpportunitiesList(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	list, err := cliCtx.Client.Opportunities().List(cmd.Context(), client.ListOpportunitiesRequest{
		ProjectID: oppsProject,
		Status:    oppsStatus,
		Action:    oppsAction,
		Page:      oppsPage,
		PageSize:  oppsPageSize,
	})
	if err != nil {
		return err
	}

	return PrintResult(cmd, opportunityTable(list.Items))
}

func runOpportunitiesGet(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	o, err := cliCtx.Client.Opportunities().Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return PrintResult(cmd, o)
}

func runOpportunitiesSetStatus(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	o, err := cliCtx.Client.Opportunities().UpdateStatus(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	PrintSuccess(cmd, fmt.Sprintf("opportunity %s is now %s", o.ID, o.Status))
	return nil
}

// opportunityTable renders an opportunity list as a table.
type opportunityTable []client.Opportunity

func (ot opportunityTable) TableHeaders() []string {
	return []string{"ID", "PRIORITY", "DIFFICULTY", "ACTION", "STATUS", "REASON"}
}

func (ot opportunityTable) TableRows() [][]string {
	rows := make([][]string, 0, len(ot))
	for _, o := range ot {
		reason := o.Reason
		if len(reason) > 50 {
			reason = reason[:47] + "..."
		}
		rows = append(rows, []string{
			o.ID,
			strconv.FormatFloat(o.PriorityScore, 'f', 3, 64),
			strconv.FormatFloat(o.DifficultyScore, 'f', 3, 64),
			o.RecommendedAction,
			o.Status,
			reason,
		})
	}
	return rows
}

func (ot opportunityTable) String() string {
	return fmt.Sprintf("%d opportunities\n%s", len(ot), FormatTable(ot.TableHeaders(), ot.TableRows()))
}
