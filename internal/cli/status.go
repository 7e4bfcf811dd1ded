package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [sheet-id]",
	Short: "Show the event overview, budget, and upcoming tasks",
	Long: `Status reads the whole sheet and prints the assembled event view:
name, date, budget usage, task progress and the next open items.

Examples:
  plansheet status 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms
  plansheet status`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sheetID, err := resolveSheetID(ctx, args)
	if err != nil {
		return err
	}

	agg, err := planner.ReadAggregate(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("read event data: %w", err)
	}

	fmt.Println(defaultTheme.headingStyle().Render(agg.Name))
	if agg.Date != "" {
		fmt.Printf("  Date: %s\n", agg.Date)
	}

	if agg.Budget.Total > 0 {
		fmt.Printf("\n  Budget: %.2f spent of %.2f (%.2f remaining)\n",
			agg.Budget.Spent, agg.Budget.Total, agg.Budget.Remaining)
	}

	if agg.Tasks.Total > 0 {
		fmt.Printf("\n  Tasks: %d/%d completed\n", agg.Tasks.Completed, agg.Tasks.Total)
		for _, t := range agg.Tasks.Upcoming {
			line := fmt.Sprintf("    - %s", t.Name)
			if t.DueDate != "" {
				line += fmt.Sprintf(" (due %s)", t.DueDate)
			}
			if t.Priority == "high" {
				line += " " + defaultTheme.errorStyle().Render("[high]")
			}
			fmt.Println(line)
		}
	}

	if len(agg.Vendors) > 0 {
		fmt.Printf("\n  Vendors: %d", len(agg.Vendors))
		confirmed := 0
		for _, v := range agg.Vendors {
			if v.Status == "confirmed" {
				confirmed++
			}
		}
		if confirmed > 0 {
			fmt.Printf(" (%d confirmed)", confirmed)
		}
		fmt.Println()
	}

	if len(agg.Timeline) > 0 {
		fmt.Printf("\n  Timeline (%d items):\n", len(agg.Timeline))
		for _, item := range agg.Timeline {
			mark := " "
			if item.Status == "completed" {
				mark = defaultTheme.successStyle().Render("✓")
			}
			line := fmt.Sprintf("    %s %s", mark, item.Task)
			if item.DueDate != "" {
				line += " " + defaultTheme.hintStyle().Render(item.DueDate)
			}
			fmt.Println(line)
		}
	}

	return nil
}
