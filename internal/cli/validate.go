package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [sheet-id]",
	Short: "Check that a sheet has a README tab and a parseable schema",
	Long: `Validate connects to the sheet, looks for the README description tab
and parses the declared tab layout. On success the parsed schema is
cached for subsequent reads.

Examples:
  plansheet validate 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms
  plansheet validate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sheetID, err := resolveSheetID(ctx, args)
	if err != nil {
		return err
	}

	result, err := planner.Validate(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("validate sheet: %w", err)
	}

	if !result.Valid {
		fmt.Println(defaultTheme.errorStyle().Render("✗ Sheet is not usable"))
		fmt.Printf("\n  Reason: %s\n  %s\n", result.Reason, result.Message)
		return fmt.Errorf("sheet %s failed validation", sheetID)
	}

	fmt.Println(defaultTheme.successStyle().Render("✓ Sheet is usable"))
	fmt.Printf("\n  Title: %s\n  Declared tabs (%d):\n", result.ResourceTitle, len(result.Schema.Tabs))
	for _, tab := range result.Schema.Tabs {
		fmt.Printf("    - %s (%d columns, header row %d)\n", tab.Name, len(tab.Columns), tab.HeaderRow)
	}
	return nil
}
