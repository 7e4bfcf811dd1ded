package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var noteSheetID string

var noteCmd = &cobra.Command{
	Use:   "note <text>...",
	Short: "Append a timestamped note to the sheet's activity log",
	Long: `Note appends one row to the Activity Log tab: a UTC timestamp, the
note text and the source marker.

Examples:
  plansheet note "Confirmed the caterer for Saturday"
  plansheet note --sheet 1BxiMVs0X... "Venue deposit paid"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNote,
}

func init() {
	noteCmd.Flags().StringVarP(&noteSheetID, "sheet", "s", "", "sheet ID (defaults to the last used one)")
}

func runNote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sheetID := noteSheetID
	if sheetID == "" {
		var err error
		sheetID, err = resolveSheetID(ctx, nil)
		if err != nil {
			return err
		}
	}

	text := strings.Join(args, " ")
	if err := planner.AppendLogEntry(ctx, sheetID, text); err != nil {
		return fmt.Errorf("append note: %w", err)
	}

	fmt.Println(defaultTheme.successStyle().Render("✓ Note appended"))
	return nil
}
