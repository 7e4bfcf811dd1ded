package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var vendorsCategory string

var vendorsCmd = &cobra.Command{
	Use:   "vendors [sheet-id]",
	Short: "List the event's vendors with contact details",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVendors,
}

func init() {
	vendorsCmd.Flags().StringVarP(&vendorsCategory, "category", "c", "", "filter by category")
}

func runVendors(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sheetID, err := resolveSheetID(ctx, args)
	if err != nil {
		return err
	}

	agg, err := planner.ReadAggregate(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("read event data: %w", err)
	}

	if len(agg.Vendors) == 0 {
		fmt.Println("No vendors found.")
		return nil
	}

	shown := 0
	for _, v := range agg.Vendors {
		if vendorsCategory != "" && v.Category != vendorsCategory {
			continue
		}
		shown++

		line := fmt.Sprintf("- %s", v.Name)
		if v.Category != "" {
			line += fmt.Sprintf(" [%s]", v.Category)
		}
		line += fmt.Sprintf(" (%s)", v.Status)
		fmt.Println(line)

		if verbose {
			if v.Contact != "" {
				fmt.Printf("  Contact: %s\n", v.Contact)
			}
			if v.Email != "" {
				fmt.Printf("  Email:   %s\n", v.Email)
			}
			if v.Phone != "" {
				fmt.Printf("  Phone:   %s\n", v.Phone)
			}
		}
	}

	if shown == 0 {
		fmt.Printf("No vendors in category %q.\n", vendorsCategory)
	}
	return nil
}
