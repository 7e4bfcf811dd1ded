package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local schema cache",
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate [sheet-id]",
	Short: "Drop the cached schema for one sheet",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheInvalidate,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all locally cached data",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheInvalidateCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sheetID, err := resolveSheetID(ctx, args)
	if err != nil {
		return err
	}

	if err := planner.InvalidateSchema(ctx, sheetID); err != nil {
		return fmt.Errorf("invalidate schema: %w", err)
	}
	fmt.Printf("Cached schema for %s dropped.\n", sheetID)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	fmt.Println("Local store cleared.")
	return nil
}
