// Package cli provides the command-line interface for plansheet.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"plansheet/internal/config"
	"plansheet/internal/kvstore"
	"plansheet/internal/metrics"
	"plansheet/internal/schema"
	"plansheet/internal/service"
	"plansheet/internal/sheets"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	verbose    bool

	// Shared state built in PersistentPreRunE
	cfg        config.Config
	logger     *slog.Logger
	ring       *config.RingHandler
	logCleanup func() error
	collector  *metrics.Collector
	store      kvstore.Store
	planner    *service.Planner
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "plansheet",
	Short: "Event planning over a shared spreadsheet",
	Long: `Plansheet reads and writes event-planning data (overview, budget,
tasks, vendors, timeline) in a remote spreadsheet whose layout is
described by a README tab inside the sheet itself.

The sheet's structure is discovered once, cached locally for a day,
and used to map arbitrary tab layouts onto one event aggregate.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, ring, logCleanup = config.SetupLogger(cfg)

		collector = metrics.NewCollector()
		client := sheets.NewClient(
			sheets.StaticTokenSource(cfg.AccessToken),
			logger,
			sheets.Options{
				BaseURL:   cfg.SheetsBaseURL,
				RetryBase: cfg.RetryBaseDelay,
				Collector: collector,
			},
		)

		store = kvstore.NewFileStore(cfg.CachePath)
		cache := schema.NewCache(store, cfg.CacheTTL, logger)
		planner = service.NewPlanner(client, cache, store, nil, logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// resolveSheetID returns the sheet id from args, falling back to the
// most recently used one.
func resolveSheetID(ctx context.Context, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if id := planner.LastSession(ctx); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no sheet ID given and no previous session found")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(vendorsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
}
