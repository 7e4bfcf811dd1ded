package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plansheet/internal/channel"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local websocket endpoint for the browser extension",
	Long: `Serve starts a loopback websocket server the browser extension
connects to. Each message carries a type, a payload and a request ID;
replies are correlated by the same ID.

The server shuts down cleanly on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ch := channel.New(logger)
	channel.RegisterPlanner(ch, planner, ring, logger)

	mux := http.NewServeMux()
	mux.Handle("/channel", ch)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("channel server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("channel server: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	snap := collector.Snapshot()
	for op, stats := range snap.Operations {
		logger.Info("request stats",
			"op", op,
			"count", stats.Count,
			"failures", stats.Failures,
			"retries", stats.Retries,
			"avg_ms", stats.AvgTimeMs)
	}

	return nil
}
