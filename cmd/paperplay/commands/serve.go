// ABOUTME: Serve command exposes the playback API over HTTP
// ABOUTME: Runs a gin server with graceful shutdown on SIGINT/SIGTERM
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/paperplay/internal/api"
	"github.com/harper/paperplay/internal/playback"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the playback API over HTTP",
		Long: `Serve the playback API over HTTP.

Exposes session endpoints under /api/sessions backed by the same
pipeline the play command uses. Sessions live in memory; chunk and
script caches live in SQLite, shared with the CLI.

Examples:
  paperplay serve
  paperplay serve --addr :9090`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	p, err := openPipeline(false)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := p.newEngine(ctx)
	if err != nil {
		return err
	}

	manager := playback.NewManager(p.gateway, engine)
	defer manager.CloseAll()

	srv := &http.Server{
		Addr:    serveAddr,
		Handler: api.NewServer(manager).Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if !quiet {
		log.Printf("[Serve] Playback API listening on %s", serveAddr)
	}

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("[Serve] Shutdown signal received, draining...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if !quiet {
			log.Println("[Serve] Shutdown complete")
		}
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
