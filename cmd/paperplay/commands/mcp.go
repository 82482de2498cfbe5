// ABOUTME: MCP command exposing playback sessions over stdio
// ABOUTME: Registers document and playback tools for LLM agents
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/paperplay/internal/mcp"
	"github.com/harper/paperplay/internal/playback"
)

// NewMCPCmd creates the mcp command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Exposes playback over the Model Context Protocol on stdio: an agent can
open a document, step through its turns, answer quizzes and choices, and
export the session history through the registered tools.`,
		RunE: runMCP,
		Example: `  # Started by an MCP client over stdio
  paperplay mcp

  # claude_desktop_config.json entry:
  #   "paperplay": {"command": "paperplay", "args": ["mcp"]}`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	// .env is optional; API keys may come from the real environment
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	p, err := openPipeline(false)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	if p.cfg.GenerativeKey() == "" {
		log.Printf("Warning: no %s API key set - script generation will not work", p.cfg.Provider)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := p.newEngine(ctx)
	if err != nil {
		return err
	}

	manager := playback.NewManager(p.gateway, engine)
	server := mcpserver.NewMCPServer("Paperplay", buildVersion)
	handlers := mcp.RegisterTools(server, manager)

	if !quiet {
		log.Println("Paperplay MCP server listening on stdio")
	}

	errc := make(chan error, 1)
	go func() { errc <- mcpserver.ServeStdio(server) }()

	select {
	case <-ctx.Done():
		// closes every live playback session before exiting
		handlers.Shutdown()
		if !quiet {
			log.Println("MCP server stopped")
		}
		return nil
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	}
}
