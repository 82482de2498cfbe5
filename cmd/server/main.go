// ABOUTME: Main entry point for Paperplay MCP server with stdio transport
// ABOUTME: Wires config, storage, segmentation, and script generation
package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/paperplay/internal/config"
	"github.com/harper/paperplay/internal/llm"
	"github.com/harper/paperplay/internal/mcp"
	"github.com/harper/paperplay/internal/playback"
	"github.com/harper/paperplay/internal/script"
	"github.com/harper/paperplay/internal/segment"
	"github.com/harper/paperplay/internal/storage/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Verify we have a script generation key
	if cfg.GenerativeKey() == "" {
		log.Printf("Warning: no %s API key set - script generation will not work", cfg.Provider)
	}

	dbPath := sqlite.DefaultDBPath()
	if cfg.DataDir != "" {
		dbPath = filepath.Join(cfg.DataDir, "paperplay.db")
	}
	db, err := sqlite.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var remote *segment.MinerUClient
	if cfg.RemoteSegmentation && cfg.RemoteConfigured() {
		remote = segment.NewMinerUClient(&segment.MinerUConfig{
			APIKey:       cfg.MinerUKey,
			BaseURL:      cfg.MinerUBase,
			PollInterval: cfg.PollInterval,
			PollTimeout:  cfg.PollTimeout,
		})
	}

	gateway := segment.NewGateway(remote, sqlite.NewChunkStore(db), segment.GatewayConfig{
		RemoteEnabled: remote != nil,
		WindowSize:    cfg.ChunkSize,
		MaxRetries:    cfg.OCRMaxRetries,
		RetryDelay:    cfg.OCRRetryDelay,
	})

	gen, err := llm.NewGenerator(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize script generator: %v", err)
	}
	engine := script.NewEngine(gen, sqlite.NewScriptStore(db), cfg.ScriptAttempts)

	manager := playback.NewManager(gateway, engine)
	defer manager.CloseAll()

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Paperplay",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, manager)

	// Start server with stdio transport
	log.Println("Paperplay MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
