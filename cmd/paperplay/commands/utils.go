// ABOUTME: Shared pipeline wiring and utility functions for CLI commands
// ABOUTME: Opens config, storage, and the segmentation gateway in one place
package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/harper/paperplay/internal/config"
	"github.com/harper/paperplay/internal/llm"
	"github.com/harper/paperplay/internal/script"
	"github.com/harper/paperplay/internal/segment"
	"github.com/harper/paperplay/internal/storage/sqlite"
)

// pipeline bundles the stages every playback-facing command wires up
type pipeline struct {
	cfg     *config.Config
	db      *sqlite.DB
	gateway *segment.Gateway
	chunks  *sqlite.ChunkStore
	scripts *sqlite.ScriptStore
}

// openPipeline loads configuration and wires storage plus the
// segmentation gateway. noRemote forces local windowing even when a
// MinerU credential is configured.
func openPipeline(noRemote bool) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	dbPath := sqlite.DefaultDBPath()
	if cfg.DataDir != "" {
		dbPath = filepath.Join(cfg.DataDir, "paperplay.db")
	}
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	chunkStore := sqlite.NewChunkStore(db)
	scriptStore := sqlite.NewScriptStore(db)

	var remote *segment.MinerUClient
	if cfg.RemoteSegmentation && !noRemote && cfg.RemoteConfigured() {
		remote = segment.NewMinerUClient(&segment.MinerUConfig{
			APIKey:       cfg.MinerUKey,
			BaseURL:      cfg.MinerUBase,
			PollInterval: cfg.PollInterval,
			PollTimeout:  cfg.PollTimeout,
		})
	}

	gateway := segment.NewGateway(remote, chunkStore, segment.GatewayConfig{
		RemoteEnabled: remote != nil,
		WindowSize:    cfg.ChunkSize,
		MaxRetries:    cfg.OCRMaxRetries,
		RetryDelay:    cfg.OCRRetryDelay,
	})

	return &pipeline{
		cfg:     cfg,
		db:      db,
		gateway: gateway,
		chunks:  chunkStore,
		scripts: scriptStore,
	}, nil
}

// newEngine builds the script engine for the configured provider
func (p *pipeline) newEngine(ctx context.Context) (*script.Engine, error) {
	gen, err := llm.NewGenerator(ctx, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing script generator: %w", err)
	}
	return script.NewEngine(gen, p.scripts, p.cfg.ScriptAttempts), nil
}

func (p *pipeline) Close() error {
	return p.db.Close()
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}

// containsString checks if a slice contains a string
func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
