// ABOUTME: Main entry point for Paperplay CLI
// ABOUTME: Sets up Cobra root command and maps failures to exit codes
package main

import (
	"fmt"
	"os"

	"github.com/harper/paperplay/cmd/paperplay/commands"
	"github.com/harper/paperplay/internal/segment"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Set version info for commands
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes unreadable documents (2) from runtime failures (1)
func exitCode(err error) int {
	if segment.IsFatal(err) {
		return 2
	}
	return 1
}
