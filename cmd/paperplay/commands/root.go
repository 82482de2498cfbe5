// ABOUTME: Root command for Paperplay CLI with global flags
// ABOUTME: Registers subcommands and shared verbose/quiet/format options
package commands

import (
	"github.com/spf13/cobra"
)

// Global flags shared by all subcommands
var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗  █████╗ ██████╗ ███████╗██████╗ ██████╗ ██╗      █████╗ ██╗   ██╗
██╔══██╗██╔══██╗██╔══██╗██╔════╝██╔══██╗██╔══██╗██║     ██╔══██╗╚██╗ ██╔╝
██████╔╝███████║██████╔╝█████╗  ██████╔╝██████╔╝██║     ███████║ ╚████╔╝
██╔═══╝ ██╔══██║██╔═══╝ ██╔══╝  ██╔══██╗██╔═══╝ ██║     ██╔══██║  ╚██╔╝
██║     ██║  ██║██║     ███████╗██║  ██║██║     ███████╗██║  ██║   ██║
╚═╝     ╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝  ╚═╝╚═╝     ╚══════╝╚═╝  ╚═╝   ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paperplay",
		Short: "Play papers as interactive visual novel sessions",
		Long: banner + `

Paperplay turns a PDF or text document into an interactive visual
novel. Documents are segmented into chunks, an LLM writes a short
script for each chunk, and the scripts play back as narration,
dialogue, quizzes, and branching choices.

Segmentation and script results are cached in SQLite, so replaying
a document is instant and costs no API calls.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewPlayCmd(),
		NewSegmentCmd(),
		NewCacheCmd(),
		NewServeCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
