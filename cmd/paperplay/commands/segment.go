// ABOUTME: Segment command runs document segmentation without playback
// ABOUTME: Lists the resulting chunks as a table or JSON
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/paperplay/internal/models"
)

var (
	segmentJSON     bool
	segmentNoRemote bool
)

// NewSegmentCmd creates the segment command
func NewSegmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment <document>",
		Short: "Segment a document into chunks",
		Long: `Segment a document into chunks without playing it.

Useful for checking what the remote OCR strategy (or the local window
fallback) produces before spending script generation calls. The result
is cached, so a later play of the same document reuses it.

Examples:
  paperplay segment paper.pdf
  paperplay segment --no-remote paper.pdf
  paperplay segment --json paper.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runSegment,
	}

	cmd.Flags().BoolVar(&segmentJSON, "json", false, "Print chunks as JSON")
	cmd.Flags().BoolVar(&segmentNoRemote, "no-remote", false, "Disable remote segmentation")

	return cmd
}

func runSegment(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	p, err := openPipeline(segmentNoRemote)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := models.LoadDocument(args[0])
	if err != nil {
		return err
	}

	chunks, source, err := p.gateway.Segment(ctx, doc)
	if err != nil {
		return err
	}

	if segmentJSON || outputFormat == "json" {
		jsonData, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ORDINAL\tSOURCE\tTITLE\tSIZE\n")
	fmt.Fprintf(w, "-------\t------\t-----\t----\n")
	for _, chunk := range chunks {
		title := chunk.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n",
			chunk.Ordinal,
			chunk.Source,
			truncate(title, 40),
			len([]rune(chunk.Text)))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %d chunk(s) via %s strategy\n", doc.Fingerprint, len(chunks), source)
	}
	return nil
}
