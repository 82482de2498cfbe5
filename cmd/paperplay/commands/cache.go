// ABOUTME: Cache command inspects and clears cached segmentations and scripts
// ABOUTME: Operates on the SQLite cache keyed by document fingerprint
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// cacheEntry is the JSON shape for one cached document
type cacheEntry struct {
	Fingerprint string    `json:"fingerprint"`
	Name        string    `json:"name"`
	Strategy    string    `json:"strategy"`
	ChunkCount  int       `json:"chunk_count"`
	ScriptCount int       `json:"script_count"`
	SegmentedAt time.Time `json:"segmented_at"`
}

// NewCacheCmd creates the cache command group
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the segmentation and script cache",
		Long: `Inspect or clear cached segmentations and scripts.

Both caches are keyed by document fingerprint, so re-playing an
unchanged document never repeats OCR or script generation. Clearing a
fingerprint drops its chunks and scripts together.

Examples:
  paperplay cache list
  paperplay cache list --format json
  paperplay cache clear
  paperplay cache clear a1b2c3d4e5f60718`,
	}

	cmd.AddCommand(newCacheListCmd(), newCacheClearCmd())

	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached documents",
		Long:  `List every cached document with its segmentation strategy, chunk count, and script count.`,
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [fingerprint]",
		Short: "Drop cached chunks and scripts",
		Long: `Drop cached chunks and scripts.

With a fingerprint argument only that document is cleared; without one
the whole cache is dropped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCacheClear,
	}
}

func runCacheList(cmd *cobra.Command, args []string) error {
	p, err := openPipeline(true)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	docs, err := p.chunks.ListDocuments()
	if err != nil {
		return fmt.Errorf("listing cached documents: %w", err)
	}

	if len(docs) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Cache is empty\n")
		}
		return nil
	}

	entries := make([]cacheEntry, 0, len(docs))
	for _, doc := range docs {
		scripts, err := p.scripts.ListByDocument(doc.Fingerprint)
		if err != nil {
			return fmt.Errorf("listing scripts for %s: %w", doc.Fingerprint, err)
		}
		entries = append(entries, cacheEntry{
			Fingerprint: doc.Fingerprint,
			Name:        doc.Name,
			Strategy:    string(doc.Strategy),
			ChunkCount:  doc.ChunkCount,
			ScriptCount: len(scripts),
			SegmentedAt: doc.SegmentedAt,
		})
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FINGERPRINT\tNAME\tSTRATEGY\tCHUNKS\tSCRIPTS\tSEGMENTED\n")
	fmt.Fprintf(w, "-----------\t----\t--------\t------\t-------\t---------\n")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			entry.Fingerprint,
			truncate(entry.Name, 30),
			entry.Strategy,
			entry.ChunkCount,
			entry.ScriptCount,
			formatTime(entry.SegmentedAt))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d document(s)\n", len(entries))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	p, err := openPipeline(true)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	docs, err := p.chunks.ListDocuments()
	if err != nil {
		return fmt.Errorf("listing cached documents: %w", err)
	}

	targets := docs
	if len(args) == 1 {
		fingerprints := make([]string, 0, len(docs))
		for _, doc := range docs {
			fingerprints = append(fingerprints, doc.Fingerprint)
		}
		if !containsString(fingerprints, args[0]) {
			return fmt.Errorf("no cached document %s", args[0])
		}
		targets = nil
		for _, doc := range docs {
			if doc.Fingerprint == args[0] {
				targets = append(targets, doc)
			}
		}
	}

	if len(targets) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Cache is already empty\n")
		}
		return nil
	}

	for _, doc := range targets {
		if err := clearDocument(p, doc.Fingerprint); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s (%s)\n", doc.Fingerprint, doc.Name)
		}
	}
	return nil
}

// clearDocument drops both caches for one fingerprint, scripts first so
// an interrupted clear never leaves scripts without their chunks
func clearDocument(p *pipeline, fingerprint string) error {
	if err := p.scripts.DeleteByDocument(fingerprint); err != nil {
		return fmt.Errorf("clearing scripts for %s: %w", fingerprint, err)
	}
	if err := p.chunks.DeleteDocument(fingerprint); err != nil {
		return fmt.Errorf("clearing chunks for %s: %w", fingerprint, err)
	}
	return nil
}
