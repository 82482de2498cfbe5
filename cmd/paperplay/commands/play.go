// ABOUTME: Play command runs a document as an interactive visual novel
// ABOUTME: Renders turns on the terminal and prompts for quiz/choice input
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/playback"
)

var (
	playMode       string
	playStrategy   string
	playNoRemote   bool
	playExport     string
	playMaxChunks  int
	playRegenerate bool
)

// NewPlayCmd creates the play command
func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <document>",
		Short: "Play a document as a visual novel session",
		Long: `Play a document as an interactive visual novel.

The document is segmented into chunks, each chunk gets an LLM-written
script, and the turns play back in order. Quizzes and choices pause
for input in interactive mode (options are numbered from 1); auto
mode answers them headlessly with the selected strategy.

Examples:
  paperplay play paper.pdf
  paperplay play --mode auto --auto-strategy correct paper.pdf
  paperplay play --no-remote --max-chunks 3 notes.txt
  paperplay play --export history.yaml paper.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runPlay,
	}

	cmd.Flags().StringVar(&playMode, "mode", "interactive", "Play mode (interactive or auto)")
	cmd.Flags().StringVar(&playStrategy, "auto-strategy", "first", "Auto answer strategy (first, correct, last)")
	cmd.Flags().BoolVar(&playNoRemote, "no-remote", false, "Disable remote segmentation")
	cmd.Flags().StringVar(&playExport, "export", "", "Write play history to a file after the session (.yaml, .json, .md)")
	cmd.Flags().IntVar(&playMaxChunks, "max-chunks", 0, "Play at most n chunks (0 plays all)")
	cmd.Flags().BoolVar(&playRegenerate, "regenerate", false, "Discard cached scripts and regenerate")

	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	mode, err := models.ParsePlayMode(playMode)
	if err != nil {
		return err
	}
	strategy, err := models.ParseAutoStrategy(playStrategy)
	if err != nil {
		return err
	}
	if playMaxChunks != 0 {
		if err := validatePositiveInt(playMaxChunks, "max-chunks"); err != nil {
			return err
		}
	}

	p, err := openPipeline(playNoRemote)
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

	doc, err := models.LoadDocument(args[0])
	if err != nil {
		return err
	}

	if playRegenerate {
		if err := p.scripts.DeleteByDocument(doc.Fingerprint); err != nil {
			return fmt.Errorf("clearing cached scripts: %w", err)
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached scripts for %s\n", doc.Fingerprint)
		}
	}

	controller := playback.NewController(doc, p.gateway, engine, playback.Config{
		Mode:      mode,
		Strategy:  strategy,
		MaxChunks: playMaxChunks,
	})
	defer controller.Close()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Opening %s...\n", doc.Name)
	}
	if err := controller.Start(ctx); err != nil {
		return err
	}

	if mode == models.ModeAuto {
		if err := controller.Run(ctx); err != nil {
			return err
		}
		if !quiet {
			renderHistory(cmd.OutOrStdout(), controller)
		}
	} else {
		if err := playInteractive(ctx, cmd, controller); err != nil {
			return err
		}
	}

	if playExport != "" {
		if err := controller.Export(playExport); err != nil {
			return fmt.Errorf("exporting history: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ History written to %s\n", playExport)
		}
	}

	return nil
}

// playInteractive walks the session turn by turn, reading quiz and
// choice selections from stdin. A closed stdin ends the session early
// without error so piped input degrades cleanly.
func playInteractive(ctx context.Context, cmd *cobra.Command, controller *playback.Controller) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	lastChunk := -1
	for {
		switch state := controller.State(); state {
		case models.StatePlayingTurn, models.StateAwaitingChoice:
			turn, err := controller.Current()
			if err != nil {
				return err
			}
			if chunk, err := controller.CurrentChunk(); err == nil && chunk.Ordinal != lastChunk {
				renderChunkHeader(out, chunk)
				lastChunk = chunk.Ordinal
			}
			renderTurn(out, turn)

			if state == models.StateAwaitingChoice {
				option, err := readSelection(in, out, turn.OptionCount())
				if err != nil {
					if errors.Is(err, io.EOF) {
						fmt.Fprintf(out, "\nInput closed, ending session early.\n")
						return nil
					}
					return err
				}
				sel, err := controller.Select(ctx, option)
				if sel != nil {
					renderOutcome(out, turn, sel)
				}
				if err != nil {
					return err
				}
			} else {
				if _, err := controller.Advance(ctx); err != nil {
					return err
				}
			}
		case models.StateChunkComplete:
			if _, err := controller.Advance(ctx); err != nil {
				return err
			}
		case models.StateSessionComplete:
			if !quiet {
				fmt.Fprintf(out, "\nThe end. %d turns played.\n", len(controller.Session().History))
			}
			return nil
		case models.StateError:
			return controller.Err()
		default:
			return fmt.Errorf("unexpected playback state %s", state)
		}
	}
}

// readSelection prompts until it gets a number in [1, count] and returns
// the 0-based index
func readSelection(in *bufio.Reader, out io.Writer, count int) (int, error) {
	for {
		fmt.Fprintf(out, "Choose 1-%d: ", count)
		line, readErr := in.ReadString('\n')
		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && choice >= 1 && choice <= count {
			return choice - 1, nil
		}
		if readErr != nil {
			return 0, readErr
		}
		fmt.Fprintf(out, "Enter a number between 1 and %d\n", count)
	}
}

func renderChunkHeader(out io.Writer, chunk models.Chunk) {
	if chunk.Title != "" {
		fmt.Fprintf(out, "\n=== Chunk %d: %s ===\n", chunk.Ordinal, chunk.Title)
		return
	}
	fmt.Fprintf(out, "\n=== Chunk %d ===\n", chunk.Ordinal)
}

func renderTurn(out io.Writer, turn *models.Turn) {
	switch turn.Kind {
	case models.TurnNarration:
		fmt.Fprintf(out, "\n%s\n", turn.Text)
	case models.TurnDialogue:
		fmt.Fprintf(out, "\n%s (%s): %s\n", turn.Speaker, turn.Emotion, turn.Text)
	case models.TurnQuiz:
		fmt.Fprintf(out, "\nQuiz: %s\n", turn.Question)
		for i, opt := range turn.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
	case models.TurnChoice:
		fmt.Fprintf(out, "\n%s\n", turn.Prompt)
		for i, opt := range turn.Choices {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt.Text)
		}
	}
}

func renderOutcome(out io.Writer, turn *models.Turn, sel *models.Selection) {
	switch sel.Kind {
	case models.TurnQuiz:
		if sel.Correct {
			fmt.Fprintf(out, "✓ Correct: %s\n", sel.OptionText)
		} else {
			fmt.Fprintf(out, "✗ Not quite. The answer was %s\n", turn.Options[turn.CorrectIndex])
		}
		if turn.Explanation != "" {
			fmt.Fprintf(out, "%s\n", turn.Explanation)
		}
	case models.TurnChoice:
		if sel.Effect != "" {
			fmt.Fprintf(out, "You chose %s [%s]\n", sel.OptionText, sel.Effect)
			return
		}
		fmt.Fprintf(out, "You chose %s\n", sel.OptionText)
	}
}

// renderHistory replays the recorded session onto the terminal after a
// headless auto run
func renderHistory(out io.Writer, controller *playback.Controller) {
	chunks := controller.Chunks()
	lastChunk := -1
	history := controller.Session().History
	for _, played := range history {
		if played.ChunkOrdinal != lastChunk && played.ChunkOrdinal < len(chunks) {
			renderChunkHeader(out, chunks[played.ChunkOrdinal])
			lastChunk = played.ChunkOrdinal
		}
		turn := played.Turn
		renderTurn(out, &turn)
		if played.Selection != nil {
			renderOutcome(out, &turn, played.Selection)
		}
	}
	fmt.Fprintf(out, "\nThe end. %d turns played.\n", len(history))
}
