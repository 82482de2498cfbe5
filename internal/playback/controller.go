// ABOUTME: Controller drives one playback session through its state machine
// ABOUTME: Idle, PlayingTurn, AwaitingChoice, ChunkComplete, SessionComplete, Error
package playback

import (
	"context"
	"sync"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/script"
	"github.com/harper/paperplay/internal/segment"
)

// Config selects how a session resolves turns
type Config struct {
	Mode     models.PlayMode
	Strategy models.AutoStrategy
	// MaxChunks caps how many chunks are played; 0 plays the whole document.
	// Segmentation output is never truncated, only the played range.
	MaxChunks int
}

// Controller owns one session's walk through a document. All methods are
// safe for concurrent use; long waits (script generation at a chunk
// boundary) happen inside the Advance or Select call that crossed the
// boundary, bounded by that call's context.
type Controller struct {
	mu sync.Mutex

	doc     *models.Document
	gateway *segment.Gateway
	engine  *script.Engine

	session  *models.PlaybackSession
	nctx     *models.NarrativeContext
	prefetch *prefetcher

	chunks    []models.Chunk
	source    models.ChunkSource
	scripts   map[int]*models.ChunkScript
	maxChunks int
	lastErr   error
}

// NewController creates an Idle session over a loaded document
func NewController(doc *models.Document, gateway *segment.Gateway, engine *script.Engine, cfg Config) *Controller {
	if cfg.Mode == "" {
		cfg.Mode = models.ModeInteractive
	}
	if cfg.Strategy == "" {
		cfg.Strategy = models.StrategyFirst
	}

	nctx := models.NewNarrativeContext()
	return &Controller{
		doc:       doc,
		gateway:   gateway,
		engine:    engine,
		session:   models.NewPlaybackSession(doc, cfg.Mode, cfg.Strategy),
		nctx:      nctx,
		prefetch:  newPrefetcher(engine, doc.Fingerprint, nctx),
		scripts:   make(map[int]*models.ChunkScript),
		maxChunks: cfg.MaxChunks,
	}
}

// ID returns the session identifier
func (c *Controller) ID() string {
	return c.session.ID
}

// State returns the current session state
func (c *Controller) State() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State
}

// Err returns the failure that moved the session into the Error state
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Session returns a snapshot of the session including its history
func (c *Controller) Session() models.PlaybackSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := *c.session
	snap.History = append([]models.PlayedTurn(nil), c.session.History...)
	return snap
}

// Chunks returns the segmented chunks once Start has succeeded
func (c *Controller) Chunks() []models.Chunk {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Chunk(nil), c.chunks...)
}

// Start segments the document, generates the first chunk's script, and
// moves Idle to PlayingTurn (or AwaitingChoice when the script opens on an
// interactive turn). Segmentation failures and first-chunk generation
// failures are irrecoverable and leave the session in Error.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.State != models.StateIdle {
		return rejected("start", c.session.State, "session already started")
	}

	chunks, source, err := c.gateway.Segment(ctx, c.doc)
	if err != nil {
		c.failLocked(err)
		return err
	}
	c.chunks = chunks
	c.source = source

	first, err := c.prefetch.await(ctx, c.chunks[0])
	if err != nil {
		c.failLocked(err)
		return err
	}
	c.scripts[0] = first

	c.session.ChunkOrdinal = 0
	c.session.TurnIndex = 0
	c.enterTurnLocked()
	c.kickNextLocked()
	return nil
}

// Current returns a copy of the turn the session is parked on
func (c *Controller) Current() (*models.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.State {
	case models.StatePlayingTurn, models.StateAwaitingChoice:
		turn := *c.currentTurnLocked()
		return &turn, nil
	}
	return nil, rejected("read current turn", c.session.State, "no turn is playing")
}

// CurrentChunk returns the chunk the session is currently inside
func (c *Controller) CurrentChunk() (models.Chunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.State {
	case models.StatePlayingTurn, models.StateAwaitingChoice, models.StateChunkComplete:
		return c.chunks[c.session.ChunkOrdinal], nil
	}
	return models.Chunk{}, rejected("read current chunk", c.session.State, "no chunk is playing")
}

// Advance consumes the current dialogue or narration turn and returns the
// next one (nil once the session completes). A pending quiz or choice
// rejects the advance; resolve it with Select instead. When the consumed
// turn was the chunk's last, Advance blocks on the next chunk's script.
func (c *Controller) Advance(ctx context.Context) (*models.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.session.State {
	case models.StatePlayingTurn:
		turn := c.currentTurnLocked()
		c.session.History = append(c.session.History, models.PlayedTurn{
			ChunkOrdinal: c.session.ChunkOrdinal,
			TurnIndex:    c.session.TurnIndex,
			Turn:         *turn,
		})
		c.session.TurnIndex++
		return c.afterConsumeLocked(ctx)
	case models.StateChunkComplete:
		// a canceled boundary wait left the session here; pick it back up
		return c.resumeChunkLocked(ctx)
	case models.StateAwaitingChoice:
		return nil, rejected("advance", c.session.State, "an option must be selected first")
	}
	return nil, rejected("advance", c.session.State, "no turn is playing")
}

// Select resolves the pending quiz or choice with the given option index
// and consumes the turn. Out-of-range selections are rejected without
// moving the state or touching history. When the resolved turn was the
// chunk's last, Select blocks on the next chunk's script; the returned
// Selection is non-nil even if that boundary wait fails.
func (c *Controller) Select(ctx context.Context, option int) (*models.Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.State != models.StateAwaitingChoice {
		return nil, rejected("select", c.session.State, "no choice is pending")
	}

	turn := c.currentTurnLocked()
	if option < 0 || option >= turn.OptionCount() {
		return nil, rejected("select", c.session.State, "option %d out of range [0,%d)", option, turn.OptionCount())
	}

	sel := &models.Selection{
		TurnIndex:   c.session.TurnIndex,
		Kind:        turn.Kind,
		OptionIndex: option,
	}
	switch turn.Kind {
	case models.TurnQuiz:
		sel.OptionText = turn.Options[option]
		sel.Correct = option == turn.CorrectIndex
	case models.TurnChoice:
		sel.OptionText = turn.Choices[option].Text
		sel.Effect = turn.Choices[option].Effect
	}

	c.session.History = append(c.session.History, models.PlayedTurn{
		ChunkOrdinal: c.session.ChunkOrdinal,
		TurnIndex:    c.session.TurnIndex,
		Turn:         *turn,
		Selection:    sel,
	})
	c.session.TurnIndex++

	if _, err := c.afterConsumeLocked(ctx); err != nil {
		return sel, err
	}
	return sel, nil
}

// Run drives an auto-mode session to completion, starting it if needed
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	mode := c.session.Mode
	state := c.session.State
	c.mu.Unlock()

	if mode != models.ModeAuto {
		return rejected("run", state, "run loop requires auto mode")
	}

	if c.State() == models.StateIdle {
		if err := c.Start(ctx); err != nil {
			return err
		}
	}

	for {
		switch state := c.State(); state {
		case models.StatePlayingTurn, models.StateChunkComplete:
			if _, err := c.Advance(ctx); err != nil {
				return err
			}
		case models.StateAwaitingChoice:
			turn, err := c.Current()
			if err != nil {
				return err
			}
			if _, err := c.Select(ctx, c.autoIndex(turn)); err != nil {
				return err
			}
		case models.StateSessionComplete:
			return nil
		case models.StateError:
			return c.Err()
		default:
			return rejected("run", state, "unexpected state")
		}
	}
}

// Export writes the history consumed so far to a file, in the format the
// file extension names. Works at any point in the session's life.
func (c *Controller) Export(path string) error {
	return WriteExport(BuildExport(c.Session(), c.Chunks()), path)
}

// Close cancels any background generation and waits for it to stop
func (c *Controller) Close() {
	c.prefetch.close()
}

// afterConsumeLocked moves to the next turn within the chunk, or crosses
// the chunk boundary when the consumed turn was the last one.
func (c *Controller) afterConsumeLocked(ctx context.Context) (*models.Turn, error) {
	script := c.scripts[c.session.ChunkOrdinal]
	if c.session.TurnIndex < len(script.Turns) {
		c.enterTurnLocked()
		turn := *c.currentTurnLocked()
		return &turn, nil
	}

	c.session.State = models.StateChunkComplete
	return c.resumeChunkLocked(ctx)
}

// resumeChunkLocked finishes a ChunkComplete boundary: waits for the next
// chunk's script and enters its first turn, or completes the session. A
// context cancellation leaves the session in ChunkComplete so a later call
// can resume; a generation failure is terminal.
func (c *Controller) resumeChunkLocked(ctx context.Context) (*models.Turn, error) {
	next := c.session.ChunkOrdinal + 1
	if next >= c.playableLocked() {
		c.session.State = models.StateSessionComplete
		return nil, nil
	}

	nextScript, err := c.prefetch.await(ctx, c.chunks[next])
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		c.failLocked(err)
		return nil, err
	}

	c.scripts[next] = nextScript
	c.session.ChunkOrdinal = next
	c.session.TurnIndex = 0
	c.enterTurnLocked()
	c.kickNextLocked()

	turn := *c.currentTurnLocked()
	return &turn, nil
}

// enterTurnLocked sets the state for the turn the session just landed on
func (c *Controller) enterTurnLocked() {
	if c.currentTurnLocked().IsInteractive() {
		c.session.State = models.StateAwaitingChoice
	} else {
		c.session.State = models.StatePlayingTurn
	}
}

func (c *Controller) currentTurnLocked() *models.Turn {
	return &c.scripts[c.session.ChunkOrdinal].Turns[c.session.TurnIndex]
}

// playableLocked is the number of chunks this session will play
func (c *Controller) playableLocked() int {
	n := len(c.chunks)
	if c.maxChunks > 0 && c.maxChunks < n {
		n = c.maxChunks
	}
	return n
}

// kickNextLocked starts prefetching the next playable chunk's script
func (c *Controller) kickNextLocked() {
	next := c.session.ChunkOrdinal + 1
	if next < c.playableLocked() {
		c.prefetch.kick(c.chunks[next])
	}
}

func (c *Controller) failLocked(err error) {
	c.session.State = models.StateError
	c.lastErr = err
}

// autoIndex resolves an interactive turn per the session's auto strategy
func (c *Controller) autoIndex(turn *models.Turn) int {
	switch c.session.Strategy {
	case models.StrategyLast:
		return turn.OptionCount() - 1
	case models.StrategyCorrect:
		if turn.Kind == models.TurnQuiz {
			return turn.CorrectIndex
		}
		return 0
	}
	return 0
}
