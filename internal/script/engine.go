// ABOUTME: Engine turns one document chunk into a validated, cached turn script
// ABOUTME: Corrective retry loop around a black-box generative backend
package script

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harper/paperplay/internal/llm"
	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/storage/sqlite"
	"github.com/harper/paperplay/internal/util"
)

// DefaultAttempts is the total attempt count per chunk: one initial request
// plus two corrective retries.
const DefaultAttempts = 3

// Engine generates playable scripts chunk by chunk. The backend is a black
// box behind llm.Generator; everything it returns passes through ParseTurns
// before any caller sees it. A nil store disables caching.
type Engine struct {
	generator llm.Generator
	store     *sqlite.ScriptStore
	attempts  int
	retry     util.Retrier
}

// NewEngine creates a script engine. attempts < 1 falls back to DefaultAttempts.
func NewEngine(generator llm.Generator, store *sqlite.ScriptStore, attempts int) *Engine {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	return &Engine{
		generator: generator,
		store:     store,
		attempts:  attempts,
		// Corrective retries re-prompt immediately; transport backoff lives
		// in the generator itself.
		retry: util.Retrier{MaxRetries: attempts - 1},
	}
}

// GenerateScript produces the turn script for one chunk. A cached
// status=generated script short-circuits without a backend call unless force
// is set; force replaces the cached row wholesale. The narrative context
// advances whenever a generated script is returned, cached or fresh; on
// failure it is left untouched and a failed row is cached for diagnosis.
func (e *Engine) GenerateScript(ctx context.Context, fingerprint string, chunk models.Chunk, nctx *models.NarrativeContext, force bool) (*models.ChunkScript, error) {
	if !force && e.store != nil {
		cached, err := e.store.Load(fingerprint, chunk.Ordinal)
		if err != nil {
			return nil, fmt.Errorf("loading cached script: %w", err)
		}
		if cached != nil && cached.Status == models.ScriptGenerated {
			if nctx != nil {
				nctx.AdvanceAfter(chunk, cached)
			}
			return cached, nil
		}
	}

	userPrompt := buildUserPrompt(chunk, nctx)

	var (
		generated *models.ChunkScript
		lastRaw   string
		lastErr   error
		failure   string
	)

	genErr := e.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		prompt := userPrompt
		if failure != "" {
			prompt = buildRetryPrompt(userPrompt, failure)
		}

		raw, err := e.generator.GenerateText(ctx, systemPrompt, prompt)
		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
			log.Printf("[Script] chunk %d attempt %d: backend error: %v", chunk.Ordinal, attempt, err)
			return err
		}

		turns, err := ParseTurns(raw)
		if err != nil {
			lastRaw = raw
			lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
			failure = err.Error()
			log.Printf("[Script] chunk %d attempt %d: invalid script: %v", chunk.Ordinal, attempt, err)
			return err
		}

		generated = &models.ChunkScript{
			DocumentFingerprint: fingerprint,
			ChunkOrdinal:        chunk.Ordinal,
			Status:              models.ScriptGenerated,
			Turns:               turns,
			Model:               e.generator.Name(),
			Attempts:            attempt,
			GeneratedAt:         time.Now().UTC(),
		}
		return nil
	})
	if genErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		failed := &models.ChunkScript{
			DocumentFingerprint: fingerprint,
			ChunkOrdinal:        chunk.Ordinal,
			Status:              models.ScriptFailed,
			Model:               e.generator.Name(),
			Attempts:            e.attempts,
			GeneratedAt:         time.Now().UTC(),
		}
		if e.store != nil {
			if err := e.store.Save(failed); err != nil {
				log.Printf("[Script] caching failed script for chunk %d: %v", chunk.Ordinal, err)
			}
		}

		return nil, &GenerationError{
			ChunkOrdinal: chunk.Ordinal,
			Attempts:     e.attempts,
			LastResponse: lastRaw,
			Err:          lastErr,
		}
	}

	if e.store != nil {
		if err := e.store.Save(generated); err != nil {
			return nil, fmt.Errorf("caching script for chunk %d: %w", chunk.Ordinal, err)
		}
	}
	if nctx != nil {
		nctx.AdvanceAfter(chunk, generated)
	}
	return generated, nil
}
