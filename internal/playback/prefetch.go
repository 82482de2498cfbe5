// ABOUTME: Single-flight background generation of upcoming chunk scripts
// ABOUTME: At most one generation per ordinal; results land only via the engine's cache
package playback

import (
	"context"
	"log"
	"sync"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/script"
)

// flight is one in-progress or completed generation
type flight struct {
	done   chan struct{}
	script *models.ChunkScript
	err    error
}

// prefetcher runs chunk script generation ahead of playback. Generations are
// strictly sequential per session: a new flight starts only after the
// previous chunk's flight finished, so the shared narrative context is never
// touched by two generations at once.
type prefetcher struct {
	engine      *script.Engine
	fingerprint string
	nctx        *models.NarrativeContext

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	flights map[int]*flight
}

func newPrefetcher(engine *script.Engine, fingerprint string, nctx *models.NarrativeContext) *prefetcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &prefetcher{
		engine:      engine,
		fingerprint: fingerprint,
		nctx:        nctx,
		ctx:         ctx,
		cancel:      cancel,
		flights:     make(map[int]*flight),
	}
}

// ensure returns the flight for a chunk, starting one if none exists
func (p *prefetcher) ensure(chunk models.Chunk) *flight {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.flights[chunk.Ordinal]; ok {
		return f
	}

	f := &flight{done: make(chan struct{})}
	p.flights[chunk.Ordinal] = f

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(f.done)
		f.script, f.err = p.engine.GenerateScript(p.ctx, p.fingerprint, chunk, p.nctx, false)
		if f.err != nil {
			log.Printf("[Playback] prefetch for chunk %d failed: %v", chunk.Ordinal, f.err)
		}
	}()
	return f
}

// kick starts generating a chunk's script in the background
func (p *prefetcher) kick(chunk models.Chunk) {
	p.ensure(chunk)
}

// await blocks until the chunk's script is ready, starting the generation
// if nothing is in flight. The caller's context bounds the wait only; the
// generation itself runs on the prefetcher's lifetime context.
func (p *prefetcher) await(ctx context.Context, chunk models.Chunk) (*models.ChunkScript, error) {
	f := p.ensure(chunk)
	select {
	case <-f.done:
		return f.script, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// close cancels pending generations and waits for their goroutines to exit
func (p *prefetcher) close() {
	p.cancel()
	p.wg.Wait()
}
