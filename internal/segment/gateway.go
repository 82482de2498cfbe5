// ABOUTME: SegmentationGateway choosing between remote and local chunking strategies
// ABOUTME: Caches results per document fingerprint with retry, backoff, and fallback
package segment

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/storage/sqlite"
	"github.com/harper/paperplay/internal/util"
)

// GatewayConfig holds segmentation behavior settings
type GatewayConfig struct {
	RemoteEnabled bool
	WindowSize    int
	MaxRetries    int
	RetryDelay    time.Duration
}

// Gateway converts documents into ordered chunk sequences
type Gateway struct {
	remote *MinerUClient
	store  *sqlite.ChunkStore
	config GatewayConfig
	retry  util.Retrier
}

// NewGateway creates a segmentation gateway. A nil remote client means no
// OCR credential is configured and only the local strategy is available.
func NewGateway(remote *MinerUClient, store *sqlite.ChunkStore, config GatewayConfig) *Gateway {
	return &Gateway{
		remote: remote,
		store:  store,
		config: config,
		retry: util.Retrier{
			MaxRetries: config.MaxRetries,
			BaseDelay:  config.RetryDelay,
			Permanent:  IsPermanent,
		},
	}
}

// RemoteAvailable reports whether the remote strategy can be attempted
func (g *Gateway) RemoteAvailable() bool {
	return g.remote != nil && g.config.RemoteEnabled
}

// Segment returns the ordered chunk sequence for a document along with the
// strategy that produced it. A complete cache entry is served without
// re-invoking any strategy.
func (g *Gateway) Segment(ctx context.Context, doc *models.Document) ([]models.Chunk, models.ChunkSource, error) {
	cached, strategy, found, err := g.store.LoadChunks(doc.Fingerprint)
	if err != nil {
		return nil, "", err
	}
	if found {
		return cached, strategy, nil
	}

	// Extract the text layer up front so corrupt and empty documents fail
	// before any strategy runs
	text, err := ExtractText(doc)
	if err != nil {
		return nil, "", err
	}

	if g.RemoteAvailable() {
		chunks, remoteErr := g.segmentRemote(ctx, doc)
		if remoteErr == nil {
			if err := g.store.SaveChunks(doc.Fingerprint, doc.Name, models.SourceRemote, chunks); err != nil {
				return nil, "", err
			}
			log.Printf("[Segment] remote strategy produced %d chunks for %s", len(chunks), doc.Name)
			return chunks, models.SourceRemote, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		log.Printf("[Segment] remote strategy failed for %s, falling back to local: %v", doc.Name, remoteErr)
	}

	chunks := SplitWindows(text, g.config.WindowSize)
	if err := g.store.SaveChunks(doc.Fingerprint, doc.Name, models.SourceLocal, chunks); err != nil {
		return nil, "", err
	}
	log.Printf("[Segment] local strategy produced %d chunks for %s", len(chunks), doc.Name)
	return chunks, models.SourceLocal, nil
}

// segmentRemote runs the remote strategy under the gateway's retry policy.
// Transient failures retry with backoff; permanent failures return
// immediately so the caller can fall back without burning attempts.
func (g *Gateway) segmentRemote(ctx context.Context, doc *models.Document) ([]models.Chunk, error) {
	var chunks []models.Chunk

	err := g.retry.Do(ctx, func(ctx context.Context, _ int) error {
		markdown, err := g.remote.ExtractMarkdown(ctx, doc)
		if err != nil {
			return err
		}

		split := SplitSections(markdown, g.config.WindowSize)
		if len(split) == 0 {
			return fmt.Errorf("remote returned empty markdown")
		}
		chunks = split
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remote segmentation: %w", err)
	}
	return chunks, nil
}
