// Package embed computes and holds dense vector representations of job
// descriptions and query texts. The embedding backend is injected through
// the TextEmbedder interface so extraction and scoring never depend on a
// concrete model client.
package embed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrUnavailable reports that no embedding capability is configured or
// reachable. Callers degrade (regex-only extraction, skill-only scoring)
// rather than failing the whole operation.
var ErrUnavailable = errors.New("embedding capability unavailable")

// TextEmbedder maps a text to a fixed-size dense vector.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Batcher embeds multiple texts with bounded concurrency.
type Batcher struct {
	embedder TextEmbedder
}

// NewBatcher creates a Batcher over the given embedder.
func NewBatcher(e TextEmbedder) *Batcher {
	return &Batcher{embedder: e}
}

// Embed returns the embedding vector for a single text.
func (b *Batcher) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := b.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	return vec, nil
}

// EmbedBatch returns embedding vectors for multiple texts, in input order.
// Returns nil (not error) for empty/nil input.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound concurrency to avoid overwhelming the backend.

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := b.embedder.Embed(gCtx, text)
			if err != nil {
				return fmt.Errorf("embedding text %d: %w", i, err)
			}
			results[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
