package ollama

import (
	"context"
	"fmt"

	"github.com/jobradar/jobradar/internal/embed"
)

// Embedder binds a Client to one embedding model and satisfies
// embed.TextEmbedder. When the server is unreachable it reports
// embed.ErrUnavailable so callers can degrade instead of failing.
type Embedder struct {
	client *Client
	model  string
}

// NewEmbedder wraps a client with a fixed embedding model.
func NewEmbedder(c *Client, model string) *Embedder {
	return &Embedder{client: c, model: model}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed produces the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.Embed(ctx, e.model, text)
	if err != nil {
		if !e.client.IsRunning(ctx) {
			return nil, fmt.Errorf("ollama unreachable: %w", embed.ErrUnavailable)
		}
		return nil, err
	}
	return vec, nil
}
