package embed

import (
	"context"
	"fmt"

	"github.com/jobradar/jobradar/internal/corpus"
)

// Index holds exactly one embedding vector per job in a corpus load.
// It is built once per load and read-only afterward; every query against
// the same load reuses the same vectors.
type Index struct {
	jobIDs  []string
	vectors map[string][]float32
}

// Build embeds every job description and returns the populated index.
// Missing descriptions embed as the empty string, which is still a valid
// input to the model; they are never skipped, so the index stays aligned
// with the corpus.
func Build(ctx context.Context, b *Batcher, c *corpus.Corpus) (*Index, error) {
	jobs := c.Jobs()
	texts := make([]string, len(jobs))
	for i, j := range jobs {
		texts[i] = j.Description
	}

	vecs, err := b.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding corpus: %w", err)
	}

	idx := &Index{
		jobIDs:  make([]string, len(jobs)),
		vectors: make(map[string][]float32, len(jobs)),
	}
	for i, j := range jobs {
		idx.jobIDs[i] = j.ID
		idx.vectors[j.ID] = vecs[i]
	}
	return idx, nil
}

// NewIndex builds an Index from already-computed vectors, in the given
// job order. Used when reloading persisted vectors.
func NewIndex(jobIDs []string, vectors map[string][]float32) *Index {
	ids := make([]string, len(jobIDs))
	copy(ids, jobIDs)
	return &Index{jobIDs: ids, vectors: vectors}
}

// Vector returns the embedding for a job id and whether it exists.
func (idx *Index) Vector(jobID string) ([]float32, bool) {
	v, ok := idx.vectors[jobID]
	return v, ok
}

// JobIDs returns the indexed job ids in corpus order.
func (idx *Index) JobIDs() []string {
	return idx.jobIDs
}

// Len returns the number of indexed jobs.
func (idx *Index) Len() int {
	return len(idx.jobIDs)
}

// Covers reports whether the index holds a vector for every job in the
// corpus. A stale persisted index fails this check and must be rebuilt.
func (idx *Index) Covers(c *corpus.Corpus) bool {
	if idx.Len() != c.Len() {
		return false
	}
	for _, j := range c.Jobs() {
		if _, ok := idx.vectors[j.ID]; !ok {
			return false
		}
	}
	return true
}
