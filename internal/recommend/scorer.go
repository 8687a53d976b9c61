// Package recommend scores and ranks job postings against a candidate
// profile, combining literal skill overlap with embedding similarity.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/embed"
)

// DefaultMinSkillMatch is the minimum skill-match ratio below which a
// job's skill score is forced to zero.
const DefaultMinSkillMatch = 0.3

// Weights control the combination of the per-job score terms. The
// location term is a placeholder: it exists so callers can configure it
// once a location matcher is defined, but no such matcher exists yet and
// a nonzero location weight is rejected at validation.
type Weights struct {
	Skill    float64
	Semantic float64
	Location float64
}

// DefaultWeights favors explicit skill overlap over semantic similarity.
func DefaultWeights() Weights {
	return Weights{Skill: 0.6, Semantic: 0.4, Location: 0}
}

// Validate rejects weight sets the scorer cannot honor.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Semantic < 0 || w.Location < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if w.Skill+w.Semantic+w.Location == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	if w.Location != 0 {
		return fmt.Errorf("location weighting is not implemented; location weight must be 0")
	}
	return nil
}

// Scorer computes per-job score terms over one corpus load. It holds the
// read-only corpus and the write-once embedding index; no locking is
// needed.
type Scorer struct {
	corpus   *corpus.Corpus
	index    *embed.Index
	embedder embed.TextEmbedder
	weights  Weights
}

// NewScorer builds a Scorer. index and embedder may both be nil, in which
// case the semantic term is zero and its weight is reallocated to the
// skill term (ranking stays total instead of refusing).
func NewScorer(c *corpus.Corpus, idx *embed.Index, embedder embed.TextEmbedder, w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{corpus: c, index: idx, embedder: embedder, weights: w}, nil
}

// SemanticAvailable reports whether the semantic term can be computed.
func (s *Scorer) SemanticAvailable() bool {
	return s.embedder != nil && s.index != nil
}

// SkillScores returns one skill-match score per job, in corpus order.
// A job's score is the fraction of the candidate's skills found as
// case-insensitive literal substrings of its description; fractions below
// minSkillMatch are forced to zero. A candidate with no declared skills
// scores zero everywhere.
func (s *Scorer) SkillScores(skills []string, minSkillMatch float64) []float64 {
	jobs := s.corpus.Jobs()
	scores := make([]float64, len(jobs))
	if len(skills) == 0 {
		return scores
	}

	lowered := make([]string, len(skills))
	for i, sk := range skills {
		lowered[i] = strings.ToLower(sk)
	}

	for i, job := range jobs {
		desc := strings.ToLower(job.Description)
		matched := 0
		for _, sk := range lowered {
			if sk != "" && strings.Contains(desc, sk) {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(skills))
		if ratio < minSkillMatch {
			continue // insufficient overlap does not count
		}
		scores[i] = ratio
	}
	return scores
}

// SemanticScores returns one semantic similarity score per job, in corpus
// order: the cosine similarity between the candidate query embedding and
// each precomputed job embedding, remapped from [-1,1] to [0,1].
func (s *Scorer) SemanticScores(ctx context.Context, queryText string) ([]float64, error) {
	jobs := s.corpus.Jobs()
	scores := make([]float64, len(jobs))
	if !s.SemanticAvailable() {
		return scores, embed.ErrUnavailable
	}

	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding candidate profile: %w", err)
	}

	for i, job := range jobs {
		vec, ok := s.index.Vector(job.ID)
		if !ok {
			continue // job missing from the index scores zero
		}
		scores[i] = (embed.Cosine(queryVec, vec) + 1) / 2
	}
	return scores, nil
}

// Combine max-normalizes the skill scores (the best skill match in this
// query becomes exactly 1.0; skipped when all are zero) and returns the
// weighted sum per job. When semantic is false, the semantic weight is
// reallocated to the skill term.
func (s *Scorer) Combine(skillScores, semanticScores []float64, semantic bool) []float64 {
	var maxSkill float64
	for _, v := range skillScores {
		if v > maxSkill {
			maxSkill = v
		}
	}

	skillWeight := s.weights.Skill
	semanticWeight := s.weights.Semantic
	if !semantic {
		skillWeight += semanticWeight
		semanticWeight = 0
	}

	combined := make([]float64, len(skillScores))
	for i := range combined {
		norm := skillScores[i]
		if maxSkill > 0 {
			norm = skillScores[i] / maxSkill
		}
		combined[i] = skillWeight*norm + semanticWeight*semanticScores[i]
	}
	return combined
}
