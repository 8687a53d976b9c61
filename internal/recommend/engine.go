package recommend

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/embed"
	"github.com/jobradar/jobradar/internal/profile"
)

// DefaultTopK bounds a recommendation list when the caller does not ask
// for a specific size.
const DefaultTopK = 10

// noiseFloor is the combined-score cutoff: only jobs scoring strictly
// above it are recommended.
const noiseFloor = 0.1

// Recommendation is one ranked job with its score breakdown.
type Recommendation struct {
	JobID         string  `json:"job_id"`
	Title         string  `json:"title"`
	Company       string  `json:"company"`
	Location      string  `json:"location"`
	Source        string  `json:"source,omitempty"`
	Candidate     string  `json:"candidate,omitempty"`
	SkillScore    float64 `json:"skill_match_score"`
	SemanticScore float64 `json:"semantic_similarity_score"`
	Combined      float64 `json:"combined_score"`
}

// Options tune a single ranking request. A nil MinSkillMatch means
// DefaultMinSkillMatch; an explicit zero disables the overlap cutoff so
// any matching skill counts.
type Options struct {
	TopK          int
	MinSkillMatch *float64
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MinSkillMatch == nil {
		v := DefaultMinSkillMatch
		o.MinSkillMatch = &v
	}
	return o
}

// Engine ranks a corpus of jobs for candidate profiles.
type Engine struct {
	corpus *corpus.Corpus
	scorer *Scorer
	logger *slog.Logger

	warnOnce sync.Once
}

// NewEngine builds an Engine over the given corpus. idx and embedder may
// be nil; ranking then falls back to skill matching alone.
func NewEngine(c *corpus.Corpus, idx *embed.Index, embedder embed.TextEmbedder, w Weights, logger *slog.Logger) (*Engine, error) {
	scorer, err := NewScorer(c, idx, embedder, w)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{corpus: c, scorer: scorer, logger: logger}, nil
}

// SemanticAvailable reports whether rankings include the semantic term.
func (e *Engine) SemanticAvailable() bool {
	return e.scorer.SemanticAvailable()
}

// Rank scores every job for the candidate and returns at most opts.TopK
// recommendations whose combined score exceeds the noise floor, best
// first. Ties keep the corpus load order.
func (e *Engine) Rank(ctx context.Context, cand profile.Candidate, opts Options) ([]Recommendation, error) {
	opts = opts.withDefaults()
	jobs := e.corpus.Jobs()

	skillScores := e.scorer.SkillScores(cand.Skills, *opts.MinSkillMatch)

	semantic := true
	semanticScores, err := e.scorer.SemanticScores(ctx, cand.QueryText())
	if err != nil {
		semantic = false
		if errors.Is(err, embed.ErrUnavailable) {
			e.warnOnce.Do(func() {
				e.logger.Warn("semantic scoring unavailable, ranking on skill match only")
			})
		} else {
			e.logger.Warn("semantic scoring failed, ranking on skill match only", "error", err)
		}
	}
	if semanticScores == nil {
		semanticScores = make([]float64, len(jobs))
	}

	combined := e.scorer.Combine(skillScores, semanticScores, semantic)

	recs := make([]Recommendation, 0, len(jobs))
	for i, job := range jobs {
		if combined[i] <= noiseFloor {
			continue
		}
		recs = append(recs, Recommendation{
			JobID:         job.ID,
			Title:         job.Title,
			Company:       job.Company,
			Location:      job.Location,
			Source:        job.Source,
			SkillScore:    skillScores[i],
			SemanticScore: semanticScores[i],
			Combined:      combined[i],
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Combined > recs[j].Combined
	})
	if len(recs) > opts.TopK {
		recs = recs[:opts.TopK]
	}
	return recs, nil
}

// RankBatch ranks each candidate independently and concatenates the
// results in candidate input order, tagging every recommendation with
// its candidate's name. Candidates may share a name; each still
// contributes its own rows.
func (e *Engine) RankBatch(ctx context.Context, candidates []profile.Candidate, opts Options) ([]Recommendation, error) {
	var out []Recommendation
	for _, cand := range candidates {
		recs, err := e.Rank(ctx, cand, opts)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			recs[i].Candidate = cand.Name
		}
		out = append(out, recs...)
	}
	return out, nil
}

// Details returns the full posting for one job.
func (e *Engine) Details(jobID string) (corpus.Job, error) {
	return e.corpus.Get(jobID)
}
