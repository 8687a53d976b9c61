package extraction

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jobradar/jobradar/internal/corpus"
)

// Occurrence is one extracted skill mention in one job description.
type Occurrence struct {
	JobID      string  `json:"job_id"`
	Skill      string  `json:"skill_name"`
	Category   string  `json:"skill_category"`
	Confidence float64 `json:"confidence_score"`
	Position   int     `json:"position_in_description"`
	Method     string  `json:"extraction_method"`
}

// BatchResult is the outcome of one extraction pass over a corpus.
type BatchResult struct {
	RunID       string
	Occurrences []Occurrence
	Jobs        int
	SkippedJobs int // rows with no description, recorded but non-fatal
}

const batchConcurrency = 4

// ExtractAll runs hybrid extraction over every job in the corpus with
// bounded concurrency. Jobs with an empty description are skipped and
// counted. Output order is deterministic: corpus order, then position,
// then skill name within a job.
func (e *Extractor) ExtractAll(ctx context.Context, c *corpus.Corpus) (*BatchResult, error) {
	jobs := c.Jobs()
	perJob := make([][]Occurrence, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, job := range jobs {
		i, job := i, job
		if job.Description == "" {
			continue
		}
		g.Go(func() error {
			matches, err := e.Extract(gCtx, job.Description, MethodHybrid)
			if err != nil {
				return err
			}
			occs := make([]Occurrence, 0, len(matches))
			for skill, m := range matches {
				occs = append(occs, Occurrence{
					JobID:      job.ID,
					Skill:      skill,
					Category:   e.Category(skill),
					Confidence: m.Confidence,
					Position:   m.Position,
					Method:     m.Method,
				})
			}
			sort.Slice(occs, func(a, b int) bool {
				if occs[a].Position != occs[b].Position {
					return occs[a].Position < occs[b].Position
				}
				return occs[a].Skill < occs[b].Skill
			})
			perJob[i] = occs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{RunID: uuid.New().String(), Jobs: len(jobs)}
	for i, job := range jobs {
		if job.Description == "" {
			result.SkippedJobs++
			continue
		}
		result.Occurrences = append(result.Occurrences, perJob[i]...)
	}

	slog.Info("extraction pass complete",
		"run_id", result.RunID,
		"jobs", result.Jobs,
		"skipped", result.SkippedJobs,
		"occurrences", len(result.Occurrences),
	)
	return result, nil
}
