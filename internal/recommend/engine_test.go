package recommend

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/embed"
	"github.com/jobradar/jobradar/internal/profile"
)

// fixedEmbedder returns a preset vector for the query and errors
// otherwise, so tests control similarity exactly.
type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, nil
}

func testCorpus(jobs ...corpus.Job) *corpus.Corpus {
	return corpus.FromJobs(jobs)
}

func testIndex(vectors map[string][]float32, order ...string) *embed.Index {
	return embed.NewIndex(order, vectors)
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	if err := (Weights{Skill: -0.1, Semantic: 0.5}).Validate(); err == nil {
		t.Fatal("negative weight accepted")
	}
	if err := (Weights{}).Validate(); err == nil {
		t.Fatal("all-zero weights accepted")
	}
	if err := (Weights{Skill: 0.5, Semantic: 0.3, Location: 0.2}).Validate(); err == nil {
		t.Fatal("nonzero location weight accepted without a location matcher")
	}
}

func TestSkillScoresFullMatch(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "We need Python and SQL experience."})
	s, err := NewScorer(c, nil, nil, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	scores := s.SkillScores([]string{"python", "sql"}, DefaultMinSkillMatch)
	if scores[0] != 1.0 {
		t.Fatalf("2/2 matched skills: score = %v, want 1.0", scores[0])
	}
}

func TestSkillScoresBelowThresholdZeroed(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "Python only."})
	s, err := NewScorer(c, nil, nil, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	// 1 of 5 skills matches: 0.2 < 0.3, so the score collapses to zero.
	scores := s.SkillScores([]string{"python", "go", "rust", "scala", "kotlin"}, DefaultMinSkillMatch)
	if scores[0] != 0 {
		t.Fatalf("ratio below threshold: score = %v, want 0", scores[0])
	}
}

func TestSkillScoresThresholdInclusive(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "python and docker here"})
	s, err := NewScorer(c, nil, nil, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	// 3 of 10 matches exactly the 0.3 threshold and must survive.
	skills := []string{"python", "docker", "here", "a1", "b2", "c3", "d4", "e5", "f6", "g7"}
	scores := s.SkillScores(skills, DefaultMinSkillMatch)
	if scores[0] != 0.3 {
		t.Fatalf("ratio at threshold: score = %v, want 0.3", scores[0])
	}
}

func TestSkillScoresNoDeclaredSkills(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "anything"})
	s, err := NewScorer(c, nil, nil, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	scores := s.SkillScores(nil, DefaultMinSkillMatch)
	if scores[0] != 0 {
		t.Fatalf("no skills: score = %v, want 0", scores[0])
	}
}

func TestSemanticScoresRange(t *testing.T) {
	c := testCorpus(
		corpus.Job{ID: "same", Description: "x"},
		corpus.Job{ID: "opposite", Description: "y"},
	)
	idx := testIndex(map[string][]float32{
		"same":     {1, 0},
		"opposite": {-1, 0},
	}, "same", "opposite")
	s, err := NewScorer(c, idx, &fixedEmbedder{vec: []float32{1, 0}}, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	scores, err := s.SemanticScores(context.Background(), "query")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(scores[0]-1.0) > 1e-9 {
		t.Errorf("identical vectors: score = %v, want 1.0", scores[0])
	}
	if math.Abs(scores[1]) > 1e-9 {
		t.Errorf("opposite vectors: score = %v, want 0", scores[1])
	}
}

func TestCombineMaxNormalization(t *testing.T) {
	c := testCorpus(
		corpus.Job{ID: "a", Description: ""},
		corpus.Job{ID: "b", Description: ""},
	)
	s, err := NewScorer(c, nil, nil, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	combined := s.Combine([]float64{0.5, 0.25}, []float64{0, 0}, false)
	// Best skill score normalizes to 1.0 and carries the full weight.
	if math.Abs(combined[0]-1.0) > 1e-9 {
		t.Errorf("best job combined = %v, want 1.0", combined[0])
	}
	if math.Abs(combined[1]-0.5) > 1e-9 {
		t.Errorf("half-as-good job combined = %v, want 0.5", combined[1])
	}
}

func TestCombineAllZeroSkillsSkipsNormalization(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "a", Description: ""})
	s, err := NewScorer(c, nil, nil, DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	combined := s.Combine([]float64{0}, []float64{0.8}, true)
	want := 0.4 * 0.8
	if math.Abs(combined[0]-want) > 1e-9 {
		t.Errorf("combined = %v, want %v", combined[0], want)
	}
}

func TestRankTopKAndOrder(t *testing.T) {
	var jobs []corpus.Job
	for i := 0; i < 10; i++ {
		desc := "nothing relevant"
		if i < 5 {
			desc = "go developer role"
		}
		jobs = append(jobs, corpus.Job{ID: fmt.Sprintf("j%d", i), Title: fmt.Sprintf("Job %d", i), Description: desc})
	}
	e, err := NewEngine(testCorpus(jobs...), nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}

	recs, err := e.Rank(context.Background(), profile.Candidate{Skills: []string{"go"}}, Options{TopK: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(recs))
	}
	// All five matching jobs tie; corpus order breaks the tie.
	for i, want := range []string{"j0", "j1", "j2"} {
		if recs[i].JobID != want {
			t.Errorf("recs[%d].JobID = %s, want %s", i, recs[i].JobID, want)
		}
	}
}

func TestRankNoiseFloorExclusive(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "x"})
	idx := testIndex(map[string][]float32{"j1": {1, 0}}, "j1")

	// cosine -0.6 maps to semantic 0.2; with weights 0.6/0.4 and zero
	// skill score the combined score is exactly 0.08 < 0.1: excluded.
	e, err := NewEngine(c, idx, &fixedEmbedder{vec: []float32{-0.6, -0.8}}, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := e.Rank(context.Background(), profile.Candidate{Experience: "unrelated"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("score below noise floor recommended: %+v", recs)
	}

	// Exactly at the floor is still excluded: the cutoff is strict.
	// Orthogonal vectors give semantic 0.5 exactly; 0.2 * 0.5 == 0.1.
	e2, err := NewEngine(c, idx, &fixedEmbedder{vec: []float32{0, 1}}, Weights{Skill: 0.8, Semantic: 0.2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	recs2, err := e2.Rank(context.Background(), profile.Candidate{Experience: "unrelated"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs2) != 0 {
		t.Fatalf("score at noise floor recommended: %+v", recs2)
	}
}

func TestRankWithoutSemanticReallocatesWeight(t *testing.T) {
	c := testCorpus(
		corpus.Job{ID: "j1", Description: "python role"},
		corpus.Job{ID: "j2", Description: "nothing"},
	)
	e, err := NewEngine(c, nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := e.Rank(context.Background(), profile.Candidate{Skills: []string{"python"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	// Full semantic weight moves to the skill term: 1.0 combined.
	if math.Abs(recs[0].Combined-1.0) > 1e-9 {
		t.Errorf("combined = %v, want 1.0", recs[0].Combined)
	}
	if recs[0].SemanticScore != 0 {
		t.Errorf("semantic score = %v, want 0", recs[0].SemanticScore)
	}
}

func TestRankExplicitZeroMinSkillMatch(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "python only"})
	e, err := NewEngine(c, nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	cand := profile.Candidate{Skills: []string{"python", "go", "rust", "scala", "kotlin"}}

	// 1 of 5 skills matches: 0.2 is under the 0.3 default, so the job is
	// dropped when no threshold is given.
	recs, err := e.Rank(context.Background(), cand, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("default threshold kept sub-threshold match: %+v", recs)
	}

	// An explicit zero disables the cutoff: any overlap counts.
	zero := 0.0
	recs, err = e.Rank(context.Background(), cand, Options{MinSkillMatch: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].JobID != "j1" {
		t.Fatalf("zero threshold: got %+v, want j1", recs)
	}
}

// errorEmbedder fails every call with a non-availability error, as an
// embedding server that is up but returning 500s would.
type errorEmbedder struct{}

func (errorEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embed request failed: status 500")
}

func TestRankDegradesOnEmbedError(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Description: "python role"})
	idx := testIndex(map[string][]float32{"j1": {1, 0}}, "j1")
	e, err := NewEngine(c, idx, errorEmbedder{}, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}

	recs, err := e.Rank(context.Background(), profile.Candidate{Skills: []string{"python"}}, Options{})
	if err != nil {
		t.Fatalf("embed failure should degrade, not abort: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	// Skill-only ranking: the semantic weight is reallocated.
	if math.Abs(recs[0].Combined-1.0) > 1e-9 {
		t.Errorf("combined = %v, want 1.0", recs[0].Combined)
	}
	if recs[0].SemanticScore != 0 {
		t.Errorf("semantic score = %v, want 0", recs[0].SemanticScore)
	}
}

func TestRankIdempotent(t *testing.T) {
	c := testCorpus(
		corpus.Job{ID: "j1", Description: "go and sql"},
		corpus.Job{ID: "j2", Description: "go only"},
	)
	e, err := NewEngine(c, nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	cand := profile.Candidate{Skills: []string{"go", "sql"}}

	first, err := e.Rank(context.Background(), cand, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Rank(context.Background(), cand, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("rank sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("rank %d differs between identical queries: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankBatchConcatenatesInInputOrder(t *testing.T) {
	c := testCorpus(
		corpus.Job{ID: "j1", Description: "go role"},
		corpus.Job{ID: "j2", Description: "python role"},
	)
	e, err := NewEngine(c, nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := e.RankBatch(context.Background(), []profile.Candidate{
		{Name: "bob", Skills: []string{"python"}},
		{Name: "alice", Skills: []string{"go"}},
		{Name: "carol", Skills: []string{"cobol"}},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(out), out)
	}
	// Rows follow candidate input order, not name order; carol's empty
	// result contributes nothing.
	if out[0].Candidate != "bob" || out[0].JobID != "j2" {
		t.Errorf("row 0 = %+v, want bob/j2", out[0])
	}
	if out[1].Candidate != "alice" || out[1].JobID != "j1" {
		t.Errorf("row 1 = %+v, want alice/j1", out[1])
	}
}

func TestRankBatchKeepsCandidatesSharingAName(t *testing.T) {
	c := testCorpus(
		corpus.Job{ID: "j1", Description: "go role"},
		corpus.Job{ID: "j2", Description: "python role"},
	)
	e, err := NewEngine(c, nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := e.RankBatch(context.Background(), []profile.Candidate{
		{Name: "alex", Skills: []string{"go"}},
		{Name: "alex", Skills: []string{"python"}},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Two distinct candidates with the same name each keep their rows.
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(out), out)
	}
	if out[0].JobID != "j1" || out[1].JobID != "j2" {
		t.Errorf("rows = %+v, want j1 then j2", out)
	}
	for i, rec := range out {
		if rec.Candidate != "alex" {
			t.Errorf("row %d candidate = %q, want alex", i, rec.Candidate)
		}
	}
}

func TestDetails(t *testing.T) {
	c := testCorpus(corpus.Job{ID: "j1", Title: "Engineer"})
	e, err := NewEngine(c, nil, nil, DefaultWeights(), nil)
	if err != nil {
		t.Fatal(err)
	}
	job, err := e.Details("j1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Title != "Engineer" {
		t.Errorf("Title = %q", job.Title)
	}
	if _, err := e.Details("missing"); err == nil {
		t.Fatal("missing job returned no error")
	}
}
