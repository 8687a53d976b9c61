// Package extraction turns free-text job descriptions into normalized
// skill occurrences using a hybrid of deterministic pattern matching and
// embedding similarity.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/jobradar/jobradar/internal/embed"
	"github.com/jobradar/jobradar/internal/taxonomy"
)

// Extraction method tags carried on every occurrence.
const (
	MethodRegex    = "regex"
	MethodSemantic = "semantic"
	MethodHybrid   = "hybrid"
)

// DefaultSemanticThreshold is the minimum cosine similarity for a
// skill/segment pair to count as a semantic hit.
const DefaultSemanticThreshold = 0.5

// Segments shorter than this (after trimming) carry too little context
// for meaningful similarity and are discarded.
const minSegmentLength = 20

// Match is one extracted skill hit within a single text.
// Position is the index of the first character of the match in the
// lower-cased text, or -1 when unknown (a semantic hit whose skill name
// is not a literal substring).
type Match struct {
	Confidence float64
	Position   int
	Method     string
}

type compiledSkill struct {
	name     string
	category string
	patterns []*regexp.Regexp
}

// Extractor applies a skill catalog to free text. It is safe for
// concurrent use after New (and Prepare, if the semantic path is wanted).
type Extractor struct {
	skills    []compiledSkill
	threshold float64

	embedder embed.TextEmbedder

	// Skill-name embeddings, aligned with skills. Computed once by
	// Prepare; nil until then or when no embedder is configured.
	mu        sync.RWMutex
	skillVecs [][]float32
}

// New compiles the catalog's patterns into an Extractor. embedder may be
// nil, in which case extraction is regex-only and Extract degrades
// silently for hybrid requests.
func New(p taxonomy.Provider, embedder embed.TextEmbedder) (*Extractor, error) {
	defs := p.Skills()
	e := &Extractor{
		skills:    make([]compiledSkill, 0, len(defs)),
		threshold: DefaultSemanticThreshold,
		embedder:  embedder,
	}

	for _, d := range defs {
		cs := compiledSkill{name: d.Name, category: d.Category, patterns: make([]*regexp.Regexp, 0, len(d.Patterns))}
		if cs.category == "" {
			cs.category = taxonomy.DefaultCategory
		}
		for _, pat := range d.Patterns {
			re, err := regexp.Compile(`(?i)\b(?:` + pat + `)\b`)
			if err != nil {
				return nil, fmt.Errorf("skill %s: compiling pattern %q: %w", d.Name, pat, err)
			}
			cs.patterns = append(cs.patterns, re)
		}
		e.skills = append(e.skills, cs)
	}

	return e, nil
}

// SetSemanticThreshold overrides the semantic similarity cutoff.
// Values outside (0, 1] are ignored.
func (e *Extractor) SetSemanticThreshold(t float64) {
	if t > 0 && t <= 1 {
		e.threshold = t
	}
}

// Prepare precomputes one embedding per skill name for the semantic path.
// Without a configured embedder it is a no-op returning ErrUnavailable;
// callers typically log the reduced-functionality condition and continue.
func (e *Extractor) Prepare(ctx context.Context) error {
	if e.embedder == nil {
		return embed.ErrUnavailable
	}

	names := make([]string, len(e.skills))
	for i, s := range e.skills {
		names[i] = s.name
	}

	vecs, err := embed.NewBatcher(e.embedder).EmbedBatch(ctx, names)
	if err != nil {
		return fmt.Errorf("embedding skill names: %w", err)
	}

	e.mu.Lock()
	e.skillVecs = vecs
	e.mu.Unlock()
	return nil
}

// SemanticReady reports whether the semantic path is usable.
func (e *Extractor) SemanticReady() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.embedder != nil && e.skillVecs != nil
}

// Category returns the category for an extracted skill name.
func (e *Extractor) Category(name string) string {
	for _, s := range e.skills {
		if s.name == name {
			return s.category
		}
	}
	return taxonomy.DefaultCategory
}

// ExtractRegex finds skills by surface-pattern matching. For each skill,
// patterns are tried in authored order and the first match wins: the
// skill is recorded with confidence exactly 1.0 and the position of the
// first match, then remaining patterns for that skill are skipped.
func (e *Extractor) ExtractRegex(text string) map[string]Match {
	found := make(map[string]Match)
	if text == "" {
		return found
	}

	lower := strings.ToLower(text)
	for _, s := range e.skills {
		for _, re := range s.patterns {
			loc := re.FindStringIndex(lower)
			if loc == nil {
				continue
			}
			found[s.name] = Match{Confidence: 1.0, Position: loc[0], Method: MethodRegex}
			break
		}
	}
	return found
}

// ExtractSemantic finds skills by embedding similarity. The text is split
// into sentence-like segments on ., ! and ?; segments under 20 characters
// are discarded; each remaining segment is embedded and compared against
// every skill-name embedding. Hits above the threshold are kept, highest
// similarity per skill. Position is the first literal occurrence of the
// skill name in the lower-cased text, or -1 when the segment matched on
// meaning rather than wording.
func (e *Extractor) ExtractSemantic(ctx context.Context, text string) (map[string]Match, error) {
	found := make(map[string]Match)
	if text == "" {
		return found, nil
	}

	e.mu.RLock()
	vecs := e.skillVecs
	e.mu.RUnlock()
	if e.embedder == nil || vecs == nil {
		return found, embed.ErrUnavailable
	}

	lower := strings.ToLower(text)
	for _, segment := range splitSegments(text) {
		segVec, err := e.embedder.Embed(ctx, segment)
		if err != nil {
			return nil, fmt.Errorf("embedding segment: %w", err)
		}

		for i, s := range e.skills {
			sim := embed.Cosine(segVec, vecs[i])
			if sim <= e.threshold {
				continue
			}
			if prev, ok := found[s.name]; ok && prev.Confidence >= sim {
				continue
			}
			found[s.name] = Match{
				Confidence: sim,
				Position:   strings.Index(lower, s.name),
				Method:     MethodSemantic,
			}
		}
	}
	return found, nil
}

var segmentSplit = regexp.MustCompile(`[.!?]+`)

// splitSegments applies the coarse sentence segmentation: split on .!?
// with no handling of abbreviations or decimals (accepted approximation),
// then drop short fragments.
func splitSegments(text string) []string {
	parts := segmentSplit.Split(text, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(strings.TrimSpace(p)) < minSegmentLength {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}

// Extract runs the requested extraction method. MethodHybrid (the
// default for an empty method string) runs regex first, then fills gaps
// with semantic hits: a skill already found by regex is never
// overwritten. A hybrid request never fails on the semantic side: when
// that path is unavailable or errors, the regex results are returned
// with a warning.
func (e *Extractor) Extract(ctx context.Context, text, method string) (map[string]Match, error) {
	if method == "" {
		method = MethodHybrid
	}
	if text == "" {
		return map[string]Match{}, nil
	}

	switch method {
	case MethodRegex:
		return e.ExtractRegex(text), nil

	case MethodSemantic:
		return e.ExtractSemantic(ctx, text)

	case MethodHybrid:
		found := e.ExtractRegex(text)
		semantic, err := e.ExtractSemantic(ctx, text)
		if err != nil {
			if errors.Is(err, embed.ErrUnavailable) {
				warnSemanticUnavailable()
			} else {
				slog.Warn("semantic extraction failed, using regex results", "error", err)
			}
			return found, nil
		}
		for name, m := range semantic {
			if _, ok := found[name]; ok {
				continue // regex has unconditional precedence
			}
			found[name] = m
		}
		return found, nil

	default:
		return nil, fmt.Errorf("unknown extraction method %q", method)
	}
}

var warnOnce sync.Once

func warnSemanticUnavailable() {
	warnOnce.Do(func() {
		slog.Warn("semantic extraction unavailable, using regex only")
	})
}
