// Package api exposes the job recommendation service over HTTP and MCP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/extraction"
	"github.com/jobradar/jobradar/internal/profile"
	"github.com/jobradar/jobradar/internal/recommend"
	"github.com/jobradar/jobradar/internal/storage"
)

const maxRequestBodySize = 10 << 20 // 10MB

// Recommender abstracts the ranking engine so the server can swap it
// out when the corpus is reloaded.
type Recommender interface {
	Rank(ctx context.Context, cand profile.Candidate, opts recommend.Options) ([]recommend.Recommendation, error)
	RankBatch(ctx context.Context, candidates []profile.Candidate, opts recommend.Options) ([]recommend.Recommendation, error)
	Details(jobID string) (corpus.Job, error)
	SemanticAvailable() bool
}

// CorpusReloader re-reads the corpus source and rebuilds derived state.
type CorpusReloader interface {
	ReloadCorpus(ctx context.Context) (jobs int, err error)
}

type AppDeps struct {
	Store       *storage.Store
	Extractor   *extraction.Extractor
	Recommender Recommender
	Reloader    CorpusReloader // optional; if nil, POST /corpus/reload returns 503
	Token       string
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/extract", handleExtract(deps))
		r.Post("/recommendations", handleRecommendations(deps))
		r.Post("/recommendations/batch", handleRecommendationsBatch(deps))
		r.Get("/jobs", handleListJobs(deps))
		r.Get("/jobs/{id}", handleGetJob(deps))
		r.Get("/jobs/{id}/skills", handleJobSkills(deps))
		r.Post("/corpus/reload", handleCorpusReload(deps))
		r.Get("/stats", handleStats(deps))
	})

	return r
}

func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":   "ok",
			"semantic": deps.Recommender.SemanticAvailable(),
		})
	}
}

type ExtractRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
}

// ExtractedSkill is one skill found in a piece of text.
type ExtractedSkill struct {
	Skill      string  `json:"skill_name"`
	Category   string  `json:"skill_category"`
	Confidence float64 `json:"confidence_score"`
	Position   int     `json:"position"`
	Method     string  `json:"extraction_method"`
}

func handleExtract(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Text == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "text is required")
			return
		}
		if req.Method == "" {
			req.Method = extraction.MethodHybrid
		}

		matches, err := deps.Extractor.Extract(r.Context(), req.Text, req.Method)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "extraction failed: %v", err)
			return
		}

		skills := make([]ExtractedSkill, 0, len(matches))
		for name, m := range matches {
			skills = append(skills, ExtractedSkill{
				Skill:      name,
				Category:   deps.Extractor.Category(name),
				Confidence: m.Confidence,
				Position:   m.Position,
				Method:     m.Method,
			})
		}
		sort.Slice(skills, func(i, j int) bool {
			if skills[i].Position != skills[j].Position {
				return skills[i].Position < skills[j].Position
			}
			return skills[i].Skill < skills[j].Skill
		})

		writeJSON(w, map[string]any{
			"skills": skills,
			"count":  len(skills),
		})
	}
}

// RecommendRequest describes one candidate profile to rank. A missing
// min_skill_match falls back to the configured default; an explicit zero
// counts any skill overlap.
type RecommendRequest struct {
	Name          string   `json:"name"`
	Skills        []string `json:"skills"`
	Experience    string   `json:"experience"`
	Interests     string   `json:"interests"`
	TopK          int      `json:"top_k"`
	MinSkillMatch *float64 `json:"min_skill_match"`
}

func (req RecommendRequest) candidate() profile.Candidate {
	return profile.Candidate{
		Name:       req.Name,
		Skills:     req.Skills,
		Experience: req.Experience,
		Interests:  req.Interests,
	}
}

func handleRecommendations(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req RecommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Skills) == 0 && req.Experience == "" && req.Interests == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "candidate profile is empty: provide skills, experience, or interests")
			return
		}

		recs, err := deps.Recommender.Rank(r.Context(), req.candidate(), recommend.Options{
			TopK:          req.TopK,
			MinSkillMatch: req.MinSkillMatch,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "ranking failed: %v", err)
			return
		}

		if recs == nil {
			recs = []recommend.Recommendation{}
		}
		writeJSON(w, map[string]any{
			"recommendations": recs,
			"count":           len(recs),
		})
	}
}

type BatchRecommendRequest struct {
	Candidates    []RecommendRequest `json:"candidates"`
	TopK          int                `json:"top_k"`
	MinSkillMatch *float64           `json:"min_skill_match"`
}

func handleRecommendationsBatch(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req BatchRecommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if len(req.Candidates) == 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "candidates is required")
			return
		}
		for i, c := range req.Candidates {
			if c.Name == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "candidates[%d]: name is required", i)
				return
			}
		}

		candidates := make([]profile.Candidate, len(req.Candidates))
		for i, c := range req.Candidates {
			candidates[i] = c.candidate()
		}

		recs, err := deps.Recommender.RankBatch(r.Context(), candidates, recommend.Options{
			TopK:          req.TopK,
			MinSkillMatch: req.MinSkillMatch,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "batch ranking failed: %v", err)
			return
		}

		if recs == nil {
			recs = []recommend.Recommendation{}
		}
		writeJSON(w, map[string]any{
			"recommendations": recs,
			"count":           len(recs),
		})
	}
}

func handleListJobs(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		offset := parseIntParam(r, "offset", 0, 0)

		c, err := deps.Store.LoadCorpus()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list jobs: %v", err)
			return
		}

		jobs := c.Jobs()
		total := len(jobs)
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		page := jobs[offset:end]
		if page == nil {
			page = []corpus.Job{}
		}

		writeJSON(w, map[string]any{
			"jobs":  page,
			"total": total,
		})
	}
}

func handleGetJob(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		job, err := deps.Recommender.Details(id)
		if errors.Is(err, corpus.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get job: %v", err)
			return
		}

		writeJSON(w, job)
	}
}

func handleJobSkills(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if _, err := deps.Recommender.Details(id); errors.Is(err, corpus.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get job: %v", err)
			return
		}

		rows, err := deps.Store.ListOccurrences(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list skills: %v", err)
			return
		}
		if rows == nil {
			rows = []storage.OccurrenceRow{}
		}

		writeJSON(w, map[string]any{
			"job_id": id,
			"skills": rows,
		})
	}
}

func handleCorpusReload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Reloader == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "corpus reload is not available")
			return
		}

		jobs, err := deps.Reloader.ReloadCorpus(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "corpus reload failed: %v", err)
			return
		}

		writeJSON(w, map[string]any{
			"status": "reloaded",
			"jobs":   jobs,
		})
	}
}

func handleStats(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Store.GetStats()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get stats: %v", err)
			return
		}

		writeJSON(w, map[string]any{
			"jobs":        stats.Jobs,
			"occurrences": stats.Occurrences,
			"vectors":     stats.Vectors,
			"last_run_id": stats.LastRunID,
			"semantic":    deps.Recommender.SemanticAvailable(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
