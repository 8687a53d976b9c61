package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/extraction"
	"github.com/jobradar/jobradar/internal/recommend"
	"github.com/jobradar/jobradar/internal/storage"
	"github.com/jobradar/jobradar/internal/taxonomy"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.ReplaceJobs(corpus.FromJobs(testJobs())); err != nil {
		t.Fatalf("ReplaceJobs: %v", err)
	}

	extractor, err := extraction.New(taxonomy.Builtin(), nil)
	if err != nil {
		t.Fatal(err)
	}

	return MCPDeps{
		Store:       store,
		Extractor:   extractor,
		Recommender: newStubRecommender(t),
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: uri},
	}
}

func TestMCPRecommendJobs(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecommendJobs(deps)

	result, err := handler(context.Background(), makeCallToolRequest("recommend_jobs", map[string]interface{}{
		"skills": []string{"python", "sql"},
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}

	var recs []recommend.Recommendation
	if err := json.Unmarshal([]byte(toolText(t, result)), &recs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(recs) != 1 || recs[0].JobID != "j1" {
		t.Errorf("recommendations = %+v, want one j1 row", recs)
	}
}

func TestMCPRecommendJobs_EmptyProfile(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecommendJobs(deps)

	result, err := handler(context.Background(), makeCallToolRequest("recommend_jobs", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for empty profile")
	}
	if text := toolText(t, result); !strings.Contains(text, "profile is empty") {
		t.Errorf("error text = %q", text)
	}
}

func TestMCPRecommendJobs_NoMatches(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecommendJobs(deps)

	result, err := handler(context.Background(), makeCallToolRequest("recommend_jobs", map[string]interface{}{
		"skills": []string{"cobol"},
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}
	if text := toolText(t, result); text != "[]" {
		t.Errorf("text = %q, want []", text)
	}
}

func TestMCPExtractSkills(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpExtractSkills(deps)

	result, err := handler(context.Background(), makeCallToolRequest("extract_skills", map[string]interface{}{
		"text":   "Looking for python and sql engineers.",
		"method": extraction.MethodRegex,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}

	var skills []ExtractedSkill
	if err := json.Unmarshal([]byte(toolText(t, result)), &skills); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("got %d skills, want 2: %+v", len(skills), skills)
	}
	if skills[0].Skill != "python" || skills[1].Skill != "sql" {
		t.Errorf("skills = %+v, want python then sql by position", skills)
	}
}

func TestMCPExtractSkills_MissingText(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpExtractSkills(deps)

	result, err := handler(context.Background(), makeCallToolRequest("extract_skills", nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing text")
	}
}

func TestMCPJobDetails(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	occ := []extraction.Occurrence{
		{JobID: "j1", Skill: "python", Category: taxonomy.CategoryLanguages, Confidence: 1.0, Method: extraction.MethodRegex},
	}
	if err := store.ReplaceOccurrences("run-1", occ); err != nil {
		t.Fatalf("ReplaceOccurrences: %v", err)
	}

	handler := mcpJobDetails(deps)
	result, err := handler(context.Background(), makeCallToolRequest("job_details", map[string]interface{}{
		"job_id": "j1",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}

	var job struct {
		corpus.Job
		Skills []storage.OccurrenceRow `json:"skills"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &job); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if job.Title != "Backend Engineer" {
		t.Errorf("Title = %q, want Backend Engineer", job.Title)
	}
	if len(job.Skills) != 1 || job.Skills[0].Skill != "python" {
		t.Errorf("skills = %+v, want one python row", job.Skills)
	}
}

func TestMCPJobDetails_NotFound(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpJobDetails(deps)

	result, err := handler(context.Background(), makeCallToolRequest("job_details", map[string]interface{}{
		"job_id": "missing",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown job id")
	}
	if text := toolText(t, result); !strings.Contains(text, "not found") {
		t.Errorf("error text = %q", text)
	}
}

func TestMCPResourceStats(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpResourceStats(deps)

	contents, err := handler(context.Background(), makeReadResourceRequest("corpus://stats"))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	trc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents are %T, want TextResourceContents", contents[0])
	}
	if trc.URI != "corpus://stats" {
		t.Errorf("URI = %q", trc.URI)
	}

	var stats struct {
		Jobs     int  `json:"jobs"`
		Semantic bool `json:"semantic"`
	}
	if err := json.Unmarshal([]byte(trc.Text), &stats); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if stats.Jobs != 2 {
		t.Errorf("jobs = %d, want 2", stats.Jobs)
	}
	if stats.Semantic {
		t.Error("semantic should be false without an embedder")
	}
}
