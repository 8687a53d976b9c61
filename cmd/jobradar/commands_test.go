package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobradar/jobradar/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestRankRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /recommendations": `{"recommendations":[{"job_id":"j1","title":"Data Engineer","combined_score":0.9}],"count":1}`,
	})

	client := ts.client()

	req := map[string]any{
		"skills":     []string{"python", "sql"},
		"experience": "5 years of pipelines",
		"top_k":      5,
	}
	resp, err := client.post(ctx, "/recommendations", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Recommendations []struct {
			JobID    string  `json:"job_id"`
			Combined float64 `json:"combined_score"`
		} `json:"recommendations"`
		Count int `json:"count"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if result.Count != 1 || result.Recommendations[0].JobID != "j1" {
		t.Errorf("unexpected result: %+v", result)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["experience"] != "5 years of pipelines" {
		t.Errorf("body.experience = %v", body["experience"])
	}
}

func TestRankCommand_EmptyProfile(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.AddCommand(rankCmd)
	rootCmd.SetArgs([]string{"rank"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for empty candidate profile")
	}
	if !strings.Contains(err.Error(), "empty candidate profile") {
		t.Errorf("error = %q, want it to mention the empty profile", err.Error())
	}
}

func TestExtractRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /extract": `{"skills":[{"skill_name":"python","skill_category":"Programming Languages","confidence_score":1.0,"extraction_method":"regex"}],"count":1}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/extract", map[string]any{"text": "python developer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Skills []struct {
			Skill  string `json:"skill_name"`
			Method string `json:"extraction_method"`
		} `json:"skills"`
		Count int `json:"count"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.Count != 1 || result.Skills[0].Skill != "python" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJobDetails(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /jobs/j1":        `{"job_id":"j1","title":"Data Engineer","company":"Acme"}`,
		"GET /jobs/j1/skills": `{"job_id":"j1","skills":[]}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/jobs/j1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var job map[string]any
	if err := decodeJSON(resp, &job); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if job["title"] != "Data Engineer" {
		t.Errorf("title = %v, want Data Engineer", job["title"])
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"authentication_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/stats")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4600
	cfg.Ollama.EmbedModel = "nomic-embed-text"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4600" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4600 in ShowAll output")
	}
}
