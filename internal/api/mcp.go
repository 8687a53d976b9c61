package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/extraction"
	"github.com/jobradar/jobradar/internal/profile"
	"github.com/jobradar/jobradar/internal/recommend"
	"github.com/jobradar/jobradar/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store       *storage.Store
	Extractor   *extraction.Extractor
	Recommender Recommender
}

// NewMCPServer creates an MCP server with all jobradar tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"jobradar",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("jobradar: skill extraction and job recommendations over a local posting corpus."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("recommend_jobs",
			mcp.WithDescription("Rank job postings for a candidate profile and return the best matches with score breakdowns."),
			mcp.WithArray("skills", mcp.Description("Candidate skills, e.g. [\"python\", \"sql\"]")),
			mcp.WithString("experience", mcp.Description("Free-text summary of the candidate's experience")),
			mcp.WithString("interests", mcp.Description("Free-text summary of the candidate's interests")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of recommendations (default 10)")),
		),
		mcpRecommendJobs(deps),
	)

	s.AddTool(
		mcp.NewTool("extract_skills",
			mcp.WithDescription("Extract known technical skills from a piece of text."),
			mcp.WithString("text", mcp.Description("Text to scan, e.g. a job description"), mcp.Required()),
			mcp.WithString("method", mcp.Description("Extraction method: regex, semantic, or hybrid (default hybrid)")),
		),
		mcpExtractSkills(deps),
	)

	s.AddTool(
		mcp.NewTool("job_details",
			mcp.WithDescription("Return the full posting for a job id, including its extracted skills."),
			mcp.WithString("job_id", mcp.Description("Job identifier from a recommendation result"), mcp.Required()),
		),
		mcpJobDetails(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"corpus://stats",
			"Corpus Statistics",
			mcp.WithResourceDescription("Counts of loaded jobs, extracted skill occurrences, and stored vectors"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStats(deps),
	)

	return s
}

func mcpRecommendJobs(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		skills := req.GetStringSlice("skills", nil)
		experience := req.GetString("experience", "")
		interests := req.GetString("interests", "")

		if len(skills) == 0 && experience == "" && interests == "" {
			return mcpError("candidate profile is empty: provide skills, experience, or interests"), nil
		}

		limit := req.GetInt("limit", recommend.DefaultTopK)
		if limit <= 0 {
			limit = recommend.DefaultTopK
		}
		if limit > 50 {
			limit = 50
		}

		cand := profile.Candidate{
			Skills:     skills,
			Experience: experience,
			Interests:  interests,
		}
		recs, err := deps.Recommender.Rank(ctx, cand, recommend.Options{TopK: limit})
		if err != nil {
			return mcpError(fmt.Sprintf("ranking failed: %v", err)), nil
		}

		if len(recs) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(recs)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpExtractSkills(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		method := req.GetString("method", extraction.MethodHybrid)

		matches, err := deps.Extractor.Extract(ctx, text, method)
		if err != nil {
			return mcpError(fmt.Sprintf("extraction failed: %v", err)), nil
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

		b, err := json.Marshal(skills)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpJobDetails(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobID, err := req.RequireString("job_id")
		if err != nil {
			return mcpError("job_id is required"), nil
		}

		job, err := deps.Recommender.Details(jobID)
		if errors.Is(err, corpus.ErrNotFound) {
			return mcpError(fmt.Sprintf("job %q not found", jobID)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get job: %v", err)), nil
		}

		rows, err := deps.Store.ListOccurrences(jobID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list skills: %v", err)), nil
		}

		result := struct {
			corpus.Job
			Skills []storage.OccurrenceRow `json:"skills"`
		}{Job: job, Skills: rows}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceStats(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		stats, err := deps.Store.GetStats()
		if err != nil {
			return nil, fmt.Errorf("failed to get stats: %w", err)
		}

		b, err := json.Marshal(map[string]any{
			"jobs":        stats.Jobs,
			"occurrences": stats.Occurrences,
			"vectors":     stats.Vectors,
			"last_run_id": stats.LastRunID,
			"semantic":    deps.Recommender.SemanticAvailable(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
