package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestQueryText(t *testing.T) {
	tests := []struct {
		name string
		cand Candidate
		want string
	}{
		{
			"full profile",
			Candidate{
				Skills:     []string{"python", "spark"},
				Experience: "five years of pipelines",
				Interests:  "streaming systems",
			},
			"python spark five years of pipelines streaming systems",
		},
		{
			"skills only",
			Candidate{Skills: []string{"sql"}},
			"sql",
		},
		{
			"experience only",
			Candidate{Experience: "built data platforms"},
			"built data platforms",
		},
		{
			"empty",
			Candidate{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cand.QueryText(); got != tt.want {
				t.Errorf("QueryText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidate.json")
	content := `{
		"name": "alice",
		"skills": ["python", "airflow"],
		"experience": "data platform work",
		"interests": "orchestration"
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Name != "alice" {
		t.Errorf("name = %q", c.Name)
	}
	if len(c.Skills) != 2 || c.Skills[1] != "airflow" {
		t.Errorf("skills = %v", c.Skills)
	}
	if c.Experience != "data platform work" || c.Interests != "orchestration" {
		t.Errorf("candidate = %+v", c)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestFromPDFMissingFile(t *testing.T) {
	if _, err := FromPDF(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
