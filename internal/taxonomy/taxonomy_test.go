package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()

	if c.Len() == 0 {
		t.Fatal("builtin catalog is empty")
	}
	if got := c.Category("python"); got != CategoryLanguages {
		t.Errorf("Category(python) = %q, want %q", got, CategoryLanguages)
	}

	// Authored order is part of the catalog contract.
	if c.Skills()[0].Name != "python" {
		t.Errorf("first skill = %q, want python", c.Skills()[0].Name)
	}
}

func TestCategoryLookup(t *testing.T) {
	c := Builtin()

	tests := []struct {
		skill string
		want  string
	}{
		{"python", CategoryLanguages},
		{"kafka", CategoryDataEng},
		{"snowflake", CategoryDatabases},
		{"tensorflow", CategoryML},
		{"tableau", CategoryBI},
		// Skills present in the pattern table but absent from any
		// category grouping resolve to the default, never an error.
		{"apache", DefaultCategory},
		{"teradata", DefaultCategory},
		// Unknown skill names also resolve to the default.
		{"no-such-skill", DefaultCategory},
	}
	for _, tt := range tests {
		if got := c.Category(tt.skill); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.skill, got, tt.want)
		}
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]SkillDefinition{
		{Name: "python", Patterns: []string{"python"}},
		{Name: "python", Patterns: []string{"py"}},
	})
	if err == nil {
		t.Fatal("expected error for duplicate skill name")
	}
}

func TestNewRejectsUnnamed(t *testing.T) {
	_, err := New([]SkillDefinition{{Patterns: []string{"x"}}})
	if err == nil {
		t.Fatal("expected error for unnamed skill")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `[
		{"name": "zig", "patterns": ["zig", "ziglang"], "category": "Programming Languages"},
		{"name": "nats", "patterns": ["nats"]}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Skills()[0].Name != "zig" {
		t.Errorf("first skill = %q, want zig", c.Skills()[0].Name)
	}
	if got := c.Category("nats"); got != DefaultCategory {
		t.Errorf("Category(nats) = %q, want %q", got, DefaultCategory)
	}
}

func TestLoadFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestNewDefaultsCategory(t *testing.T) {
	c, err := New([]SkillDefinition{{Name: "zig", Patterns: []string{"zig"}}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Category("zig"); got != DefaultCategory {
		t.Errorf("Category(zig) = %q, want %q", got, DefaultCategory)
	}
}
