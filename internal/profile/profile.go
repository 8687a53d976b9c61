// Package profile models the candidate side of a ranking query: declared
// skills plus optional free-text experience and interests. Profiles are
// ephemeral, constructed per query.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Candidate is one candidate profile. Skills are free-form strings and
// are not required to match taxonomy keys.
type Candidate struct {
	Name       string   `json:"name,omitempty"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience,omitempty"`
	Interests  string   `json:"interests,omitempty"`
}

// QueryText synthesizes the text embedded for semantic matching:
// skills, experience narrative, and interests joined with whitespace.
func (c Candidate) QueryText() string {
	parts := make([]string, 0, 3)
	if len(c.Skills) > 0 {
		parts = append(parts, strings.Join(c.Skills, " "))
	}
	if c.Experience != "" {
		parts = append(parts, c.Experience)
	}
	if c.Interests != "" {
		parts = append(parts, c.Interests)
	}
	return strings.Join(parts, " ")
}

// LoadFile reads a candidate profile from a JSON file.
func LoadFile(path string) (Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("reading profile file: %w", err)
	}
	var c Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return Candidate{}, fmt.Errorf("parsing profile file %s: %w", path, err)
	}
	return c, nil
}
