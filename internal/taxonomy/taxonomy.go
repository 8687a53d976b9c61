// Package taxonomy holds the catalog of canonical skills: their surface
// patterns and category groupings. The catalog is immutable after
// construction and shared read-only by extraction and scoring.
package taxonomy

import "fmt"

// DefaultCategory is returned for skills absent from the category table.
// A skill can legitimately exist in the pattern catalog without a category
// grouping; that is an authoring inconsistency, not an error.
const DefaultCategory = "Other"

// SkillDefinition is one canonical skill with its ordered surface patterns.
// Patterns are case-insensitive regular expression fragments; the extractor
// wraps each in word boundaries. Pattern order is significant: the first
// pattern that matches wins.
type SkillDefinition struct {
	Name     string   `json:"name"`
	Patterns []string `json:"patterns"`
	Category string   `json:"category"`
}

// Provider supplies a skill catalog. Implementations can back it with the
// built-in catalog, a JSON file, or anything else; extraction code depends
// only on this interface.
type Provider interface {
	Skills() []SkillDefinition
}

// Catalog is an immutable, ordered skill catalog.
type Catalog struct {
	skills []SkillDefinition
	byName map[string]int
}

// New builds a Catalog from definitions, preserving their order.
// Duplicate skill names are rejected.
func New(defs []SkillDefinition) (*Catalog, error) {
	c := &Catalog{
		skills: make([]SkillDefinition, len(defs)),
		byName: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("skill at index %d has no name", i)
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate skill %q", d.Name)
		}
		if d.Category == "" {
			d.Category = DefaultCategory
		}
		c.skills[i] = d
		c.byName[d.Name] = i
	}
	return c, nil
}

// Skills returns the catalog contents in authored order.
// Callers must not modify the returned slice.
func (c *Catalog) Skills() []SkillDefinition {
	return c.skills
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int {
	return len(c.skills)
}

// Category returns the category for a skill name, or DefaultCategory when
// the skill is unknown or has no grouping.
func (c *Catalog) Category(name string) string {
	i, ok := c.byName[name]
	if !ok {
		return DefaultCategory
	}
	return c.skills[i].Category
}
