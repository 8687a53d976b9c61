package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a skill catalog from a JSON file: an array of
// {name, patterns, category} objects in authored order. Categories may be
// omitted; such skills resolve to DefaultCategory.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var defs []SkillDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no skills", path)
	}

	c, err := New(defs)
	if err != nil {
		return nil, fmt.Errorf("building catalog from %s: %w", path, err)
	}
	return c, nil
}
