package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML layout for a hand-written set of templates
type Fixture struct {
	Pieces []Template `yaml:"pieces"`
}

// ParseFixture decodes a YAML fixture
func ParseFixture(data []byte) ([]Template, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i, tpl := range fx.Pieces {
		if _, err := ParsePieceType(string(tpl.Type)); err != nil {
			return nil, fmt.Errorf("fixture piece %d (%s): %w", i, tpl.Name, err)
		}
	}
	return fx.Pieces, nil
}

// LoadFixture reads and decodes a YAML fixture file
func LoadFixture(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// Seed upserts templates into a writable SQLite catalog and returns how many were written
func Seed(store *SQLite, templates []Template) (int, error) {
	for i, tpl := range templates {
		if err := store.Upsert(tpl); err != nil {
			return i, err
		}
	}
	return len(templates), nil
}
