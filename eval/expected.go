package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExpectedEntry is one row of a curated truth table, in expected-table
// coordinates. Read-only for the lifetime of an evaluation run.
type ExpectedEntry struct {
	Position int     `yaml:"position"`
	Base     string  `yaml:"base"`
	Percent  float64 `yaml:"percent"`
}

// ReadExpected loads a truth table keyed by position. Duplicate
// positions are a configuration error.
func ReadExpected(file string) (map[int]ExpectedEntry, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading expected file: %w", err)
	}
	var entries []ExpectedEntry
	if err = yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing expected file %s: %w", file, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("expected file %s: no entries", file)
	}
	m := make(map[int]ExpectedEntry, len(entries))
	for _, e := range entries {
		if _, dup := m[e.Position]; dup {
			return nil, fmt.Errorf("expected file %s: duplicate position %d", file, e.Position)
		}
		if e.Percent < 0 || e.Percent > 100 {
			return nil, fmt.Errorf("expected file %s: position %d: percent %v out of range", file, e.Position, e.Percent)
		}
		m[e.Position] = e
	}
	return m, nil
}
