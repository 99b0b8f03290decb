package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObservedStat is one per-position variant-frequency call produced by
// the external variant caller, in reference coordinates.
type ObservedStat struct {
	Position int     `yaml:"position"`
	Base     string  `yaml:"base"`
	Percent  float64 `yaml:"percent"`
	Coverage int     `yaml:"coverage"`
}

// ReadObserved loads a variation_stats file. Order is preserved; the
// same position may legitimately appear once per variant base.
func ReadObserved(file string) ([]ObservedStat, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading observed stats: %w", err)
	}
	var stats []ObservedStat
	if err = yaml.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parsing observed stats %s: %w", file, err)
	}
	for i := range stats {
		if stats[i].Percent < 0 || stats[i].Percent > 100 {
			return nil, fmt.Errorf("observed stats %s: position %d: percent %v out of range",
				file, stats[i].Position, stats[i].Percent)
		}
	}
	return stats, nil
}
