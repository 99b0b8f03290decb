// Package region translates reference coordinates into expected-table
// coordinates using per-region offset rules.
//
// A region declares either a single scalar offset applied uniformly, or a
// list of half-open [start,end) ranges each carrying a signed offset or
// marked excluded. Positions covered by an excluded range are dropped
// from accuracy evaluation entirely. Positions covered by no range pass
// through unadjusted unless the region declares a default offset.
package region

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/interval"
	"golang.org/x/exp/slices"
)

// Span is one ranged offset rule over [Start,End) in reference
// coordinates. Excluded spans drop their positions from evaluation.
type Span struct {
	Start    int
	End      int
	Offset   int
	Excluded bool

	region string
}

// Span satisfies interval.Interval so ranged rules can live in a
// gonomics interval tree, keyed by region name.
func (s Span) GetChrom() string {
	return s.region
}

func (s Span) GetChromStart() int {
	return s.Start
}

func (s Span) GetChromEnd() int {
	return s.End
}

// Mapper owns the offset rules for one named region. Static after
// construction; lookups are safe for concurrent use.
type Mapper struct {
	region     string
	scalar     int
	ranged     bool
	defOffset  int
	hasDefault bool
	tree       map[string]*interval.IntervalNode
}

// NewScalar builds a mapper applying one offset across the whole region.
func NewScalar(region string, offset int) *Mapper {
	return &Mapper{region: region, scalar: offset}
}

// NewRanged builds a mapper from ranged rules. Overlapping ranges are a
// configuration error and are rejected here, at load time.
func NewRanged(region string, spans []Span) (*Mapper, error) {
	if len(spans) == 0 {
		return nil, fmt.Errorf("region %s: no offset ranges declared", region)
	}
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b Span) int { return a.Start - b.Start })
	intervals := make([]interval.Interval, 0, len(sorted))
	for i := range sorted {
		if sorted[i].Start >= sorted[i].End {
			return nil, fmt.Errorf("region %s: invalid range [%d,%d)", region, sorted[i].Start, sorted[i].End)
		}
		if i > 0 && sorted[i].Start < sorted[i-1].End {
			return nil, fmt.Errorf("region %s: ranges [%d,%d) and [%d,%d) overlap",
				region, sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End)
		}
		sorted[i].region = region
		intervals = append(intervals, sorted[i])
	}
	return &Mapper{region: region, ranged: true, tree: interval.BuildTree(intervals)}, nil
}

// SetDefault declares the offset applied to positions outside every
// declared range. Without a default such positions pass through
// unadjusted.
func (m *Mapper) SetDefault(offset int) {
	m.defOffset = offset
	m.hasDefault = true
}

// Region returns the region name this mapper serves.
func (m *Mapper) Region() string {
	return m.region
}

// ToExpected translates a reference position into expected-table
// coordinates. ok is false when the position falls in an excluded range.
func (m *Mapper) ToExpected(refPos int) (pos int, ok bool) {
	if !m.ranged {
		return refPos + m.scalar, true
	}
	q := Span{Start: refPos, End: refPos + 1, region: m.region}
	hits := interval.Query(m.tree, q, "any")
	if len(hits) == 0 {
		if m.hasDefault {
			return refPos + m.defOffset, true
		}
		return refPos, true
	}
	span := hits[0].(Span)
	if span.Excluded {
		return 0, false
	}
	return refPos + span.Offset, true
}

// ParseSpan parses a "start-end" range key into its bounds.
func ParseSpan(key string) (start, end int, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("offset range %q: want start-end", key)
	}
	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("offset range %q: %w", key, err)
	}
	end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("offset range %q: %w", key, err)
	}
	if start >= end {
		return 0, 0, fmt.Errorf("offset range %q: start must be < end", key)
	}
	return start, end, nil
}
