// Package eval reconciles observed per-position variant calls against a
// curated truth table under piecewise coordinate offsets, classifying
// each position relative to a call threshold.
package eval

import (
	"fmt"
	"math"

	"github.com/ohofmann/seqval/region"
)

// Class is the outcome of comparing one observed call to truth.
type Class int

const (
	TruePositive Class = iota
	FalsePositive
	TrueNegative
	FalseNegative
	Untruthed // translated position has no truth entry
)

func (c Class) String() string {
	switch c {
	case TruePositive:
		return "true_positive"
	case FalsePositive:
		return "false_positive"
	case TrueNegative:
		return "true_negative"
	case FalseNegative:
		return "false_negative"
	case Untruthed:
		return "untruthed"
	}
	return "unknown"
}

// Record is one per-position discrepancy. Derived data, recomputed on
// every Evaluate call and never persisted.
type Record struct {
	Position    int // expected-table coordinates
	RefPosition int // reference coordinates as observed
	Base        string
	Expected    float64
	Observed    float64
	Delta       float64
	Class       Class
}

// Thresholds are percent (0-100) decision boundaries for one
// evaluation. TruthPercent of zero means "use CallPercent", the default
// the pipeline assumes when no distinct truth threshold is supplied.
type Thresholds struct {
	CallPercent  float64
	TruthPercent float64
}

func (t Thresholds) truth() float64 {
	if t.TruthPercent > 0 {
		return t.TruthPercent
	}
	return t.CallPercent
}

// Evaluator joins observed stats with a truth table for one region. All
// inputs are loaded once and never mutated, so a single Evaluator
// supports repeated evaluation across many thresholds, concurrently.
type Evaluator struct {
	region   string
	mapper   *region.Mapper
	expected map[int]ExpectedEntry
	observed []ObservedStat
}

// New builds an Evaluator. The mapper may be nil when the region's
// observed and expected coordinates already agree.
func New(regionName string, mapper *region.Mapper, expected map[int]ExpectedEntry, observed []ObservedStat) (*Evaluator, error) {
	if len(expected) == 0 {
		return nil, fmt.Errorf("region %s: empty truth table", regionName)
	}
	if mapper == nil {
		mapper = region.NewScalar(regionName, 0)
	}
	return &Evaluator{region: regionName, mapper: mapper, expected: expected, observed: observed}, nil
}

// Region returns the region this evaluator serves.
func (e *Evaluator) Region() string {
	return e.region
}

// Evaluate classifies every observed stat against truth at the given
// thresholds. Positions in excluded offset ranges are dropped. A
// translated position absent from the truth table is reported as
// Untruthed rather than silently skipped. Output order follows observed
// input order; identical inputs yield identical output.
func (e *Evaluator) Evaluate(t Thresholds) []Record {
	records := make([]Record, 0, len(e.observed))
	truthThresh := t.truth()
	for _, obs := range e.observed {
		pos, ok := e.mapper.ToExpected(obs.Position)
		if !ok {
			continue // excluded range
		}
		rec := Record{
			Position:    pos,
			RefPosition: obs.Position,
			Base:        obs.Base,
			Observed:    obs.Percent,
		}
		exp, found := e.expected[pos]
		if !found {
			rec.Class = Untruthed
			rec.Expected = math.NaN()
			rec.Delta = math.NaN()
			records = append(records, rec)
			continue
		}
		rec.Expected = exp.Percent
		rec.Delta = obs.Percent - exp.Percent
		called := obs.Percent >= t.CallPercent
		present := exp.Percent >= truthThresh
		switch {
		case called && present:
			rec.Class = TruePositive
		case called && !present:
			rec.Class = FalsePositive
		case !called && present:
			rec.Class = FalseNegative
		default:
			rec.Class = TrueNegative
		}
		records = append(records, rec)
	}
	return records
}

// Coverage reports how well observed and expected positions overlap:
// expected positions never observed, and observed positions with no
// truth entry (excluded positions count toward neither).
type Coverage struct {
	Region             string
	ExpectedPositions  int
	ObservedPositions  int
	ExpectedUnobserved int
	ObservedUntruthed  int
	Excluded           int
}

// Coverage computes the per-region evaluation coverage report.
func (e *Evaluator) Coverage() Coverage {
	c := Coverage{Region: e.region, ExpectedPositions: len(e.expected)}
	seen := make(map[int]bool)
	for _, obs := range e.observed {
		pos, ok := e.mapper.ToExpected(obs.Position)
		if !ok {
			c.Excluded++
			continue
		}
		c.ObservedPositions++
		if _, found := e.expected[pos]; !found {
			c.ObservedUntruthed++
		} else {
			seen[pos] = true
		}
	}
	c.ExpectedUnobserved = len(e.expected) - len(seen)
	return c
}
