// Package roc sweeps call thresholds across evaluation runs and
// aggregates the resulting discrepancy records into ROC curves.
package roc

import (
	"fmt"
	"io"

	"github.com/ohofmann/seqval/eval"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/integrate"
)

// Point is one swept threshold's aggregate rates for a curve. When a
// rate's denominator is zero the point is Undefined: a gap in the curve,
// reported rather than substituted with zero.
type Point struct {
	Curve     string
	Threshold float64
	TPR       float64
	FPR       float64
	Undefined bool
}

// Curve is an ordered sequence of points for one named pipeline variant
// (e.g. Base, Shrec, Trim). Points are ordered by threshold; neither
// axis is monotonic by construction.
type Curve struct {
	Name   string
	Points []Point
}

// Defined returns the curve's defined points only.
func (c Curve) Defined() []Point {
	out := make([]Point, 0, len(c.Points))
	for _, p := range c.Points {
		if !p.Undefined {
			out = append(out, p)
		}
	}
	return out
}

// Gaps returns the thresholds whose rates were undefined.
func (c Curve) Gaps() []float64 {
	var out []float64
	for _, p := range c.Points {
		if p.Undefined {
			out = append(out, p.Threshold)
		}
	}
	return out
}

// Tally counts classified records by confusion-matrix cell. Untruthed
// records count toward no cell.
func Tally(records []eval.Record) (tp, fp, tn, fn int) {
	for _, r := range records {
		switch r.Class {
		case eval.TruePositive:
			tp++
		case eval.FalsePositive:
			fp++
		case eval.TrueNegative:
			tn++
		case eval.FalseNegative:
			fn++
		}
	}
	return
}

// PointFrom aggregates one evaluation's records into a single point.
func PointFrom(curve string, threshold float64, records []eval.Record) Point {
	tp, fp, tn, fn := Tally(records)
	p := Point{Curve: curve, Threshold: threshold}
	if tp+fn == 0 || fp+tn == 0 {
		p.Undefined = true
		return p
	}
	p.TPR = float64(tp) / float64(tp+fn)
	p.FPR = float64(fp) / float64(fp+tn)
	return p
}

// BuildCurve evaluates one curve's data at every swept call threshold.
// Thresholds are percent units; the returned points are sorted by
// threshold regardless of input order. The evaluator's data is loaded
// once by the caller and reused across the whole sweep.
func BuildCurve(name string, ev *eval.Evaluator, truthPercent float64, thresholds []float64) Curve {
	sorted := slices.Clone(thresholds)
	slices.Sort(sorted)
	c := Curve{Name: name, Points: make([]Point, 0, len(sorted))}
	for _, thresh := range sorted {
		records := ev.Evaluate(eval.Thresholds{CallPercent: thresh, TruthPercent: truthPercent})
		c.Points = append(c.Points, PointFrom(name, thresh, records))
	}
	return c
}

// BuildAll builds every declared curve independently. Curve order
// follows declaration order; aggregation across curves only happens at
// the plotting boundary.
func BuildAll(evaluators map[string]*eval.Evaluator, names []string, truthPercent float64, thresholds []float64) ([]Curve, error) {
	curves := make([]Curve, 0, len(names))
	for _, name := range names {
		ev, ok := evaluators[name]
		if !ok {
			return nil, fmt.Errorf("no evaluator for curve %s", name)
		}
		curves = append(curves, BuildCurve(name, ev, truthPercent, thresholds))
	}
	return curves, nil
}

// AUC integrates the curve's defined points over FPR. ok is false when
// fewer than two defined points remain.
func AUC(c Curve) (auc float64, ok bool) {
	pts := c.Defined()
	if len(pts) < 2 {
		return 0, false
	}
	slices.SortFunc(pts, func(a, b Point) int {
		switch {
		case a.FPR < b.FPR:
			return -1
		case a.FPR > b.FPR:
			return 1
		}
		return 0
	})
	x := make([]float64, len(pts))
	y := make([]float64, len(pts))
	for i, p := range pts {
		x[i] = p.FPR
		y[i] = p.TPR
	}
	return integrate.Trapezoidal(x, y), true
}

// WritePoints emits the plot-ready (threshold, tpr, fpr) triples, one
// curve after another, with gaps marked. This is the data contract for
// external renderers.
func WritePoints(w io.Writer, curves []Curve) {
	fmt.Fprintf(w, "curve\tthreshold\ttpr\tfpr\n")
	for _, c := range curves {
		for _, p := range c.Points {
			if p.Undefined {
				fmt.Fprintf(w, "%s\t%g\tNA\tNA\n", c.Name, p.Threshold)
				continue
			}
			fmt.Fprintf(w, "%s\t%g\t%.6f\t%.6f\n", c.Name, p.Threshold, p.TPR, p.FPR)
		}
	}
}
