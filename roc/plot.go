package roc

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"golang.org/x/exp/slices"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot renders the curves to a chart file (format from the extension,
// .pdf in the pipeline config). Only defined points are drawn; gaps are
// simply absent from the line.
func Plot(curves []Curve, outFile string) error {
	p := plot.New()
	p.Title.Text = "ROC"
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	// chance diagonal for reference
	diag := plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}}
	ref, err := plotter.NewLine(diag)
	if err != nil {
		return err
	}
	ref.LineStyle.Width = vg.Points(0.5)
	ref.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ref)

	for _, c := range curves {
		pts := c.Defined()
		slices.SortFunc(pts, func(a, b Point) int {
			switch {
			case a.FPR < b.FPR:
				return -1
			case a.FPR > b.FPR:
				return 1
			}
			return 0
		})
		xys := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			xys[i].X = pt.FPR
			xys[i].Y = pt.TPR
		}
		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("curve %s: %w", c.Name, err)
		}
		p.Add(line, scatter)
		p.Legend.Add(c.Name, line, scatter)
	}

	return p.Save(15*vg.Centimeter, 15*vg.Centimeter, outFile)
}

// Preview renders a quick terminal sketch of each curve's TPR across the
// threshold sweep, one labelled block per curve.
func Preview(curves []Curve) string {
	sb := new(strings.Builder)
	for _, c := range curves {
		var tprs []float64
		for _, p := range c.Points {
			if !p.Undefined {
				tprs = append(tprs, p.TPR)
			}
		}
		if len(tprs) < 2 {
			continue
		}
		sb.WriteString(asciigraph.Plot(tprs,
			asciigraph.Height(8),
			asciigraph.Precision(2),
			asciigraph.Caption(c.Name+" (tpr by threshold)")))
		sb.WriteString("\n")
	}
	return sb.String()
}
