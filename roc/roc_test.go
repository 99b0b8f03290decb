package roc

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohofmann/seqval/eval"
)

func testEvaluator(t *testing.T) *eval.Evaluator {
	t.Helper()
	expected := map[int]eval.ExpectedEntry{
		100: {Position: 100, Base: "A", Percent: 100},
		101: {Position: 101, Base: "C", Percent: 40},
		102: {Position: 102, Base: "G", Percent: 2},
		103: {Position: 103, Base: "T", Percent: 1},
	}
	observed := []eval.ObservedStat{
		{Position: 100, Base: "A", Percent: 99, Coverage: 1000},
		{Position: 101, Base: "C", Percent: 35, Coverage: 1000},
		{Position: 102, Base: "G", Percent: 12, Coverage: 1000},
		{Position: 103, Base: "T", Percent: 0.5, Coverage: 1000},
	}
	ev, err := eval.New("rt", nil, expected, observed)
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

func TestBuildCurve(t *testing.T) {
	ev := testEvaluator(t)
	// truth threshold fixed at 5%: positions 100 and 101 are present,
	// 102 and 103 absent
	c := BuildCurve("Base", ev, 5, []float64{50, 20, 5})

	if len(c.Points) != 3 {
		t.Fatal("want 3 points, got", len(c.Points))
	}
	// sorted ascending by threshold regardless of input order
	if c.Points[0].Threshold != 5 || c.Points[1].Threshold != 20 || c.Points[2].Threshold != 50 {
		t.Error("points not ordered by threshold:", c.Points)
	}
	for _, p := range c.Points {
		if p.Undefined {
			t.Error("no gap expected at threshold", p.Threshold)
		}
	}

	// threshold 5: calls at 99, 35, 12 -> tp=2 fp=1 fn=0 tn=1
	if p := c.Points[0]; p.TPR != 1.0 || p.FPR != 0.5 {
		t.Error("threshold 5 rates wrong:", p)
	}
	// threshold 20: calls at 99, 35 -> tp=2 fp=0 fn=0 tn=2
	if p := c.Points[1]; p.TPR != 1.0 || p.FPR != 0.0 {
		t.Error("threshold 20 rates wrong:", p)
	}
	// threshold 50: call at 99 -> tp=1 fn=1 fp=0 tn=2
	if p := c.Points[2]; p.TPR != 0.5 || p.FPR != 0.0 {
		t.Error("threshold 50 rates wrong:", p)
	}
}

func TestUndefinedRateIsGap(t *testing.T) {
	// truth table with no positive positions at all
	expected := map[int]eval.ExpectedEntry{
		100: {Position: 100, Base: "A", Percent: 1},
		101: {Position: 101, Base: "C", Percent: 2},
	}
	observed := []eval.ObservedStat{
		{Position: 100, Base: "A", Percent: 50, Coverage: 100},
		{Position: 101, Base: "C", Percent: 1, Coverage: 100},
	}
	ev, err := eval.New("rt", nil, expected, observed)
	if err != nil {
		t.Fatal(err)
	}
	c := BuildCurve("Base", ev, 5, []float64{10})
	if len(c.Points) != 1 || !c.Points[0].Undefined {
		t.Fatal("zero positives in truth must yield an undefined point, got", c.Points)
	}
	if gaps := c.Gaps(); len(gaps) != 1 || gaps[0] != 10 {
		t.Error("gap not reported:", gaps)
	}
	if p := c.Points[0]; p.TPR != 0 || p.FPR != 0 {
		t.Error("undefined point must not carry substituted rates:", p)
	}
}

func TestBuildAll(t *testing.T) {
	evaluators := map[string]*eval.Evaluator{
		"Base": testEvaluator(t),
		"Trim": testEvaluator(t),
	}
	curves, err := BuildAll(evaluators, []string{"Base", "Trim"}, 5, []float64{5, 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(curves) != 2 || curves[0].Name != "Base" || curves[1].Name != "Trim" {
		t.Error("curves missing or out of declaration order:", curves)
	}
	if _, err = BuildAll(evaluators, []string{"Shrec"}, 5, []float64{5}); err == nil {
		t.Error("unknown curve name must error")
	}
}

func TestAUC(t *testing.T) {
	c := Curve{Name: "Base", Points: []Point{
		{Threshold: 50, TPR: 0.5, FPR: 0.0},
		{Threshold: 20, TPR: 1.0, FPR: 0.0},
		{Threshold: 5, TPR: 1.0, FPR: 0.5},
		{Threshold: 1, TPR: 1.0, FPR: 1.0},
	}}
	auc, ok := AUC(c)
	if !ok {
		t.Fatal("AUC should be defined for 4 points")
	}
	if auc < 0.99 || auc > 1.01 {
		t.Error("expected AUC near 1.0, got", auc)
	}

	sparse := Curve{Points: []Point{{TPR: 1, FPR: 0}, {Undefined: true}}}
	if _, ok = AUC(sparse); ok {
		t.Error("AUC must be undefined with fewer than two defined points")
	}
}

func TestWritePoints(t *testing.T) {
	curves := []Curve{{Name: "Base", Points: []Point{
		{Curve: "Base", Threshold: 5, TPR: 1, FPR: 0.5},
		{Curve: "Base", Threshold: 10, Undefined: true},
	}}}
	sb := new(strings.Builder)
	WritePoints(sb, curves)
	out := sb.String()
	if !strings.Contains(out, "Base\t5\t1.000000\t0.500000") {
		t.Error("defined point missing from output:\n" + out)
	}
	if !strings.Contains(out, "Base\t10\tNA\tNA") {
		t.Error("gap must be written as NA, not zero:\n" + out)
	}
}

func TestPlot(t *testing.T) {
	curves := []Curve{{Name: "Base", Points: []Point{
		{Threshold: 50, TPR: 0.5, FPR: 0.0},
		{Threshold: 5, TPR: 1.0, FPR: 0.5},
	}}}
	out := filepath.Join(t.TempDir(), "roc_bc2.pdf")
	if err := Plot(curves, out); err != nil {
		t.Fatal("plot rendering failed:", err)
	}
}
