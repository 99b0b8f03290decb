package eval

import "math"

// SummaryLine tallies call correctness for one expected-frequency class:
// "single" for fixed positions (100%), ">=5%" for major variants, "<5%"
// for minor variants. Untruthed records carry no expected frequency and
// are excluded from the summary.
type SummaryLine struct {
	Class          string
	Correct        int
	Wrong          int
	PercentCorrect float64
	PercentWrong   float64
}

// Summarize groups discrepancy records into the frequency classes used
// by the original per-run correctness report. A record is correct when
// the thresholded decision agrees with truth (true positive or true
// negative), wrong otherwise.
func Summarize(records []Record) []SummaryLine {
	lines := []SummaryLine{
		{Class: "single"},
		{Class: ">=5%"},
		{Class: "<5%"},
	}
	for _, r := range records {
		if r.Class == Untruthed || math.IsNaN(r.Expected) {
			continue
		}
		var line *SummaryLine
		switch {
		case r.Expected == 100.0:
			line = &lines[0]
		case r.Expected >= 5.0:
			line = &lines[1]
		default:
			line = &lines[2]
		}
		if r.Class == TruePositive || r.Class == TrueNegative {
			line.Correct++
		} else {
			line.Wrong++
		}
	}
	for i := range lines {
		total := lines[i].Correct + lines[i].Wrong
		if total > 0 {
			lines[i].PercentCorrect = float64(lines[i].Correct) / float64(total) * 100.0
			lines[i].PercentWrong = float64(lines[i].Wrong) / float64(total) * 100.0
		}
	}
	return lines
}
