// Package barcode matches read prefixes against a declared set of sample
// barcodes under a bounded substitution budget.
package barcode

import (
	"fmt"

	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/numbers"
)

// Unassigned is the sentinel barcode name for reads that could not be
// assigned to any declared barcode.
const Unassigned string = "*"

// Role is a capability tag on a barcode. A barcode may carry any number
// of roles; downstream stages filter by role rather than by name.
type Role string

const (
	RoleCallBases Role = "call_bases" // sample used for variant-call accuracy assessment
	RoleControl   Role = "control"    // control sample, excluded from ROC aggregation
	RolePlain     Role = "plain"
)

// Barcode is a declared sample barcode.
type Barcode struct {
	Name  string
	Seq   []dna.Base
	Roles []Role
}

func (b Barcode) HasRole(r Role) bool {
	for i := range b.Roles {
		if b.Roles[i] == r {
			return true
		}
	}
	return false
}

// New parses a barcode from its string sequence. Sequences are restricted
// to A/C/G/T; ambiguous bases in a declared barcode are a configuration
// error, not a matching concern.
func New(name, seq string, roles ...Role) (Barcode, error) {
	if name == "" || name == Unassigned {
		return Barcode{}, fmt.Errorf("invalid barcode name %q", name)
	}
	if len(seq) == 0 {
		return Barcode{}, fmt.Errorf("barcode %s: empty sequence", name)
	}
	for i := range seq {
		switch seq[i] {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return Barcode{}, fmt.Errorf("barcode %s: invalid base %q at position %d", name, seq[i], i)
		}
	}
	return Barcode{Name: name, Seq: dna.StringToBases(seq), Roles: roles}, nil
}

// Set is a validated collection of barcodes together with the matching
// policy. Immutable after NewSet.
type Set struct {
	barcodes  []Barcode
	maxLen    int
	mismatch  int
	allowedNs int
}

// NewSet validates the declared barcodes against the matching policy.
// The set must be non-empty and every pair of barcodes must be more than
// 2*mismatch edits apart, otherwise a read could sit within budget of two
// barcodes at once and assignment would be ambiguous by construction.
// The separation check uses edit distance, which is conservative for the
// substitution-only matcher.
func NewSet(barcodes []Barcode, mismatch, allowedNs int) (*Set, error) {
	if len(barcodes) == 0 {
		return nil, fmt.Errorf("empty barcode set")
	}
	if mismatch < 0 {
		return nil, fmt.Errorf("barcode mismatch budget must be >= 0, got %d", mismatch)
	}
	if allowedNs < 0 {
		return nil, fmt.Errorf("allowed_ns must be >= 0, got %d", allowedNs)
	}
	s := &Set{barcodes: barcodes, mismatch: mismatch, allowedNs: allowedNs}
	seen := make(map[string]bool)
	for i := range barcodes {
		if seen[barcodes[i].Name] {
			return nil, fmt.Errorf("duplicate barcode name %s", barcodes[i].Name)
		}
		seen[barcodes[i].Name] = true
		if len(barcodes[i].Seq) > s.maxLen {
			s.maxLen = len(barcodes[i].Seq)
		}
	}
	for i := range barcodes {
		for j := i + 1; j < len(barcodes); j++ {
			if d := levenshtein(barcodes[i].Seq, barcodes[j].Seq); d <= 2*mismatch {
				return nil, fmt.Errorf("barcodes %s and %s are %d edits apart, need > %d for mismatch budget %d",
					barcodes[i].Name, barcodes[j].Name, d, 2*mismatch, mismatch)
			}
		}
	}
	return s, nil
}

// Barcodes returns the declared barcodes in declaration order.
func (s *Set) Barcodes() []Barcode {
	return s.barcodes
}

// MaxLen returns the length of the longest barcode, which is the size of
// the read window inspected by Match.
func (s *Set) MaxLen() int {
	return s.maxLen
}

// MinSeparation returns the smallest pairwise edit distance in the set.
func (s *Set) MinSeparation() int {
	min := s.maxLen + 1
	for i := range s.barcodes {
		for j := i + 1; j < len(s.barcodes); j++ {
			if d := levenshtein(s.barcodes[i].Seq, s.barcodes[j].Seq); d < min {
				min = d
			}
		}
	}
	return min
}

// Match classifies the leading window of a read sequence to at most one
// barcode. It returns the barcode name and its Hamming distance from the
// read prefix, or (Unassigned, 0) when no assignment can be made: too many
// ambiguous bases in the window, no barcode within the mismatch budget, or
// a distance tie between two barcodes. Reads shorter than a barcode fail
// that comparison closed. Pure function over its inputs.
func (s *Set) Match(seq []dna.Base) (name string, mismatches int) {
	window := seq
	if len(window) > s.maxLen {
		window = window[:s.maxLen]
	}
	var ns int
	for i := range window {
		if window[i] == dna.N {
			ns++
		}
	}
	if ns > s.allowedNs {
		return Unassigned, 0
	}

	best := s.mismatch + 1
	var bestName string
	var ties int
	for i := range s.barcodes {
		bc := s.barcodes[i].Seq
		if len(window) < len(bc) {
			continue // fails closed
		}
		d := hamming(window[:len(bc)], bc, s.mismatch+1)
		switch {
		case d < best:
			best = d
			bestName = s.barcodes[i].Name
			ties = 1
		case d == best && d <= s.mismatch:
			ties++
		}
	}
	if bestName == "" || ties > 1 {
		return Unassigned, 0
	}
	return bestName, best
}

// Find returns the barcode with the given name.
func (s *Set) Find(name string) (Barcode, bool) {
	for i := range s.barcodes {
		if s.barcodes[i].Name == name {
			return s.barcodes[i], true
		}
	}
	return Barcode{}, false
}

// hamming counts substitutions between equal-length sequences, bailing
// out once the count reaches limit. An N in the read never matches.
func hamming(read, bc []dna.Base, limit int) int {
	var d int
	for i := range bc {
		if read[i] != bc[i] {
			d++
			if d >= limit {
				return d
			}
		}
	}
	return d
}

func levenshtein(s1, s2 []dna.Base) int {
	if len(s1) == 0 || len(s2) == 0 {
		return numbers.Max(len(s1), len(s2))
	}
	s1len := len(s1)
	s2len := len(s2)
	column := make([]int, len(s1)+1)

	for y := 1; y <= s1len; y++ {
		column[y] = y
	}
	for x := 1; x <= s2len; x++ {
		column[0] = x
		lastkey := x - 1
		for y := 1; y <= s1len; y++ {
			oldkey := column[y]
			var incr int
			if s1[y-1] != s2[x-1] {
				incr = 1
			}

			column[y] = minimum(column[y]+1, column[y-1]+1, lastkey+incr)
			lastkey = oldkey
		}
	}
	return column[s1len]
}

func minimum(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
	} else {
		if b < c {
			return b
		}
	}
	return c
}
