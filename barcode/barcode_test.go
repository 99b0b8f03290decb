package barcode

import (
	"testing"

	"github.com/vertgenlab/gonomics/dna"
)

func mustSet(t *testing.T, mismatch, allowedNs int, decl ...[2]string) *Set {
	t.Helper()
	var bcs []Barcode
	for _, d := range decl {
		bc, err := New(d[0], d[1])
		if err != nil {
			t.Fatal(err)
		}
		bcs = append(bcs, bc)
	}
	s, err := NewSet(bcs, mismatch, allowedNs)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMatchExact(t *testing.T) {
	s := mustSet(t, 1, 0,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"},
		[2]string{"bc3_outer", "TTAGGCA"})

	name, mm := s.Match(dna.StringToBases("ATCACGATTTTT"))
	if name != "bc1_outer" || mm != 0 {
		t.Error("exact prefix should match bc1_outer with 0 mismatches, got", name, mm)
	}
	name, mm = s.Match(dna.StringToBases("CGATGTAGGGGG"))
	if name != "bc2_outer" || mm != 0 {
		t.Error("exact prefix should match bc2_outer with 0 mismatches, got", name, mm)
	}
}

func TestMatchOneMismatch(t *testing.T) {
	s := mustSet(t, 1, 0,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"})

	// worked example: ATCACGA vs window ATCACGT is Hamming distance 1
	name, mm := s.Match(dna.StringToBases("ATCACGTCCCC"))
	if name != "bc1_outer" || mm != 1 {
		t.Error("one substitution within budget should assign, got", name, mm)
	}
}

func TestMatchOverBudget(t *testing.T) {
	s := mustSet(t, 1, 0,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"})

	name, _ := s.Match(dna.StringToBases("ATCAGTTCCCC"))
	if name != Unassigned {
		t.Error("two substitutions should be unassigned, got", name)
	}
}

func TestMatchTieUnassigned(t *testing.T) {
	// A tie within budget requires barcodes closer than the separation
	// invariant allows, so NewSet would reject this pair; build the set
	// directly to exercise the tie-break rule in isolation.
	s := &Set{
		barcodes: []Barcode{
			{Name: "a", Seq: dna.StringToBases("AAAAAAT")},
			{Name: "b", Seq: dna.StringToBases("AAAATTT")},
		},
		maxLen:   7,
		mismatch: 1,
	}

	// AAAATAT is distance 1 from both barcodes.
	name, _ := s.Match(dna.StringToBases("AAAATATGGGG"))
	if name != Unassigned {
		t.Error("distance tie must be unassigned, got", name)
	}
}

func TestMatchAmbiguousBases(t *testing.T) {
	s := mustSet(t, 1, 0,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"})

	name, _ := s.Match(dna.StringToBases("ATCACGNCCCC"))
	if name != Unassigned {
		t.Error("N count over allowed_ns must reject regardless of distance, got", name)
	}

	relaxed := mustSet(t, 1, 1,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"})
	name, mm := relaxed.Match(dna.StringToBases("ATCACGNCCCC"))
	if name != "bc1_outer" || mm != 1 {
		t.Error("one N within allowed_ns should still assign, got", name, mm)
	}
}

func TestMatchShortRead(t *testing.T) {
	s := mustSet(t, 1, 0,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"})

	name, _ := s.Match(dna.StringToBases("ATCA"))
	if name != Unassigned {
		t.Error("read shorter than every barcode must fail closed, got", name)
	}
}

func TestEmptySetRejected(t *testing.T) {
	if _, err := NewSet(nil, 1, 0); err == nil {
		t.Error("empty barcode set must be a configuration error")
	}
}

func TestAmbiguousSetRejected(t *testing.T) {
	a, _ := New("a", "ATCACGA")
	b, _ := New("b", "ATCACGT") // 1 edit apart, needs > 2 for budget 1
	if _, err := NewSet([]Barcode{a, b}, 1, 0); err == nil {
		t.Error("barcodes within 2*mismatch edits must be rejected at load")
	}
	// fine at budget 0
	if _, err := NewSet([]Barcode{a, b}, 0, 0); err != nil {
		t.Error("separation of 1 should be accepted at budget 0:", err)
	}
}

func TestSeparationProperty(t *testing.T) {
	s := mustSet(t, 1, 0,
		[2]string{"bc1_outer", "ATCACGA"},
		[2]string{"bc2_outer", "CGATGTA"},
		[2]string{"bc3_outer", "TTAGGCA"})
	if s.MinSeparation() <= 2 {
		t.Fatal("test set should be separated by > 2 edits")
	}
	// a read exactly equal to any barcode is never assigned elsewhere
	for _, bc := range s.Barcodes() {
		name, mm := s.Match(bc.Seq)
		if name != bc.Name || mm != 0 {
			t.Error("read equal to", bc.Name, "assigned to", name)
		}
	}
}

func TestInvalidBarcode(t *testing.T) {
	if _, err := New("bad", "ATCN"); err == nil {
		t.Error("N in a declared barcode must be rejected")
	}
	if _, err := New("empty", ""); err == nil {
		t.Error("empty sequence must be rejected")
	}
	if _, err := New("*", "ATCG"); err == nil {
		t.Error("sentinel name must be rejected")
	}
}

func TestRoles(t *testing.T) {
	bc, err := New("bc2_outer", "CGATGTA", RoleCallBases, RoleControl)
	if err != nil {
		t.Fatal(err)
	}
	if !bc.HasRole(RoleCallBases) || !bc.HasRole(RoleControl) || bc.HasRole(RolePlain) {
		t.Error("role tags not preserved")
	}
}
