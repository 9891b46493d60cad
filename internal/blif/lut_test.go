package blif

import "testing"

func tableBits(l *LutInstance) []bool {
	out := make([]bool, l.table.Len())
	l.table.Each(func(i int, v bool) { out[i] = v })
	return out
}

func TestPopulateOr(t *testing.T) {
	// .names a b c\n-1 1\n1- 1\n.end  => OR of two inputs
	rows := [][]Symbol{
		{DontCare, True, True},
		{True, DontCare, True},
	}
	lut, err := Populate(3, rows)
	if err != nil {
		t.Fatal(err)
	}
	got := tableBits(lut)
	want := []bool{false, true, true, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v (table=%v)", i, got[i], want[i], got)
		}
	}
}

func TestPopulateAllDontCareTrue(t *testing.T) {
	rows := [][]Symbol{{DontCare, DontCare, True}}
	lut, err := Populate(3, rows)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range tableBits(lut) {
		if !v {
			t.Fatalf("bit %d should be true, table=%v", i, tableBits(lut))
		}
	}
}

func TestPopulateInconsistentPolarity(t *testing.T) {
	rows := [][]Symbol{
		{DontCare, True},
		{DontCare, False},
	}
	_, err := Populate(2, rows)
	if _, ok := err.(InconsistentTruthTableEntryError); !ok {
		t.Fatalf("expected InconsistentTruthTableEntryError, got %v", err)
	}
}

func TestPopulateInvalidPolaritySymbol(t *testing.T) {
	rows := [][]Symbol{{DontCare, DontCare}}
	_, err := Populate(2, rows)
	if _, ok := err.(InvalidTruthTableSymbolError); !ok {
		t.Fatalf("expected InvalidTruthTableSymbolError, got %v", err)
	}
}

func TestPopulateRowLengthMismatch(t *testing.T) {
	rows := [][]Symbol{{DontCare, True, True}}
	_, err := Populate(2, rows)
	if _, ok := err.(NetsAndTruthTableMismatchError); !ok {
		t.Fatalf("expected NetsAndTruthTableMismatchError, got %v", err)
	}
}

func TestRotateIdentity(t *testing.T) {
	rows := [][]Symbol{
		{False, True, True},
		{True, False, True},
		{True, True, True},
	}
	lut, err := Populate(3, rows)
	if err != nil {
		t.Fatal(err)
	}
	before := tableBits(lut)
	rotated := lut.Rotate([]int{0, 1})
	for i := 0; i < rotated.Len(); i++ {
		if rotated.Get(i) != before[i] {
			t.Fatalf("identity rotation changed bit %d", i)
		}
	}
}

func TestRotateSwap(t *testing.T) {
	// table [0,1,0,1] as a function of (b0,b1): bit index = b0 | b1<<1
	rows := [][]Symbol{
		{True, False, True}, // b0=1,b1=0 -> index 1
		{True, True, True},  // b0=1,b1=1 -> index 3
	}
	lut, err := Populate(3, rows)
	if err != nil {
		t.Fatal(err)
	}
	rotated := lut.Rotate([]int{1, 0})
	want := []bool{false, false, true, true}
	for i, w := range want {
		if rotated.Get(i) != w {
			t.Fatalf("rotated bit %d = %v, want %v", i, rotated.Get(i), w)
		}
	}
}
