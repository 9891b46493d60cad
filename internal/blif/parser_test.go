package blif

import (
	"strings"
	"testing"
)

func TestParseMinimalOr(t *testing.T) {
	src := ".model top\n.inputs a b\n.outputs c\n.names a b c\n-1 1\n1- 1\n.end\n"
	m := NewManager()
	if err := m.Parse(strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	lut, ok := m.Lut("c")
	if !ok {
		t.Fatal("expected LUT for net c")
	}
	want := []bool{false, true, true, true}
	for i, w := range want {
		if lut.Table().Get(i) != w {
			t.Fatalf("bit %d = %v, want %v", i, lut.Table().Get(i), w)
		}
	}
}

func TestParseMultipleModelsFails(t *testing.T) {
	src := ".model a\n.end\n.model b\n.end\n"
	m := NewManager()
	err := m.Parse(strings.NewReader(src))
	if _, ok := err.(MultipleModelsError); !ok {
		t.Fatalf("expected MultipleModelsError, got %v", err)
	}
}

func TestParseDuplicateLutNames(t *testing.T) {
	src := ".model top\n.names a b\n1 1\n.names a b\n1 1\n.end\n"
	m := NewManager()
	err := m.Parse(strings.NewReader(src))
	if _, ok := err.(LutNameConflictError); !ok {
		t.Fatalf("expected LutNameConflictError, got %v", err)
	}
}

func TestParseLatchSubcktBlackboxIgnored(t *testing.T) {
	src := ".model top\n.latch a b 0\n.subckt sub x=a y=b\n.blackbox\n.end\n"
	m := NewManager()
	if err := m.Parse(strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
}
