package bitstream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/princeton-csl/bitgen/internal/bitvec"
)

func TestWriteMemhScenario(t *testing.T) {
	v := bitvec.New(8)
	bits := []bool{true, false, true, true, false, true, true, false}
	for i, b := range bits {
		v.Set(i, b)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "out.memh")
	if err := WriteMemh(path, v, 4); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "6 b\n" {
		t.Fatalf("memh output = %q, want %q", got, "6 b\n")
	}
}

func TestWriteMemhZeroLength(t *testing.T) {
	v := bitvec.New(0)
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.memh")
	if err := WriteMemh(path, v, 16); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestWriteMemhBadAlignment(t *testing.T) {
	v := bitvec.New(8)
	err := WriteMemh(filepath.Join(t.TempDir(), "x.memh"), v, 7)
	if _, ok := err.(ErrBadAlignment); !ok {
		t.Fatalf("expected ErrBadAlignment, got %v", err)
	}
}

func TestWriteMemhFourPerLine(t *testing.T) {
	v := bitvec.New(40)
	for i := 0; i < 40; i += 8 {
		v.Set(i, true)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.memh")
	if err := WriteMemh(path, v, 8); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := 0
	for _, c := range got {
		if c == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines for 5 words at 4/line, got %d (%q)", lines, got)
	}
}
