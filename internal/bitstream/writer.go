package bitstream

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/xlog"
)

func widthSupported(width int) bool {
	switch width {
	case 4, 8, 16, 32, 64:
		return true
	default:
		return false
	}
}

// WriteMemh renders v as a hexadecimal memory-initialization file at path.
// It walks v from the highest bit index downward, packing bits lsb-first
// into words of the given width, hex-rendering each word left-padded to
// width/4 digits, and emitting 4 words per line.
func WriteMemh(path string, v *bitvec.Vector, width int) error {
	if !widthSupported(width) {
		return ErrBadAlignment{width}
	}

	words := packWords(v, width)

	f, err := os.Create(path)
	if err != nil {
		return ErrBadFile{err.Error()}
	}
	defer f.Close()
	if err := lockExclusive(f); err != nil {
		return ErrBadFile{err.Error()}
	}
	defer unlockExclusive(f)

	w := bufio.NewWriter(f)
	digits := width / 4
	for i := 0; i < len(words); i += 4 {
		end := i + 4
		if end > len(words) {
			end = len(words)
		}
		line := make([]string, end-i)
		for j, word := range words[i:end] {
			line[j] = fmt.Sprintf("%0*x", digits, word)
		}
		if _, err := w.WriteString(strings.Join(line, " ")); err != nil {
			return ErrBadFile{err.Error()}
		}
		if _, err := w.WriteString("\n"); err != nil {
			return ErrBadFile{err.Error()}
		}
	}

	if err := w.Flush(); err != nil {
		return ErrBadFile{err.Error()}
	}
	xlog.Logger.Debug().Int("bits", v.Len()).Int("width", width).Msg("memory image written")
	return nil
}

// packWords walks v from the highest bit index downward, filling each
// word lsb-first.
func packWords(v *bitvec.Vector, width int) []uint64 {
	if v.Len() == 0 {
		return nil
	}
	var words []uint64
	var word uint64
	var filled int
	v.EachReverse(func(_ int, val bool) {
		if val {
			word |= 1 << uint(filled)
		}
		filled++
		if filled == width {
			words = append(words, word)
			word = 0
			filled = 0
		}
	})
	if filled > 0 {
		words = append(words, word)
	}
	return words
}
