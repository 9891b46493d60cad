// Package blif parses BLIF logic files and reconstructs LUT truth tables
// from their sum-of-products cover entries.
package blif

import (
	"fmt"

	"github.com/princeton-csl/bitgen/internal/bitvec"
)

// Symbol is one cell of a BLIF cover row.
type Symbol uint8

const (
	True Symbol = iota
	False
	DontCare
	Unknown
)

// LutInstance is a bit vector of length 2^n holding an n-input LUT's
// truth table.
type LutInstance struct {
	table *bitvec.Vector
	n     int
}

// NumInputs returns the number of logical inputs this LUT was populated
// with.
func (l *LutInstance) NumInputs() int { return l.n }

// Table exposes the raw truth table.
func (l *LutInstance) Table() *bitvec.Vector { return l.table }

// InvalidTruthTableSymbolError is returned when the polarity column of the
// first cover row is neither True nor False.
type InvalidTruthTableSymbolError struct{ Symbol Symbol }

func (e InvalidTruthTableSymbolError) Error() string {
	return fmt.Sprintf("blif: invalid truth table polarity symbol %d", e.Symbol)
}

// InconsistentTruthTableEntryError is returned when a later row's
// polarity column disagrees with the first row's.
type InconsistentTruthTableEntryError struct{ Row int }

func (e InconsistentTruthTableEntryError) Error() string {
	return fmt.Sprintf("blif: row %d has inconsistent truth table polarity", e.Row)
}

// NetsAndTruthTableMismatchError is returned when a cover row's length
// does not match num_nets.
type NetsAndTruthTableMismatchError struct{ Row, Got, Want int }

func (e NetsAndTruthTableMismatchError) Error() string {
	return fmt.Sprintf("blif: row %d has %d columns, want %d", e.Row, e.Got, e.Want)
}

// Populate constructs the truth table of an (numNets-1)-input LUT from a
// sum-of-products cover. The polarity of the rule (ON-set vs OFF-set) is
// taken from the last column of the first row; every later row must agree.
func Populate(numNets int, soCover [][]Symbol) (*LutInstance, error) {
	n := numNets - 1
	size := 1 << uint(n)
	table := bitvec.New(size)

	var polarity Symbol
	polaritySet := false

	for rowIdx, row := range soCover {
		if len(row) != numNets {
			return nil, NetsAndTruthTableMismatchError{rowIdx, len(row), numNets}
		}
		rowPolarity := row[numNets-1]

		if !polaritySet {
			if rowPolarity != True && rowPolarity != False {
				return nil, InvalidTruthTableSymbolError{rowPolarity}
			}
			polarity = rowPolarity
			if polarity == True {
				// table already zero-initialized
			} else {
				table.Each(func(i int, _ bool) { table.Set(i, true) })
			}
			polaritySet = true
		} else if rowPolarity != polarity {
			return nil, InconsistentTruthTableEntryError{rowIdx}
		}

		indices := matchingIndices(row[:n])
		value := polarity == True
		for _, idx := range indices {
			table.Set(idx, value)
		}
	}

	return &LutInstance{table: table, n: n}, nil
}

// matchingIndices computes the set of input indices a cover row matches:
// True forces the bit high, False forces it low, DontCare branches both.
func matchingIndices(symbols []Symbol) []int {
	indices := []int{0}
	for k, s := range symbols {
		switch s {
		case True:
			for i := range indices {
				indices[i] |= 1 << uint(k)
			}
		case False:
			// bit k stays 0
		case DontCare:
			doubled := make([]int, len(indices)*2)
			copy(doubled, indices)
			for i, idx := range indices {
				doubled[len(indices)+i] = idx | (1 << uint(k))
			}
			indices = doubled
		}
	}
	return indices
}

// Rotate produces a new bit vector of length 2^len(m) in which destination
// index j takes the source bit whose index has, for each rotation entry
// m[k] = b >= 0, bit b equal to bit k of j. Entries b < 0 ("open") mean the
// input is unused and contribute nothing (fixed at 0) to the source index.
func (l *LutInstance) Rotate(m []int) *bitvec.Vector {
	dst := bitvec.New(1 << uint(len(m)))
	dst.Each(func(j int, _ bool) {
		src := 0
		for k, b := range m {
			if b < 0 {
				continue
			}
			bit := (j >> uint(k)) & 1
			src |= bit << uint(b)
		}
		dst.Set(j, l.table.Get(src))
	})
	return dst
}
