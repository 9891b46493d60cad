// Package placement applies a placement trace to the device bitstream:
// for every placed block instance, it copies that instance's bit vector
// into the device bitstream at its fabric coordinate.
package placement

import "fmt"

// ErrNullConfigDB is returned when Apply is called without a database.
type ErrNullConfigDB struct{}

func (ErrNullConfigDB) Error() string { return "placement: config database is nil" }

// ErrNullPackMgr is returned when Apply is called without a packing
// manager.
type ErrNullPackMgr struct{}

func (ErrNullPackMgr) Error() string { return "placement: packing manager is nil" }

// ErrBadFile wraps a failure to open or read the placement trace file.
type ErrBadFile struct{ Reason string }

func (e ErrBadFile) Error() string { return "placement: bad file: " + e.Reason }

// ErrPlacingFailed covers a line whose name does not resolve to a known
// block instance.
type ErrPlacingFailed struct{ Name string }

func (e ErrPlacingFailed) Error() string {
	return fmt.Sprintf("placement: unknown block instance %q", e.Name)
}

// ErrMismatchWithPackingResult is returned when the number of
// successfully placed lines does not equal the packing manager's block
// instance count.
type ErrMismatchWithPackingResult struct {
	Placed, Expected int
}

func (e ErrMismatchWithPackingResult) Error() string {
	return fmt.Sprintf("placement: placed %d block instances, packing produced %d", e.Placed, e.Expected)
}
