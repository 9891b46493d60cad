package packing

import (
	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/configdb"
)

// Effects is the capability set the packing state machine drives. It is
// kept separate from the state machine itself (Parser) so that a future
// "configuration circuitry" family can be added without touching the
// XML-walking skeleton (spec.md §9 REDESIGN FLAGS).
type Effects interface {
	// EnterBlock allocates the bit vector for a newly encountered
	// top-level block instance.
	EnterBlock(instanceName string, size uint32) error

	// SelectMode applies a multi-mode instance's mode actions to the
	// current top-level block instance's bit vector.
	SelectMode(actions []bitvec.Action) error

	// SelectPortConnections applies a single PortBit's named connection
	// action to the current top-level block instance's bit vector.
	SelectPortConnections(bit *configdb.PortBit, connName string) error

	// ConfigureLUT folds a rotated LUT truth table into the current
	// top-level block instance's bit vector via the instance's
	// lut-rotation actions.
	ConfigureLUT(rotated *bitvec.Vector, lutActions []bitvec.RotateAction) error
}
