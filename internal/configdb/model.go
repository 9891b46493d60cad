// Package configdb loads the binary configuration database produced by
// earlier toolchain stages and reconstructs the in-memory fabric model:
// blocks, instances, ports, and the routing graph.
package configdb

import "github.com/princeton-csl/bitgen/internal/bitvec"

// InstanceType classifies an Instance's configuration shape.
type InstanceType uint8

const (
	InstanceLUT InstanceType = iota
	InstanceMultimode
	InstanceNonConfigurable
)

func (t InstanceType) String() string {
	switch t {
	case InstanceLUT:
		return "LUT"
	case InstanceMultimode:
		return "MULTIMODE"
	case InstanceNonConfigurable:
		return "NON_CONFIGURABLE"
	default:
		return "UNKNOWN"
	}
}

// PortBit is one bit of a Port: a mapping from connection name to the
// (possibly empty) set of actions that connection applies.
type PortBit struct {
	Index       uint32
	connections map[string][]bitvec.Action
}

func newPortBit(index uint32) *PortBit {
	return &PortBit{Index: index, connections: make(map[string][]bitvec.Action)}
}

// ConnectionAction returns the action list registered for the given
// connection name, and whether it was present at all.
func (b *PortBit) ConnectionAction(name string) ([]bitvec.Action, bool) {
	a, ok := b.connections[name]
	return a, ok
}

// IsHardwired reports whether this bit has at most one possible
// connection, i.e. there is no configurable choice to make.
func (b *PortBit) IsHardwired() bool {
	return len(b.connections) <= 1
}

// Port is a named, fixed-order collection of PortBits.
type Port struct {
	Name string
	Bits []*PortBit
}

// Bit returns the PortBit at the given index, or nil if out of range.
func (p *Port) Bit(i uint32) *PortBit {
	if int(i) >= len(p.Bits) {
		return nil
	}
	return p.Bits[i]
}

// ModeAction is the action list applied when a MULTIMODE instance selects
// the mode it is attached to.
type ModeAction struct {
	Actions []bitvec.Action
}

// InstanceAction is the action list a LUT instance uses to fold its
// rotated truth table into the owning block's bit vector.
type InstanceAction struct {
	LutActions []bitvec.RotateAction
}

// Instance is one sub-component of a Block.
type Instance struct {
	Name   string
	Type   InstanceType
	Ports  map[string]*Port
	Modes  map[string]*ModeAction // MULTIMODE only
	Action *InstanceAction        // LUT only; nil if absent
}

// Port looks up a named port on this instance.
func (i *Instance) Port(name string) *Port {
	return i.Ports[name]
}

// ModeActionFor returns the action list for a named mode, or nil if the
// mode carries none (an absent mode action is a recoverable, logged case).
func (i *Instance) ModeActionFor(name string) *ModeAction {
	return i.Modes[name]
}

// BlockAction declares a block's bit-vector length.
type BlockAction struct {
	ConfigSize uint32
}

// Block is a named fabric building block: it owns Ports and Instances and
// optionally declares the config_size every instance of it is sized to.
type Block struct {
	Name      string
	Ports     map[string]*Port
	Instances map[string]*Instance
	Action    *BlockAction // nil if this block declares no config_size
}

// Port looks up a named port on this block.
func (b *Block) Port(name string) *Port {
	return b.Ports[name]
}

// Instance looks up a named sub-instance on this block.
func (b *Block) Instance(name string) *Instance {
	return b.Instances[name]
}

// ConfigSize returns the block's declared bit-vector length, or 0 if the
// block carries no BlockAction.
func (b *Block) ConfigSize() uint32 {
	if b.Action == nil {
		return 0
	}
	return b.Action.ConfigSize
}

// HeaderAction extends the header with the device-wide bitstream length.
type HeaderAction struct {
	TotalSize uint64
}

// PlacementAction is one rotation-action list copying a block instance's
// bits into the device bitstream at a fabric coordinate.
type PlacementAction struct {
	Actions []bitvec.RotateAction
}
