package packing

import (
	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/configdb"
	"github.com/princeton-csl/bitgen/internal/xlog"
)

// BitchainManager is the concrete, bit-vector-backed Effects
// implementation: the "bitchain" configuration circuitry spec.md §9 names
// as the first concrete family behind the Effects interface.
type BitchainManager struct {
	instances map[string]*bitvec.Vector
	order     []string
	current   *bitvec.Vector
}

// NewBitchainManager returns an empty manager, ready to receive blocks.
func NewBitchainManager() *BitchainManager {
	return &BitchainManager{instances: map[string]*bitvec.Vector{}}
}

// NumBlockInstances returns the number of block instances created so far.
func (b *BitchainManager) NumBlockInstances() int {
	return len(b.instances)
}

// BlockInstance looks up a block instance's bit vector by name.
func (b *BitchainManager) BlockInstance(name string) (*bitvec.Vector, bool) {
	v, ok := b.instances[name]
	return v, ok
}

// EnterBlock implements Effects.
func (b *BitchainManager) EnterBlock(instanceName string, size uint32) error {
	if _, exists := b.instances[instanceName]; exists {
		return InternalError{"duplicate block instance name " + instanceName}
	}
	v := bitvec.New(int(size))
	b.instances[instanceName] = v
	b.order = append(b.order, instanceName)
	b.current = v
	return nil
}

// SelectMode implements Effects.
func (b *BitchainManager) SelectMode(actions []bitvec.Action) error {
	for _, a := range actions {
		if err := a.Apply(b.current); err != nil {
			return err
		}
	}
	return nil
}

// SelectPortConnections implements Effects.
func (b *BitchainManager) SelectPortConnections(bit *configdb.PortBit, connName string) error {
	actions, present := bit.ConnectionAction(connName)
	if !present {
		if connName == "open" || bit.IsHardwired() {
			return nil
		}
		xlog.Logger.Warn().Str("connection", connName).Msg("no connection action for port bit")
		return nil
	}
	for _, a := range actions {
		if err := a.Apply(b.current); err != nil {
			return err
		}
	}
	return nil
}

// ConfigureLUT implements Effects.
func (b *BitchainManager) ConfigureLUT(rotated *bitvec.Vector, lutActions []bitvec.RotateAction) error {
	if lutActions == nil {
		xlog.Logger.Warn().Msg("LUT instance has no rotation actions")
		return nil
	}
	for _, a := range lutActions {
		if err := a.Apply(b.current, rotated); err != nil {
			return err
		}
	}
	return nil
}
