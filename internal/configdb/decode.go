package configdb

import (
	"encoding/binary"

	"github.com/princeton-csl/bitgen/internal/bitvec"
)

// cursor is a bounds-checked reader over an in-memory record, mirroring
// the way wagon's readpos.ReadPos tracks a running position over an
// io.Reader, generalized here to index a byte slice directly (the file is
// mmap'd in full by the caller, so there is no streaming reader to wrap).
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) u8() (byte, error) {
	if c.remaining() < 1 {
		return 0, ErrPacketIncomplete{"u8"}
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) u32() (uint32, error) {
	if c.remaining() < 4 {
		return 0, ErrPacketIncomplete{"u32"}
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) u64() (uint64, error) {
	if c.remaining() < 8 {
		return 0, ErrPacketIncomplete{"u64"}
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, ErrPacketIncomplete{"bytes"}
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) str() (string, error) {
	n, err := c.u32()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) actions() ([]bitvec.Action, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	out := make([]bitvec.Action, n)
	for i := range out {
		off, err := c.u32()
		if err != nil {
			return nil, err
		}
		width, err := c.u32()
		if err != nil {
			return nil, err
		}
		val, err := c.u64()
		if err != nil {
			return nil, err
		}
		out[i] = bitvec.Action{Offset: int(off), Width: int(width), Value: val}
	}
	return out, nil
}

func (c *cursor) rotateActions() ([]bitvec.RotateAction, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	out := make([]bitvec.RotateAction, n)
	for i := range out {
		off, err := c.u32()
		if err != nil {
			return nil, err
		}
		width, err := c.u32()
		if err != nil {
			return nil, err
		}
		begin, err := c.u32()
		if err != nil {
			return nil, err
		}
		out[i] = bitvec.RotateAction{Offset: int(off), Width: int(width), Begin: int(begin)}
	}
	return out, nil
}

// port decodes a Port record: name, then a fixed-order list of bits, each
// carrying its connection-name -> action-list map.
func (c *cursor) port() (*Port, error) {
	name, err := c.str()
	if err != nil {
		return nil, err
	}
	nbits, err := c.u32()
	if err != nil {
		return nil, err
	}
	p := &Port{Name: name, Bits: make([]*PortBit, nbits)}
	for i := range p.Bits {
		bit := newPortBit(uint32(i))
		nconn, err := c.u32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < nconn; j++ {
			cname, err := c.str()
			if err != nil {
				return nil, err
			}
			present, err := c.u8()
			if err != nil {
				return nil, err
			}
			if present != 0 {
				acts, err := c.actions()
				if err != nil {
					return nil, err
				}
				bit.connections[cname] = acts
			} else {
				bit.connections[cname] = nil
			}
		}
		p.Bits[i] = bit
	}
	return p, nil
}

func (c *cursor) ports() (map[string]*Port, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Port, n)
	for i := uint32(0); i < n; i++ {
		p, err := c.port()
		if err != nil {
			return nil, err
		}
		out[p.Name] = p
	}
	return out, nil
}

func (c *cursor) instance() (*Instance, error) {
	name, err := c.str()
	if err != nil {
		return nil, err
	}
	typByte, err := c.u8()
	if err != nil {
		return nil, err
	}
	if typByte > uint8(InstanceNonConfigurable) {
		return nil, ErrPacketDecodeFailed{"invalid instance type"}
	}
	ports, err := c.ports()
	if err != nil {
		return nil, err
	}
	inst := &Instance{Name: name, Type: InstanceType(typByte), Ports: ports, Modes: map[string]*ModeAction{}}

	hasAction, err := c.u8()
	if err != nil {
		return nil, err
	}
	if hasAction != 0 {
		lutActions, err := c.rotateActions()
		if err != nil {
			return nil, err
		}
		inst.Action = &InstanceAction{LutActions: lutActions}
	}

	nmodes, err := c.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < nmodes; i++ {
		mname, err := c.str()
		if err != nil {
			return nil, err
		}
		present, err := c.u8()
		if err != nil {
			return nil, err
		}
		if present != 0 {
			acts, err := c.actions()
			if err != nil {
				return nil, err
			}
			inst.Modes[mname] = &ModeAction{Actions: acts}
		} else {
			inst.Modes[mname] = nil
		}
	}
	return inst, nil
}

func (c *cursor) block() (*Block, error) {
	name, err := c.str()
	if err != nil {
		return nil, err
	}
	hasAction, err := c.u8()
	if err != nil {
		return nil, err
	}
	b := &Block{Name: name, Instances: map[string]*Instance{}}
	if hasAction != 0 {
		size, err := c.u32()
		if err != nil {
			return nil, err
		}
		b.Action = &BlockAction{ConfigSize: size}
	}
	ports, err := c.ports()
	if err != nil {
		return nil, err
	}
	b.Ports = ports

	ninst, err := c.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < ninst; i++ {
		inst, err := c.instance()
		if err != nil {
			return nil, err
		}
		b.Instances[inst.Name] = inst
	}
	return b, nil
}
