package packing

import (
	"encoding/xml"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/blif"
	"github.com/princeton-csl/bitgen/internal/configdb"
	"github.com/princeton-csl/bitgen/internal/xlog"
)

var instanceSpecRE = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)
var connectionTokenRE = regexp.MustCompile(`^(\w+(?:\[0\])?\.\w+\[\d+\])->.*$`)

type State uint8

const (
	// StateInit accepts exactly one wrapper <block> (the document root,
	// not a tile instance) and transitions to StateIdle without entering
	// it as a block.
	StateInit State = iota
	// StateIdle awaits the wrapper's <block> children, each of which is a
	// real top-level tile instance entered via enterTopBlock.
	StateIdle
	StateTopBlock
	StateNestedLut
	StateNestedLutWire
	StateNestedMultimode
	StateNestedCustom
	StateInnerLut
	StateInnerMultimode
	StatePortContainer
	StatePort
	StateRotationMap
	StateIgnore
)

type elemFrame struct {
	kind State

	block    *configdb.Block
	instance *configdb.Instance
	port     *configdb.Port
	portSub  SubState

	// carried from a StateNestedLut/StateNestedLutWire frame down onto its
	// StateInnerLut child so port_rotation_map can reach the right LUT.
	blifLUT *blif.LutInstance

	ownerKind State // the frame kind that owned this StatePort's container
	text      strings.Builder
}

// Parser walks the packing-result XML stream, driving the primary
// state/substate machine of spec.md §4.3 and dispatching every resolved
// effect through an Effects implementation.
type Parser struct {
	db      *configdb.Database
	blif    *blif.Manager
	effects Effects

	stack []*elemFrame
}

// NewParser builds a Parser over the given configuration database, BLIF
// manager, and Effects sink.
func NewParser(db *configdb.Database, blifMgr *blif.Manager, effects Effects) *Parser {
	return &Parser{db: db, blif: blifMgr, effects: effects, stack: []*elemFrame{{kind: StateInit}}}
}

// Parse consumes the packing-result XML stream from r.
func (p *Parser) Parse(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return XMLError{err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.start(t); err != nil {
				return err
			}
		case xml.EndElement:
			if err := p.end(t); err != nil {
				return err
			}
		case xml.CharData:
			p.chars(t)
		}
	}
	if len(p.stack) != 1 {
		return IncompleteError{}
	}
	return nil
}

func attrOf(t xml.StartElement, name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (p *Parser) top() *elemFrame { return p.stack[len(p.stack)-1] }
func (p *Parser) push(f *elemFrame) { p.stack = append(p.stack, f) }
func (p *Parser) pop() *elemFrame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

func isPortContainerName(name string) bool {
	return name == "inputs" || name == "outputs" || name == "clocks"
}

func subStateFor(container string) SubState {
	switch container {
	case "inputs":
		return SubInputPort
	case "outputs":
		return SubOutputPort
	case "clocks":
		return SubClockPort
	}
	return SubNone
}

func (p *Parser) start(t xml.StartElement) error {
	name := t.Name.Local
	top := p.top()

	switch top.kind {
	case StateInit:
		if name != "block" {
			return FormatError{"expected wrapper <block>, got " + name}
		}
		p.push(&elemFrame{kind: StateIdle})

	case StateIdle:
		switch {
		case name == "block":
			return p.enterTopBlock(t)
		case isPortContainerName(name):
			p.push(&elemFrame{kind: StateIgnore})
		default:
			return FormatError{"unexpected top-level element " + name}
		}

	case StateTopBlock:
		switch {
		case name == "block":
			return p.enterNestedBlock(t, top)
		case isPortContainerName(name):
			p.push(&elemFrame{kind: StatePortContainer, block: top.block, portSub: subStateFor(name)})
		default:
			return FormatError{"unexpected element " + name + " inside block"}
		}

	case StateNestedLut, StateNestedLutWire, StateNestedMultimode, StateNestedCustom:
		switch {
		case name == "block":
			return p.enterInnerBlock(t, top)
		case isPortContainerName(name):
			p.push(&elemFrame{kind: StatePortContainer, instance: top.instance, portSub: subStateFor(name), ownerKind: top.kind})
		default:
			return FormatError{"unexpected element " + name + " inside instance"}
		}

	case StatePortContainer:
		if name == "port" {
			portName, ok := attrOf(t, "name")
			if !ok {
				return FormatError{"<port> missing name attribute"}
			}
			var port *configdb.Port
			if top.block != nil {
				port = top.block.Port(portName)
			} else if top.instance != nil {
				port = top.instance.Port(portName)
			}
			if port == nil {
				return MissingInConfigDBError{"port " + portName}
			}
			p.push(&elemFrame{kind: StatePort, port: port, portSub: top.portSub, ownerKind: top.ownerKind})
			return nil
		}
		return FormatError{"unexpected element " + name + " inside port container"}

	case StateInnerLut, StateInnerMultimode:
		if name == "port_rotation_map" {
			p.push(&elemFrame{kind: StateRotationMap, blifLUT: top.blifLUT, instance: top.instance})
			return nil
		}
		p.push(&elemFrame{kind: StateIgnore})

	case StateIgnore, StatePort, StateRotationMap:
		p.push(&elemFrame{kind: StateIgnore})

	default:
		p.push(&elemFrame{kind: StateIgnore})
	}
	return nil
}

func (p *Parser) enterTopBlock(t xml.StartElement) error {
	instanceAttr, ok := attrOf(t, "instance")
	if !ok {
		return FormatError{"<block> missing instance attribute"}
	}
	m := instanceSpecRE.FindStringSubmatch(instanceAttr)
	if m == nil {
		return FormatError{"instance attribute " + instanceAttr + " does not match type[idx]"}
	}
	blockType := m[1]
	blk := p.db.Block(blockType)
	if blk == nil {
		return MissingInConfigDBError{"block type " + blockType}
	}
	nameAttr, ok := attrOf(t, "name")
	if !ok {
		return FormatError{"<block> missing name attribute"}
	}
	if err := p.effects.EnterBlock(nameAttr, blk.ConfigSize()); err != nil {
		return err
	}
	p.push(&elemFrame{kind: StateTopBlock, block: blk})
	return nil
}

func (p *Parser) enterNestedBlock(t xml.StartElement, parent *elemFrame) error {
	instanceAttr, ok := attrOf(t, "instance")
	if !ok {
		return FormatError{"<block> missing instance attribute"}
	}
	m := instanceSpecRE.FindStringSubmatch(instanceAttr)
	if m == nil {
		return FormatError{"instance attribute " + instanceAttr + " does not match type[idx]"}
	}
	instanceType := m[1]
	nameAttr, _ := attrOf(t, "name")
	modeAttr, _ := attrOf(t, "mode")

	// Instance records are keyed by type, not by the physical instance
	// spec: every lut4[0], lut4[1], ... in a block shares one record.
	inst := parent.block.Instance(instanceType)
	if inst == nil {
		return MissingInConfigDBError{"instance type " + instanceType}
	}

	if nameAttr == "open" && modeAttr == "wire" {
		p.push(&elemFrame{kind: StateNestedLutWire, instance: inst})
		return nil
	}
	if nameAttr == "open" {
		// unused slot; still push a frame so children are structurally
		// consumed, but no LUT/mode resolution happens.
		switch inst.Type {
		case configdb.InstanceMultimode:
			p.push(&elemFrame{kind: StateNestedMultimode, instance: inst})
		default:
			p.push(&elemFrame{kind: StateNestedCustom, instance: inst})
		}
		return nil
	}

	switch inst.Type {
	case configdb.InstanceLUT:
		lut, ok := p.blif.Lut(nameAttr)
		if !ok {
			return MissingInSynthMgrError{nameAttr}
		}
		p.push(&elemFrame{kind: StateNestedLut, instance: inst, blifLUT: lut})
	case configdb.InstanceMultimode:
		if ma := inst.ModeActionFor(modeAttr); ma != nil {
			if err := p.effects.SelectMode(ma.Actions); err != nil {
				return err
			}
		} else {
			xlog.Logger.Warn().Str("instance", instanceAttr).Str("mode", modeAttr).Msg("no mode action for selected mode")
		}
		p.push(&elemFrame{kind: StateNestedMultimode, instance: inst})
	default:
		p.push(&elemFrame{kind: StateNestedCustom, instance: inst})
	}
	return nil
}

func (p *Parser) enterInnerBlock(t xml.StartElement, parent *elemFrame) error {
	switch parent.kind {
	case StateNestedLut, StateNestedLutWire:
		p.push(&elemFrame{kind: StateInnerLut, instance: parent.instance, blifLUT: parent.blifLUT})
	case StateNestedMultimode:
		p.push(&elemFrame{kind: StateInnerMultimode, instance: parent.instance})
	default:
		p.push(&elemFrame{kind: StateIgnore})
	}
	return nil
}

func (p *Parser) chars(t xml.CharData) {
	top := p.top()
	if top.kind == StatePort || top.kind == StateRotationMap {
		top.text.Write(t)
	}
}

func (p *Parser) end(xml.EndElement) error {
	f := p.pop()
	switch f.kind {
	case StatePort:
		return p.closePort(f)
	case StateRotationMap:
		return p.closeRotationMap(f)
	}
	return nil
}

// closePort implements spec.md §4.3's per-port character-data handling:
// split on whitespace, resolve each token to a connection name (or the
// literal "open"), and apply that connection's actions bit by bit. A
// LUT_WIRE's input port instead builds a synthetic wire truth table.
func (p *Parser) closePort(f *elemFrame) error {
	tokens := strings.Fields(f.text.String())

	if f.ownerKind == StateNestedLutWire && f.portSub == SubInputPort {
		return p.processLutWire(f, tokens)
	}

	for i, tok := range tokens {
		connName, err := resolveToken(tok)
		if err != nil {
			return err
		}
		bit := f.port.Bit(uint32(i))
		if bit == nil {
			return MissingInConfigDBError{"port bit index"}
		}
		if err := p.effects.SelectPortConnections(bit, connName); err != nil {
			return err
		}
	}
	return nil
}

func resolveToken(tok string) (string, error) {
	if tok == "open" {
		return "open", nil
	}
	m := connectionTokenRE.FindStringSubmatch(tok)
	if m == nil {
		return "", FormatError{"malformed connection token " + tok}
	}
	return m[1], nil
}

// processLutWire builds the truth table of a pass-through wire: the first
// non-"open" input index k drives bit j of a 2^n table to bit k of j. If
// every input is "open" there is no driver and that is fatal.
func (p *Parser) processLutWire(f *elemFrame, tokens []string) error {
	n := len(tokens)
	k := -1
	for i, tok := range tokens {
		if tok != "open" {
			k = i
			break
		}
	}
	if k < 0 {
		return FormatError{"LUT_WIRE with every input open"}
	}
	table := bitvec.New(1 << uint(n))
	table.Each(func(j int, _ bool) {
		table.Set(j, (j>>uint(k))&1 != 0)
	})

	var lutActions []bitvec.RotateAction
	if f.instance.Action != nil {
		lutActions = f.instance.Action.LutActions
	}
	return p.effects.ConfigureLUT(table, lutActions)
}

func (p *Parser) closeRotationMap(f *elemFrame) error {
	tokens := strings.Fields(f.text.String())
	m := make([]int, len(tokens))
	for i, tok := range tokens {
		if tok == "open" {
			m[i] = -1
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return FormatError{"malformed port_rotation_map token " + tok}
		}
		m[i] = v
	}
	if f.blifLUT == nil {
		return InternalError{"port_rotation_map outside a LUT instance"}
	}
	rotated := f.blifLUT.Rotate(m)

	var lutActions []bitvec.RotateAction
	if f.instance != nil && f.instance.Action != nil {
		lutActions = f.instance.Action.LutActions
	}
	return p.effects.ConfigureLUT(rotated, lutActions)
}
