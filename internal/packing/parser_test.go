package packing

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/blif"
	"github.com/princeton-csl/bitgen/internal/configdb"
)

func TestResolveToken(t *testing.T) {
	name, err := resolveToken("blk[0].in[2]->net5")
	if err != nil {
		t.Fatal(err)
	}
	if name != "blk[0].in[2]" {
		t.Fatalf("got %q", name)
	}
	if _, err := resolveToken("garbage"); err == nil {
		t.Fatal("expected error for malformed token")
	}
	open, err := resolveToken("open")
	if err != nil || open != "open" {
		t.Fatalf("open token mishandled: %v %v", open, err)
	}
}

type recordingEffects struct {
	entered  []string
	modes    [][]bitvec.Action
	luts     []*bitvec.Vector
	portSeen []string
}

func (r *recordingEffects) EnterBlock(name string, size uint32) error {
	r.entered = append(r.entered, name)
	return nil
}
func (r *recordingEffects) SelectMode(actions []bitvec.Action) error {
	r.modes = append(r.modes, actions)
	return nil
}
func (r *recordingEffects) SelectPortConnections(bit *configdb.PortBit, connName string) error {
	r.portSeen = append(r.portSeen, connName)
	return nil
}
func (r *recordingEffects) ConfigureLUT(rotated *bitvec.Vector, lutActions []bitvec.RotateAction) error {
	r.luts = append(r.luts, rotated)
	return nil
}

// fixtureEncoder builds a minimal config-database fixture using the same
// wire layout configdb/decode.go reads, just enough to exercise the
// packing parser's block/instance/port resolution.
type fixtureEncoder struct{ buf bytes.Buffer }

func (e *fixtureEncoder) u8(v byte)    { e.buf.WriteByte(v) }
func (e *fixtureEncoder) u32(v uint32) { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *fixtureEncoder) u64(v uint64) { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *fixtureEncoder) str(s string) { e.u32(uint32(len(s))); e.buf.WriteString(s) }
func (e *fixtureEncoder) emptyPorts()  { e.u32(0) }

func writeRec(buf *bytes.Buffer, rec []byte) {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(rec)))
	buf.Write(l[:])
	buf.Write(rec)
}

func buildOneLutBlockDatabase(t *testing.T) *configdb.Database {
	t.Helper()
	var file bytes.Buffer
	var magic [8]byte
	binary.LittleEndian.PutUint64(magic[:], configdb.Magic)
	file.Write(magic[:])

	var hdr fixtureEncoder
	hdr.u32(1)
	hdr.u32(1)
	hdr.u64(1)
	hdr.u64(0)
	hdr.u8(0)
	writeRec(&file, hdr.buf.Bytes())

	var pkt fixtureEncoder
	pkt.u32(1) // 1 block
	pkt.str("CLB")
	pkt.u8(0) // no BlockAction
	pkt.emptyPorts()
	pkt.u32(1) // 1 instance
	pkt.str("lut4")
	pkt.u8(0) // type = LUT
	// one port "in" with zero bits
	pkt.u32(1)
	pkt.str("in")
	pkt.u32(0) // nbits
	pkt.u8(0)  // no InstanceAction
	pkt.u32(0) // no modes

	pkt.u32(0) // 0 placements
	pkt.u32(0) // 0 edges
	writeRec(&file, pkt.buf.Bytes())
	writeRec(&file, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "db.bin")
	if err := os.WriteFile(path, file.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	db := configdb.New()
	if err := db.ParseDatabase(path); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestParserLutWire(t *testing.T) {
	db := buildOneLutBlockDatabase(t)
	bm := blif.NewManager()

	xmlDoc := `<block>
	  <block name="clb0" instance="CLB[0]">
	    <block name="open" instance="lut4[0]" mode="wire">
	      <inputs><port name="in">blk.out[0]->net1</port></inputs>
	    </block>
	  </block>
	</block>`

	effects := &recordingEffects{}
	p := NewParser(db, bm, effects)
	if err := p.Parse(strings.NewReader(xmlDoc)); err != nil {
		t.Fatal(err)
	}
	if len(effects.entered) != 1 || effects.entered[0] != "clb0" {
		t.Fatalf("unexpected EnterBlock calls: %v", effects.entered)
	}
	if len(effects.luts) != 1 {
		t.Fatalf("expected one wire truth table, got %d", len(effects.luts))
	}
	table := effects.luts[0]
	if table.Len() != 2 {
		t.Fatalf("expected 2-entry wire table, got %d", table.Len())
	}
	if table.Get(0) != false || table.Get(1) != true {
		t.Fatalf("wire table = [%v %v], want [false true]", table.Get(0), table.Get(1))
	}
}

func TestParserMissingBlockType(t *testing.T) {
	db := buildOneLutBlockDatabase(t)
	bm := blif.NewManager()
	xmlDoc := `<block><block name="x" instance="NOPE[0]"></block></block>`
	err := NewParser(db, bm, &recordingEffects{}).Parse(strings.NewReader(xmlDoc))
	if _, ok := err.(MissingInConfigDBError); !ok {
		t.Fatalf("expected MissingInConfigDBError, got %v", err)
	}
}
