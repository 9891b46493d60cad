package placement

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/configdb"
)

type fixtureEncoder struct{ buf bytes.Buffer }

func (e *fixtureEncoder) u8(v byte)    { e.buf.WriteByte(v) }
func (e *fixtureEncoder) u32(v uint32) { binary.Write(&e.buf, binary.LittleEndian, v) }
func (e *fixtureEncoder) u64(v uint64) { binary.Write(&e.buf, binary.LittleEndian, v) }

func writeRec(buf *bytes.Buffer, rec []byte) {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(rec)))
	buf.Write(l[:])
	buf.Write(rec)
}

// buildDatabaseWithPlacement constructs a config database with a single
// placement-action list at (x, y, subblock).
func buildDatabaseWithPlacement(t *testing.T, x, y, subblock uint32, ra bitvec.RotateAction) *configdb.Database {
	t.Helper()
	var file bytes.Buffer
	var magic [8]byte
	binary.LittleEndian.PutUint64(magic[:], configdb.Magic)
	file.Write(magic[:])

	var hdr fixtureEncoder
	hdr.u32(x + 1)
	hdr.u32(y + 1)
	hdr.u64(1)
	hdr.u64(0)
	hdr.u8(0)
	writeRec(&file, hdr.buf.Bytes())

	var pkt fixtureEncoder
	pkt.u32(0) // 0 blocks
	pkt.u32(1) // 1 placement
	pkt.u32(x)
	pkt.u32(y)
	pkt.u32(subblock)
	pkt.u32(1) // 1 rotate action
	pkt.u32(uint32(ra.Offset))
	pkt.u32(uint32(ra.Width))
	pkt.u32(uint32(ra.Begin))
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

func writePlacementFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "place.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
