package configdb

import (
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/princeton-csl/bitgen/internal/xlog"
)

// Database is the fully reconstructed fabric model: blocks, the fabric
// grid of placement actions, and the routing graph. It is immutable once
// ParseDatabase returns successfully (spec.md §3 lifecycles).
type Database struct {
	parsed bool

	Width, Height uint32
	NodeSize      uint64
	Signature     uint64
	Header        *HeaderAction // nil if the file carried no total_size extension

	blocks map[string]*Block

	// placements[x][y][subblock] is the (possibly empty) list of
	// PlacementActions for that fabric coordinate.
	placements [][][][]PlacementAction

	graph *Graph
}

// New returns an empty, unparsed Database.
func New() *Database {
	return &Database{}
}

// Block looks up a named block.
func (d *Database) Block(name string) *Block {
	return d.blocks[name]
}

// Blocks returns the name -> Block mapping.
func (d *Database) Blocks() map[string]*Block {
	return d.blocks
}

// Graph returns the routing graph.
func (d *Database) Graph() *Graph {
	return d.graph
}

// TotalSize returns the device-wide bitstream length declared by the
// header extension, or 0 if absent.
func (d *Database) TotalSize() uint64 {
	if d.Header == nil {
		return 0
	}
	return d.Header.TotalSize
}

// PlacementActions returns the placement-action list at (x, y, subblock),
// or nil if none were declared there (not an error — spec.md §4.4).
func (d *Database) PlacementActions(x, y, subblock uint32) []PlacementAction {
	if int(x) >= len(d.placements) {
		return nil
	}
	col := d.placements[x]
	if int(y) >= len(col) {
		return nil
	}
	row := col[y]
	if int(subblock) >= len(row) {
		return nil
	}
	return row[subblock]
}

func (d *Database) growPlacements(x, y, subblock uint32) {
	for uint32(len(d.placements)) <= x {
		d.placements = append(d.placements, nil)
	}
	for uint32(len(d.placements[x])) <= y {
		d.placements[x] = append(d.placements[x], nil)
	}
	for uint32(len(d.placements[x][y])) <= subblock {
		d.placements[x][y] = append(d.placements[x][y], nil)
	}
}

// ParseDatabase reads and decodes the config database at path. It may be
// called only once per Database.
func (d *Database) ParseDatabase(path string) error {
	if d.parsed {
		return ErrDatabaseAlreadyParsed{}
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrBadFile{err.Error()}
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return ErrBadFile{err.Error()}
	}
	defer m.Unmap()

	buf := []byte(m)
	if len(buf) < 8 {
		return ErrBadFile{"file shorter than magic number"}
	}
	magic := binary.LittleEndian.Uint64(buf[:8])
	if magic != Magic {
		return ErrBadFile{"magic number mismatch"}
	}
	pos := 8

	// header record
	rec, next, err := readRecord(buf, pos)
	if err != nil {
		return err
	}
	if err := d.decodeHeader(rec); err != nil {
		return err
	}
	pos = next

	d.blocks = make(map[string]*Block)
	d.graph = NewGraph(d.NodeSize)

	nPackets := 0
	for {
		rec, next, err := readRecord(buf, pos)
		if err != nil {
			return err
		}
		if rec == nil {
			break // zero-length record terminates the stream
		}
		nblocks, nplace, nedges, err := d.decodePacket(rec)
		if err != nil {
			return err
		}
		xlog.Logger.Debug().Int("packet", nPackets).Int("blocks", nblocks).Int("placements", nplace).Int("edges", nedges).Msg("packet consumed")
		pos = next
		nPackets++
	}

	xlog.Logger.Info().Int("blocks", len(d.blocks)).Int("edges", d.graph.NumEdges()).Msg("config database loaded")
	d.parsed = true
	return nil
}

// readRecord reads one length-prefixed record starting at pos. A
// zero-length record returns (nil, pos+4, nil) to signal the terminator.
func readRecord(buf []byte, pos int) ([]byte, int, error) {
	if pos+4 > len(buf) {
		return nil, 0, ErrBadPacketSize{4, len(buf) - pos}
	}
	length := int(binary.LittleEndian.Uint32(buf[pos:]))
	pos += 4
	if length == 0 {
		return nil, pos, nil
	}
	if pos+length > len(buf) {
		return nil, 0, ErrBadPacketSize{length, len(buf) - pos}
	}
	return buf[pos : pos+length], pos + length, nil
}

func (d *Database) decodeHeader(rec []byte) error {
	c := &cursor{buf: rec}
	var err error
	if d.Width, err = c.u32(); err != nil {
		return err
	}
	if d.Height, err = c.u32(); err != nil {
		return err
	}
	if d.NodeSize, err = c.u64(); err != nil {
		return err
	}
	if d.Signature, err = c.u64(); err != nil {
		return err
	}
	hasAction, err := c.u8()
	if err != nil {
		return err
	}
	if hasAction != 0 {
		total, err := c.u64()
		if err != nil {
			return err
		}
		d.Header = &HeaderAction{TotalSize: total}
	}
	return nil
}

// decodePacket decodes one packet's blocks, placements, and edges, and
// returns the count consumed of each (for diagnostic logging).
func (d *Database) decodePacket(rec []byte) (nblocks, nplace, nedges int, err error) {
	c := &cursor{buf: rec}

	nb, err := c.u32()
	if err != nil {
		return 0, 0, 0, err
	}
	for i := uint32(0); i < nb; i++ {
		b, err := c.block()
		if err != nil {
			return 0, 0, 0, err
		}
		if _, exists := d.blocks[b.Name]; exists {
			return 0, 0, 0, ErrBlockNameConflict{b.Name}
		}
		d.blocks[b.Name] = b
	}

	np, err := c.u32()
	if err != nil {
		return 0, 0, 0, err
	}
	for i := uint32(0); i < np; i++ {
		x, err := c.u32()
		if err != nil {
			return 0, 0, 0, err
		}
		y, err := c.u32()
		if err != nil {
			return 0, 0, 0, err
		}
		subblock, err := c.u32()
		if err != nil {
			return 0, 0, 0, err
		}
		if x >= d.Width || y >= d.Height {
			return 0, 0, 0, ErrBadFile{"placement coordinate outside fabric grid"}
		}
		acts, err := c.rotateActions()
		if err != nil {
			return 0, 0, 0, err
		}
		d.growPlacements(x, y, subblock)
		d.placements[x][y][subblock] = append(d.placements[x][y][subblock], PlacementAction{Actions: acts})
	}

	ne, err := c.u32()
	if err != nil {
		return 0, 0, 0, err
	}
	for i := uint32(0); i < ne; i++ {
		src, err := c.u64()
		if err != nil {
			return 0, 0, 0, err
		}
		sink, err := c.u64()
		if err != nil {
			return 0, 0, 0, err
		}
		acts, err := c.actions()
		if err != nil {
			return 0, 0, 0, err
		}
		d.graph.AddEdgeActions(src, sink, acts)
	}

	return int(nb), int(np), int(ne), nil
}
