package routing

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/princeton-csl/bitgen/internal/bitvec"
	"github.com/princeton-csl/bitgen/internal/configdb"
	"github.com/princeton-csl/bitgen/internal/xlog"
)

var (
	netRE        = regexp.MustCompile(`^Net\s+\d+\s+\(\S+\)\s*$`)
	globalNetRE  = regexp.MustCompile(`^Net\s+\d+\s+\(\S+\):\s*global net connecting:\s*$`)
	nodeRE       = regexp.MustCompile(`^Node:\s*(\d+)\s+(\S+)`)
	globalNodeRE = regexp.MustCompile(`^Block\s+(\S+)\s+\(#(\d+)\)\s+at\s+\((\d+),\s*(\d+)\),\s*Pin class (\d+)\.\s*$`)
)

// Result is what Apply reports once the full routing trace has been
// consumed.
type Result struct {
	// Routed is the number of nets (global and non-global) the trace
	// declared.
	Routed int
	// GlobalNodes are every global-net node line encountered, in trace
	// order.
	GlobalNodes []GlobalNode
}

// Apply reads the routing trace at path, walks its node-by-node state
// machine and applies every traced edge's actions to dst.
func Apply(path string, db *configdb.Database, dst *bitvec.Vector) (Result, error) {
	if db == nil {
		return Result{}, ErrNullConfigDB{}
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, ErrBadFile{err.Error()}
	}
	defer f.Close()
	return apply(f, db, dst)
}

type traceState struct {
	state       State
	prevNode    uint64
	connected   map[uint64]bool
	routed      int
	globalNodes []GlobalNode
}

func apply(r io.Reader, db *configdb.Database, dst *bitvec.Vector) (Result, error) {
	ts := &traceState{state: StateInit, connected: map[uint64]bool{}}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if err := ts.consume(line, db, dst); err != nil {
			return Result{ts.routed, ts.globalNodes}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{ts.routed, ts.globalNodes}, ErrBadFile{err.Error()}
	}
	return Result{ts.routed, ts.globalNodes}, nil
}

func (ts *traceState) consume(line string, db *configdb.Database, dst *bitvec.Vector) error {
	switch {
	case globalNetRE.MatchString(line):
		return ts.openNet(true)
	case netRE.MatchString(line):
		return ts.openNet(false)
	case nodeRE.MatchString(line):
		m := nodeRE.FindStringSubmatch(line)
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return ErrFormatError{"unparsable node id: " + m[1]}
		}
		kind, ok := nodeKindFromString(m[2])
		if !ok {
			return ErrFormatError{"unknown node type: " + m[2]}
		}
		return ts.consumeNode(id, kind, db, dst)
	case globalNodeRE.MatchString(line):
		if ts.state != StateGlobal {
			return ErrFormatError{"global node line outside a global net: " + line}
		}
		m := globalNodeRE.FindStringSubmatch(line)
		idx, _ := strconv.Atoi(m[2])
		x, _ := strconv.Atoi(m[3])
		y, _ := strconv.Atoi(m[4])
		pinClass, _ := strconv.Atoi(m[5])
		gn := GlobalNode{Block: m[1], Index: idx, X: x, Y: y, PinClass: pinClass}
		ts.globalNodes = append(ts.globalNodes, gn)
		xlog.Logger.Info().Str("block", gn.Block).Int("x", gn.X).Int("y", gn.Y).Int("pin_class", gn.PinClass).Msg("global routing node")
		return nil
	default:
		return ErrFormatError{"unrecognized routing trace line: " + line}
	}
}

func (ts *traceState) openNet(global bool) error {
	switch ts.state {
	case StateInit, StateSink, StateGlobal:
		// legal predecessor for NET and GLOBAL both.
	default:
		return ErrFormatError{"net header out of sequence"}
	}
	ts.routed++
	ts.connected = map[uint64]bool{}
	if global {
		ts.state = StateGlobal
	} else {
		ts.state = StateNet
	}
	return nil
}

func (ts *traceState) consumeNode(id uint64, kind NodeKind, db *configdb.Database, dst *bitvec.Vector) error {
	switch ts.state {
	case StateNet:
		if kind != NodeSource {
			return ErrFormatError{"first node of a net must be SOURCE"}
		}
		ts.state = StateSource
		ts.setPrev(id)
		return nil

	case StateSource:
		if kind != NodeOpin {
			return ErrFormatError{"node following SOURCE must be OPIN"}
		}
		if err := routeConnection(db, dst, ts.prevNode, id); err != nil {
			return err
		}
		ts.state = StateOpin
		ts.setPrev(id)
		return nil

	case StateOpin, StateSegment:
		switch kind {
		case NodeChanX, NodeChanY:
			if err := routeConnection(db, dst, ts.prevNode, id); err != nil {
				return err
			}
			ts.state = StateSegment
			ts.setPrev(id)
			return nil
		case NodeIpin:
			if err := routeConnection(db, dst, ts.prevNode, id); err != nil {
				return err
			}
			ts.state = StateIpin
			ts.setPrev(id)
			return nil
		default:
			return ErrFormatError{"expected CHANX, CHANY or IPIN"}
		}

	case StateIpin:
		if kind != NodeSink {
			return ErrFormatError{"node following IPIN must be SINK"}
		}
		if err := routeConnection(db, dst, ts.prevNode, id); err != nil {
			return err
		}
		ts.state = StateSink
		ts.setPrev(id)
		return nil

	case StateSink:
		// Re-entry into the same net: a new branch must continue from a
		// node already on the net's connected-set.
		if !ts.connected[ts.prevNode] {
			return ErrFormatError{"routing re-entry from a node outside the net's connected-set"}
		}
		switch kind {
		case NodeChanX, NodeChanY:
			if err := routeConnection(db, dst, ts.prevNode, id); err != nil {
				return err
			}
			ts.state = StateSegment
			ts.setPrev(id)
			return nil
		case NodeOpin:
			if err := routeConnection(db, dst, ts.prevNode, id); err != nil {
				return err
			}
			ts.state = StateOpin
			ts.setPrev(id)
			return nil
		default:
			return ErrFormatError{"net re-entry must be OPIN, CHANX or CHANY"}
		}

	default:
		return ErrFormatError{"node line out of sequence"}
	}
}

func (ts *traceState) setPrev(id uint64) {
	ts.prevNode = id
	ts.connected[id] = true
}

func routeConnection(db *configdb.Database, dst *bitvec.Vector, prev, cur uint64) error {
	actions, err := db.Graph().EdgeActions(prev, cur)
	if err != nil {
		return ErrRoutingFailed{prev, cur}
	}
	for _, a := range actions {
		if err := a.Apply(dst); err != nil {
			return err
		}
	}
	xlog.Logger.Debug().Uint64("prev", prev).Uint64("cur", cur).Msg("routing edge applied")
	return nil
}
