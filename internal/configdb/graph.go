package configdb

import (
	"fmt"

	"github.com/princeton-csl/bitgen/internal/bitvec"
)

// edgeKey packs a (src, sink) pair into a single map key. The design note
// in spec.md §9 suggests a flat CSR layout indexed by node id for cache
// locality; we use a map keyed this way instead, since edges accumulate
// one packet at a time while the database streams in and the edge count
// is not known until the last packet has been read. The public surface
// (EdgeActions) is exactly the one the CSR variant would expose, so a
// later switch to CSR would not touch any caller.
type edgeKey struct {
	src, sink uint64
}

// Graph is the directed routing graph over node_size numbered vertices.
// Edge payloads are ordered action lists; multiple database edges between
// the same (src, sink) pair accumulate onto one graph edge (spec.md §4.1).
type Graph struct {
	nodeSize uint64
	edges    map[edgeKey][]bitvec.Action
}

// NewGraph allocates a Graph over the given number of nodes.
func NewGraph(nodeSize uint64) *Graph {
	return &Graph{nodeSize: nodeSize, edges: make(map[edgeKey][]bitvec.Action)}
}

// NodeSize returns the number of vertices in the graph.
func (g *Graph) NodeSize() uint64 {
	return g.nodeSize
}

// NumEdges returns the number of distinct (src, sink) edges in the graph.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// AddEdgeActions appends actions to the edge (src, sink), creating it if
// necessary.
func (g *Graph) AddEdgeActions(src, sink uint64, actions []bitvec.Action) {
	k := edgeKey{src, sink}
	g.edges[k] = append(g.edges[k], actions...)
}

// EdgeNotFoundError is returned by EdgeActions when no edge exists between
// the requested pair of nodes.
type EdgeNotFoundError struct {
	Src, Sink uint64
}

func (e EdgeNotFoundError) Error() string {
	return fmt.Sprintf("configdb: no routing edge (%d -> %d)", e.Src, e.Sink)
}

// EdgeActions looks up the action list for the edge (src, sink). Missing
// edges are an error at routing time (spec.md §3 invariants).
func (g *Graph) EdgeActions(src, sink uint64) ([]bitvec.Action, error) {
	actions, ok := g.edges[edgeKey{src, sink}]
	if !ok {
		return nil, EdgeNotFoundError{src, sink}
	}
	return actions, nil
}
