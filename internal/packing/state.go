// Package packing parses the packing-result XML stream, resolving every
// element against the configuration database and folding the resulting
// actions into per-block bit vectors.
package packing

// SubState is the orthogonal, finer-grained state tracking which kind of
// port container a <port> element's character data belongs to.
type SubState uint8

const (
	SubNone SubState = iota
	SubInputPort
	SubOutputPort
	SubClockPort
)
