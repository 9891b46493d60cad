// Package routing applies a routing trace to the device bitstream: for
// every edge the trace walks, it looks up the edge's action list in the
// config database's routing graph and applies it.
package routing

import "fmt"

// ErrNullConfigDB is returned when Apply is called without a database.
type ErrNullConfigDB struct{}

func (ErrNullConfigDB) Error() string { return "routing: config database is nil" }

// ErrBadFile wraps a failure to open or read the routing trace file.
type ErrBadFile struct{ Reason string }

func (e ErrBadFile) Error() string { return "routing: bad file: " + e.Reason }

// ErrRoutingFailed is returned when a traced edge has no entry in the
// routing graph.
type ErrRoutingFailed struct {
	Prev, Cur uint64
}

func (e ErrRoutingFailed) Error() string {
	return fmt.Sprintf("routing: no edge (%d -> %d) in routing graph", e.Prev, e.Cur)
}

// ErrFormatError covers any malformed line or illegal state transition.
type ErrFormatError struct{ Reason string }

func (e ErrFormatError) Error() string { return "routing: format error: " + e.Reason }
