package configdb

import "fmt"

// Magic is the little-endian 64-bit magic number every config database
// file begins with.
const Magic uint64 = 0x6d67666361677270

// ErrDatabaseAlreadyParsed is returned when ParseDatabase is called more
// than once on the same Database.
type ErrDatabaseAlreadyParsed struct{}

func (ErrDatabaseAlreadyParsed) Error() string { return "configdb: database already parsed" }

// ErrBadFile covers magic mismatches and any other file-level
// malformation that prevents the database from being read at all.
type ErrBadFile struct {
	Reason string
}

func (e ErrBadFile) Error() string { return "configdb: bad file: " + e.Reason }

// ErrBadPacketSize is returned when a record's length prefix describes
// more (or fewer) bytes than remain in the file.
type ErrBadPacketSize struct {
	Declared, Available int
}

func (e ErrBadPacketSize) Error() string {
	return fmt.Sprintf("configdb: bad packet size: declared %d, available %d", e.Declared, e.Available)
}

// ErrPacketIncomplete is returned when a record's own fields run past the
// bytes the length prefix reserved for it.
type ErrPacketIncomplete struct {
	Context string
}

func (e ErrPacketIncomplete) Error() string { return "configdb: packet incomplete: " + e.Context }

// ErrPacketDecodeFailed covers structurally invalid field encodings
// (e.g. an instance type byte outside the known enum).
type ErrPacketDecodeFailed struct {
	Reason string
}

func (e ErrPacketDecodeFailed) Error() string { return "configdb: packet decode failed: " + e.Reason }

// ErrBlockNameConflict is returned when two blocks in the database share a
// name.
type ErrBlockNameConflict struct {
	Name string
}

func (e ErrBlockNameConflict) Error() string {
	return fmt.Sprintf("configdb: block name conflict: %q", e.Name)
}
