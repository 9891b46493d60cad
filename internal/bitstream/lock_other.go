//go:build !linux && !darwin
// +build !linux,!darwin

package bitstream

import "os"

// lockExclusive is a no-op on platforms without flock semantics.
func lockExclusive(f *os.File) error { return nil }

func unlockExclusive(f *os.File) error { return nil }
