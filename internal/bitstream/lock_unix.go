//go:build linux || darwin
// +build linux darwin

package bitstream

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive takes an exclusive advisory lock on f for the duration of
// the write, so two bitgen invocations never interleave writes to the
// same memory-image file.
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func unlockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
