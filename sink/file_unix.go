//go:build !linux && !windows

package sink

import "syscall"

// fileIdentity is the {device, inode} pair used to detect a path being
// rotated out from under an open file descriptor.
type fileIdentity struct {
	dev, ino uint64
	valid    bool
}

// sameIdentity reports whether a and b refer to the same {device, inode}
// pair. A zero-value (never-stat'd) identity never compares equal.
func sameIdentity(a, b fileIdentity) bool {
	return a.valid && b.valid && a.dev == b.dev && a.ino == b.ino
}

// statIdentity is the portable (non-Linux, non-Windows) fallback: standard
// library syscall.Stat_t also exposes Dev/Ino on BSD-family systems, so the
// same {device, inode} comparison applies without pulling in
// golang.org/x/sys/unix.
func statIdentity(path string) (fileIdentity, error) {
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{dev: uint64(st.Dev), ino: uint64(st.Ino), valid: true}, nil
}
