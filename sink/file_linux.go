//go:build linux

package sink

import "golang.org/x/sys/unix"

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

// statIdentity stats path using golang.org/x/sys/unix, the same package the
// teacher's directio_linux.go uses for Pwritev/Fsync, to read the
// {device, inode} pair used to detect a path being rotated out from
// under an open file descriptor.
func statIdentity(path string) (fileIdentity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{dev: uint64(st.Dev), ino: st.Ino, valid: true}, nil
}
