package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nvashisth/alog/pattern"
	"github.com/nvashisth/alog/record"
)

// coalesceBufferSize is the fixed size of the file sink's user-space
// write-coalescing buffer.
const coalesceBufferSize = 4096

// RotationWatcher is notified, non-blocking, whenever the file sink
// detects that its destination file was rotated out from under it. It is
// the seam the archive package's uploader hooks into.
type RotationWatcher interface {
	// Rotated is called with the path that was rotated away from, after
	// the sink has already reopened the new file. Implementations must
	// not block.
	Rotated(oldPath string)
}

// fileIdentity is the platform-specific identity the sink compares across
// flushes to detect that the destination path now refers to a different
// file than the one it has open. Its fields and the sameIdentity
// comparison are defined per platform in file_linux.go, file_unix.go, and
// file_windows.go, since what uniquely identifies an open file differs by
// OS: a {device, inode} pair on POSIX systems, os.SameFile's own
// comparison on Windows.

// File is a rotation-aware file sink: it owns a file descriptor, a fixed
// write-coalescing buffer, and a cached inode identity, and detects
// rotation lazily at flush boundaries.
type File struct {
	mu sync.Mutex

	path    string
	f       *os.File
	pattern *pattern.Pattern
	process string
	diag    Diagnostics
	watcher RotationWatcher

	identity fileIdentity

	coalesce [coalesceBufferSize]byte
	buffered int

	fmtbuf strings.Builder
}

// FileOption configures a File sink at construction.
type FileOption func(*File)

// WithRotationWatcher registers a non-blocking observer of rotation events.
func WithRotationWatcher(w RotationWatcher) FileOption {
	return func(f *File) { f.watcher = w }
}

// NewFile constructs a file sink for path, rendering records with pat and
// tagging them with process (the `%(process)` pattern field). diag is the
// weak back-reference used to report I/O failures. The file is
// not opened until the first Write or Flush call.
func NewFile(path string, pat *pattern.Pattern, process string, diag Diagnostics, opts ...FileOption) *File {
	f := &File{
		path:    path,
		pattern: pat,
		process: process,
		diag:    diag,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Write formats rec and appends it to the coalescing buffer, flushing first
// if there isn't room. Write always releases rec, per the Sink contract.
func (f *File) Write(rec *record.LogRecord) error {
	defer record.Release(rec)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.f == nil {
		if err := f.reload(); err != nil {
			f.diag.Report(record.Fatal, "alog: file sink reload failed for %q: %v", f.path, err)
			return err
		}
	}

	f.fmtbuf.Reset()
	f.pattern.Render(&f.fmtbuf, rec, f.process)
	f.fmtbuf.WriteByte('\n')
	line := f.fmtbuf.String()

	if f.buffered+len(line) > coalesceBufferSize {
		if err := f.flushLocked(); err != nil {
			return err
		}
	}

	if len(line) >= coalesceBufferSize {
		if err := f.writeDirect([]byte(line)); err != nil {
			f.diag.Report(record.Error, "alog: direct write to %q failed: %v", f.path, err)
			return err
		}
		return nil
	}

	f.buffered += copy(f.coalesce[f.buffered:], line)
	return nil
}

// writeDirect bypasses the coalescing buffer for lines at or above its
// capacity.
func (f *File) writeDirect(line []byte) error {
	n, err := f.f.Write(line)
	if err != nil {
		return err
	}
	if n != len(line) {
		return fmt.Errorf("alog: partial write to %q: wrote %d of %d bytes", f.path, n, len(line))
	}
	return nil
}

// Flush drains the coalescing buffer, then checks for rotation.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushLocked()
}

func (f *File) flushLocked() error {
	if f.f != nil && f.buffered > 0 {
		n, err := f.f.Write(f.coalesce[:f.buffered])
		if err != nil {
			f.diag.Report(record.Error, "alog: flush write to %q failed: %v", f.path, err)
			f.buffered = 0 // discarded on error, no replay
			return err
		}
		if n != f.buffered {
			f.diag.Report(record.Error, "alog: partial flush write to %q: wrote %d of %d bytes", f.path, n, f.buffered)
			f.buffered = 0
			return fmt.Errorf("alog: partial flush write to %q", f.path)
		}
		f.buffered = 0
	}
	if err := f.reload(); err != nil {
		f.diag.Report(record.Fatal, "alog: reload failed for %q: %v", f.path, err)
		return err
	}
	return nil
}

// reload detects rotation: if no file is open, open it (creating parent
// directories on ENOENT, retried exactly once); if a file is open, stat the
// path and compare {dev, ino} against the cached identity, reopening if
// they differ.
func (f *File) reload() error {
	if f.f == nil {
		return f.open(false)
	}

	ident, err := statIdentity(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f.reopen()
		}
		f.diag.Report(record.Error, "alog: stat %q failed: %v", f.path, err)
		return err
	}
	if !sameIdentity(ident, f.identity) {
		return f.reopen()
	}
	return nil
}

func (f *File) reopen() error {
	oldPath := f.path
	if f.f != nil {
		_ = f.f.Close()
		f.f = nil
	}
	if err := f.open(false); err != nil {
		return err
	}
	if f.watcher != nil {
		f.watcher.Rotated(oldPath)
	}
	return nil
}

// open opens f.path with O_WRONLY|O_APPEND|O_CREAT, mode 0644, creating the
// parent directory chain (mode 0755) and retrying exactly once on ENOENT.
// retried guards against infinite recursion.
func (f *File) open(retried bool) error {
	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		if !retried && os.IsNotExist(err) {
			if mkErr := os.MkdirAll(filepath.Dir(f.path), 0755); mkErr != nil {
				f.diag.Report(record.Error, "alog: mkdir for %q failed: %v", f.path, mkErr)
				return mkErr
			}
			return f.open(true)
		}
		f.diag.Report(record.Error, "alog: open %q failed: %v", f.path, err)
		return err
	}

	ident, err := statIdentity(f.path)
	if err != nil {
		_ = file.Close()
		f.diag.Report(record.Error, "alog: stat %q after open failed: %v", f.path, err)
		return err
	}

	f.f = file
	f.identity = ident
	return nil
}

// Close flushes and releases the file descriptor. Idempotent.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	if f.buffered > 0 {
		_, _ = f.f.Write(f.coalesce[:f.buffered])
		f.buffered = 0
	}
	err := f.f.Close()
	f.f = nil
	return err
}
