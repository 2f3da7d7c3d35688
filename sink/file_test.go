package sink

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvashisth/alog/pattern"
	"github.com/nvashisth/alog/record"
)

type fakeDiag struct {
	reports []string
}

func (d *fakeDiag) Report(level record.Level, format string, args ...any) {
	d.reports = append(d.reports, level.String())
}

type fakeWatcher struct {
	rotated []string
}

func (w *fakeWatcher) Rotated(oldPath string) {
	w.rotated = append(w.rotated, oldPath)
}

func newTestRecord(msg string) *record.LogRecord {
	return record.New(record.Info, time.Now(), 1, []byte(msg))
}

func TestFileWriteAndFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	diag := &fakeDiag{}
	f := NewFile(path, pattern.Compile("%(msg)"), "proc", diag)

	for i := 0; i < 10; i++ {
		require.NoError(t, f.Write(newTestRecord("hello")))
	}
	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, countLines(string(data)))
}

func TestFileCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.log")
	diag := &fakeDiag{}
	f := NewFile(path, pattern.Compile("%(msg)"), "proc", diag)

	require.NoError(t, f.Write(newTestRecord("x")))
	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

// TestFileRotationDetected covers log rotation: the destination path is
// renamed out from under an open sink; after the next flush the sink must
// have closed the old fd, reopened path, and the renamed file must contain
// exactly the pre-rotation records.
func TestFileRotationDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	rotated := filepath.Join(dir, "out.log.1")
	diag := &fakeDiag{}
	watcher := &fakeWatcher{}
	f := NewFile(path, pattern.Compile("%(msg)"), "proc", diag, WithRotationWatcher(watcher))

	// The sink must open the destination on the first write.
	require.NoError(t, f.Write(newTestRecord("pre-rotation")))
	for i := 0; i < 9; i++ {
		require.NoError(t, f.Write(newTestRecord("pre-rotation")))
	}

	// Records are still sitting in the coalescing buffer: rotate the
	// destination out from under the sink before the next flush.
	require.NoError(t, os.Rename(path, rotated))

	// The pending flush drains the buffer to the still-open (now renamed)
	// fd, then reload() detects the path now refers to a different file
	// and reopens it.
	require.NoError(t, f.Flush())

	require.NoError(t, f.Write(newTestRecord("post-rotation")))
	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())

	preData, err := os.ReadFile(rotated)
	require.NoError(t, err)
	assert.Equal(t, 10, countLines(string(preData)))

	postData, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(string(postData)))

	require.Len(t, watcher.rotated, 1)
	assert.Equal(t, path, watcher.rotated[0])
}

func TestFileLargeLineBypassesCoalesceBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	diag := &fakeDiag{}
	f := NewFile(path, pattern.Compile("%(msg)"), "proc", diag)

	big := make([]byte, coalesceBufferSize+100)
	for i := range big {
		big[i] = 'x'
	}
	require.NoError(t, f.Write(newTestRecord(string(big))))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(big)+1, len(data)) // +1 for the trailing newline
}

func TestFileCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	f := NewFile(path, pattern.Compile("%(msg)"), "proc", &fakeDiag{})
	require.NoError(t, f.Write(newTestRecord("a")))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
