package alog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nvashisth/alog/record"
)

// diagWriter is the internal self-diagnostic stream: the Logger writes to it
// from the consumer goroutine when a sink write, flush or close fails. Sinks
// hold no reference to it; they report through the sink.Diagnostics passed
// to their constructors.
// Writes are line-buffered and small; contention is rare and acceptable,
// so a single mutex suffices.
type diagWriter interface {
	report(level record.Level, msg string)
	close() error
}

type nullDiagWriter struct{}

func newNullDiagWriter() diagWriter { return nullDiagWriter{} }

func (nullDiagWriter) report(record.Level, string) {}
func (nullDiagWriter) close() error                { return nil }

// lineDiagWriter writes `TIMESTAMP LEVEL msg\n` lines (RFC 3339 UTC
// timestamp) to a bufio.Writer, flushing
// after every write, matching the line-buffered behavior expected of the
// ALOG_INTERNAL_LOG_FILE destination.
type lineDiagWriter struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closeFn func() error
}

func newStderrDiagWriter() diagWriter {
	return &lineDiagWriter{w: bufio.NewWriter(os.Stderr), closeFn: func() error { return nil }}
}

func newFileDiagWriter(path string) (diagWriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("alog: open internal diagnostic file %q: %w", path, err)
	}
	return &lineDiagWriter{w: bufio.NewWriter(f), closeFn: f.Close}, nil
}

func newWriterDiagWriter(w io.Writer) diagWriter {
	return &lineDiagWriter{w: bufio.NewWriter(w), closeFn: func() error { return nil }}
}

func (d *lineDiagWriter) report(level record.Level, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.w, "%s %s %s\n", time.Now().UTC().Format(time.RFC3339Nano), level.String(), msg)
	_ = d.w.Flush()
}

func (d *lineDiagWriter) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.w.Flush()
	return d.closeFn()
}

// internalDiag adapts a diagWriter to the sink.Diagnostics interface. The
// Logger uses it for its own consumer-side reports; it is not handed to any
// sink, so a sink's own I/O reports (such as File's reload failures) go to
// the Diagnostics that sink was constructed with.
type internalDiag struct {
	w diagWriter
}

func (d internalDiag) Report(level record.Level, format string, args ...any) {
	d.w.report(level, fmt.Sprintf(format, args...))
}
