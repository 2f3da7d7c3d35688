package sink

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/nvashisth/alog/pattern"
	"github.com/nvashisth/alog/record"
)

// Stream wraps any io.Writer (stdout, a pipe, a test buffer) as a sink,
// using a bufio.Writer for the same coalescing purpose File's byte buffer
// serves.
type Stream struct {
	mu      sync.Mutex
	w       *bufio.Writer
	pattern *pattern.Pattern
	process string
	fmtbuf  strings.Builder
}

// NewStream constructs a Stream sink writing to w.
func NewStream(w io.Writer, pat *pattern.Pattern, process string) *Stream {
	return &Stream{
		w:       bufio.NewWriterSize(w, coalesceBufferSize),
		pattern: pat,
		process: process,
	}
}

func (s *Stream) Write(rec *record.LogRecord) error {
	defer record.Release(rec)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fmtbuf.Reset()
	s.pattern.Render(&s.fmtbuf, rec, s.process)
	s.fmtbuf.WriteByte('\n')
	_, err := s.w.WriteString(s.fmtbuf.String())
	return err
}

func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *Stream) Close() error {
	return s.Flush()
}
