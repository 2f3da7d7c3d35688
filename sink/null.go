package sink

import "github.com/nvashisth/alog/record"

// Null discards every record. It exists for benchmarking the queue and
// producer fast path in isolation from any I/O, and for tests that care
// about producer and consumer behavior rather than output.
type Null struct{}

// NewNull constructs a Null sink.
func NewNull() *Null { return &Null{} }

func (Null) Write(rec *record.LogRecord) error {
	record.Release(rec)
	return nil
}

func (Null) Flush() error { return nil }

func (Null) Close() error { return nil }
