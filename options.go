package alog

import (
	"io"
	"os"
	"time"

	"github.com/nvashisth/alog/record"
	"github.com/nvashisth/alog/sink"
)

// defaultFormatBufferSize and defaultFlushIntervalMS are the library's
// default format-buffer size and flush cadence.
const (
	defaultFormatBufferSize = 2048
	defaultFlushIntervalMS  = 200
	defaultQueueSize        = 1024
)

// badFormatPayload is substituted for a record's payload when the
// formatting call that produced it failed.
var badFormatPayload = []byte("bad format call")

// Options holds the pre-start configuration knobs: sink, queue size, and
// initial level. They are only meaningful before Start; queue size in
// particular cannot be changed once the consumer goroutine is running, so
// Options is consumed once, at construction.
type Options struct {
	// Sink is the destination the consumer drains records to. Required.
	Sink sink.Sink

	// QueueSize is the MPMC ring buffer capacity. Must be a power of two
	// and >= 2. Defaults to 1024.
	QueueSize int

	// Level is the initial minimum level that passes ShouldLog. Defaults
	// to Debug (log everything).
	Level record.Level

	// FlushInterval is the consumer's periodic flush cadence. Defaults to
	// 200ms.
	FlushInterval time.Duration

	// FormatBufferSize bounds the stack-equivalent formatting buffer used
	// by Producer.Log. Defaults to 2048.
	FormatBufferSize int

	// InternalDiagWriter, when set, directs the logger's internal
	// self-diagnostics (sink write/flush/close failures, reload errors) to
	// an arbitrary io.Writer instead of the ALOG_INTERNAL_LOG_STDERR /
	// ALOG_INTERNAL_LOG_FILE environment variables. Useful for embedding
	// alog's own diagnostics into a caller's existing log stream.
	InternalDiagWriter io.Writer

	// internalDiagWriter, when non-nil, overrides both InternalDiagWriter
	// and environment-variable detection of where internal diagnostics go.
	// Used by tests.
	internalDiagWriter diagWriter
}

// resolveDefaults fills zero-valued fields with the library's defaults.
func (o *Options) resolveDefaults() {
	if o.QueueSize == 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.Level == 0 {
		o.Level = record.Debug
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = defaultFlushIntervalMS * time.Millisecond
	}
	if o.FormatBufferSize <= 0 {
		o.FormatBufferSize = defaultFormatBufferSize
	}
}

// internalDiagFromEnv resolves where internal diagnostics go:
// ALOG_INTERNAL_LOG_STDERR takes priority over ALOG_INTERNAL_LOG_FILE; if
// neither is set, diagnostics are silent.
func internalDiagFromEnv() (diagWriter, error) {
	if _, ok := os.LookupEnv("ALOG_INTERNAL_LOG_STDERR"); ok {
		return newStderrDiagWriter(), nil
	}
	if path, ok := os.LookupEnv("ALOG_INTERNAL_LOG_FILE"); ok && path != "" {
		return newFileDiagWriter(path)
	}
	return newNullDiagWriter(), nil
}
