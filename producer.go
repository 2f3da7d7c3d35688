package alog

import (
	"fmt"
	"sync/atomic"

	"github.com/nvashisth/alog/record"
)

// nextProducerID hands out monotonically increasing producer identities.
// Go exposes no portable OS thread id for a goroutine (goroutines migrate
// between OS threads, so there is nothing stable to cache against), so the
// cheap-to-reuse identity this package offers is the Producer handle
// itself: the id is assigned once, at NewProducer, and every subsequent
// Log call on that handle reads the already-cached field instead of doing
// any per-call lookup. See DESIGN.md for the rationale.
var nextProducerID atomic.Uint64

// Producer is a cached producer identity plus a reusable formatting
// buffer. A Producer is not safe for concurrent use by multiple
// goroutines; callers logging from many goroutines should hold one
// Producer per goroutine, the same way a reusable buffer would be kept
// thread-local in a native implementation.
type Producer struct {
	logger *Logger
	id     uint64
	buf    []byte
}

// NewProducer returns a Producer bound to l, with its identifier assigned
// once.
func (l *Logger) NewProducer() *Producer {
	return &Producer{
		logger: l,
		id:     nextProducerID.Add(1),
		buf:    make([]byte, l.formatBufferSize),
	}
}

// Log is the producer fast path: gate on level, format args per format,
// and enqueue a data record.
func (p *Producer) Log(level record.Level, format string, args ...any) {
	p.logger.log(level, p.id, p.buf, format, args)
}

// LogBinary skips formatting and enqueues data directly.
func (p *Producer) LogBinary(level record.Level, data []byte) {
	p.logger.logBinary(level, p.id, data)
}

// log gates on level, formats into buf, and enqueues the resulting record.
// buf is the caller's reusable formatting buffer.
func (l *Logger) log(level record.Level, producerID uint64, buf []byte, format string, args []any) {
	if !l.shouldLogFast(level) {
		return
	}

	payload, truncated, formatErr := formatInto(buf, format, args)
	if formatErr {
		l.stats.Err.Add(1)
		payload = badFormatPayload
	} else if truncated {
		l.stats.Trunc.Add(1)
	}

	l.enqueueData(level, producerID, payload)
}

// logBinary enqueues data unformatted.
func (l *Logger) logBinary(level record.Level, producerID uint64, data []byte) {
	if !l.shouldLogFast(level) {
		return
	}
	l.enqueueData(level, producerID, data)
}

// enqueueData allocates a record and attempts a best-effort enqueue: on
// failure the record is released and counted as dropped. Total is
// incremented unconditionally.
func (l *Logger) enqueueData(level record.Level, producerID uint64, payload []byte) {
	rec := record.New(level, l.now(), producerID, payload)
	if !l.q.TryPush(rec) {
		record.Release(rec)
		l.stats.Drop.Add(1)
	}
	l.stats.Total.Add(1)
}

// shouldLogFast is the inline level gate: a relaxed atomic load, cheap
// enough to run ahead of argument formatting.
func (l *Logger) shouldLogFast(level record.Level) bool {
	return level >= record.Level(l.level.Load())
}

// formatInto renders format+args into buf. It returns the slice of buf
// actually used, whether the output had to be truncated to len(buf)-1,
// and whether the format call itself failed. Go's fmt package never fails
// to produce output the way a C snprintf call can signal an encoding
// error, so formatErr is always false here; the three-way return shape is
// kept so a future formatting backend (for example one routed through a
// C-ABI syslog() call) can report a real failure without changing the
// caller.
func formatInto(buf []byte, format string, args []any) (payload []byte, truncated bool, formatErr bool) {
	s := fmt.Sprintf(format, args...)
	if len(s) >= len(buf) {
		n := copy(buf, s[:len(buf)-1])
		return buf[:n], true, false
	}
	n := copy(buf, s)
	return buf[:n], false, false
}
