// Package alog is an asynchronous logging engine: producers hand records
// to a bounded lock-free queue and return immediately; a single consumer
// goroutine drains the queue and writes to a pluggable sink.
package alog

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/nvashisth/alog/internal/queue"
	"github.com/nvashisth/alog/record"
	"github.com/nvashisth/alog/sink"
)

// loggerState tracks the Constructed -> Running -> Stopped lifecycle. A
// Logger never returns to an earlier state.
type loggerState int32

const (
	stateConstructed loggerState = iota
	stateRunning
	stateStopped
)

// Logger is the facade: construct with New, Start it, log through a
// Producer, and Stop it to drain and close the sink.
type Logger struct {
	q                *queue.Bounded[*record.LogRecord]
	sink             sink.Sink
	level            atomic.Uint32
	stats            Stats
	formatBufferSize int
	flushInterval    time.Duration
	diag             internalDiag
	clock            *timecache.TimeCache

	state        atomic.Int32
	startOnce    sync.Once
	stopOnce     sync.Once
	consumerDone chan struct{}
}

// New constructs a Logger in the Constructed state. Options.Sink is
// required; all other fields are defaulted by resolveDefaults.
func New(opts Options) (*Logger, error) {
	if opts.Sink == nil {
		return nil, ErrNoSink
	}
	opts.resolveDefaults()

	diagWriter := opts.internalDiagWriter
	if diagWriter == nil && opts.InternalDiagWriter != nil {
		diagWriter = newWriterDiagWriter(opts.InternalDiagWriter)
	}
	if diagWriter == nil {
		var err error
		diagWriter, err = internalDiagFromEnv()
		if err != nil {
			return nil, err
		}
	}

	l := &Logger{
		q:                queue.New[*record.LogRecord](opts.QueueSize),
		sink:             opts.Sink,
		formatBufferSize: opts.FormatBufferSize,
		flushInterval:    opts.FlushInterval,
		diag:             internalDiag{w: diagWriter},
		clock:            timecache.NewWithResolution(time.Millisecond),
		consumerDone:     make(chan struct{}),
	}
	l.level.Store(uint32(opts.Level))
	l.state.Store(int32(stateConstructed))
	return l, nil
}

// Start launches the consumer goroutine. Calling Start more than once
// returns ErrAlreadyStarted.
func (l *Logger) Start() error {
	started := false
	l.startOnce.Do(func() {
		l.state.Store(int32(stateRunning))
		go l.run()
		started = true
	})
	if !started {
		return ErrAlreadyStarted
	}
	return nil
}

// Stop enqueues a stop record and blocks until the consumer has drained
// the queue and closed the sink. The enqueue itself spins, since a stop
// record arriving on a full queue must not be silently dropped: producers
// are expected to have quiesced by the time Stop is called, so the queue
// drains quickly.
func (l *Logger) Stop() error {
	if loggerState(l.state.Load()) != stateRunning {
		return ErrNotRunning
	}
	l.stopOnce.Do(func() {
		rec := record.NewControl(record.Stop)
		for !l.q.TryPush(rec) {
			runtime.Gosched()
		}
		<-l.consumerDone
		l.clock.Stop()
		l.state.Store(int32(stateStopped))
	})
	return nil
}

// Flush enqueues a flush record and returns immediately; the actual flush
// happens asynchronously on the consumer goroutine. Callers that need a
// synchronous flush should use a sink whose Flush is itself synchronous
// and call Stop, or poll Stats until pending work settles.
func (l *Logger) Flush() error {
	if loggerState(l.state.Load()) != stateRunning {
		return ErrNotRunning
	}
	rec := record.NewControl(record.Flush)
	for !l.q.TryPush(rec) {
		runtime.Gosched()
	}
	return nil
}

// SetLevel changes the minimum level that passes ShouldLog, effective
// immediately for any producer that checks it afterward.
func (l *Logger) SetLevel(level record.Level) {
	l.level.Store(uint32(level))
}

// ShouldLog reports whether a record at level would currently be
// enqueued, letting a caller skip expensive argument construction.
func (l *Logger) ShouldLog(level record.Level) bool {
	return l.shouldLogFast(level)
}

// Stats returns a point-in-time snapshot of the logger's counters.
func (l *Logger) Stats() Snapshot {
	return l.stats.Snapshot()
}

func (l *Logger) now() time.Time {
	return l.clock.CachedTime()
}

// String satisfies fmt.Stringer for debugging; not used on any hot path.
func (s loggerState) String() string {
	switch s {
	case stateConstructed:
		return "constructed"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("loggerState(%d)", int32(s))
	}
}
