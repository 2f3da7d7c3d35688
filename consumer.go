package alog

import (
	"runtime"
	"time"

	"github.com/nvashisth/alog/record"
)

// Backoff thresholds for the consumer's idle loop: spin a few iterations,
// then yield to the scheduler, then fall back to a capped exponential
// sleep. This keeps latency low under load without burning a core when
// the queue sits empty.
const (
	spinIterations = 10
	yieldUntil     = 100
	minSleep       = 1 * time.Microsecond
	maxSleep       = 8192 * time.Microsecond
)

// run is the consumer loop: started once, in its own goroutine, by
// Start. It dequeues records, dispatches them by kind, and drives both the
// periodic flush cadence and the drain-then-exit sequence triggered by a
// stop record.
func (l *Logger) run() {
	defer close(l.consumerDone)

	idle := 0
	lastFlush := l.now().UnixMilli()
	flushIntervalMs := l.flushInterval.Milliseconds()

	for {
		rec, ok := l.q.TryPop()
		if !ok {
			if l.now().UnixMilli()-lastFlush >= flushIntervalMs {
				l.flushSink()
				lastFlush = l.now().UnixMilli()
			}
			l.backoff(&idle)
			continue
		}
		idle = 0

		switch rec.Kind {
		case record.Stop:
			l.drainAndStop()
			return
		case record.Flush:
			l.flushSink()
			lastFlush = l.now().UnixMilli()
		case record.Data:
			l.writeData(rec, &lastFlush, flushIntervalMs)
		}
	}
}

// writeData hands rec to the sink, updating the delivered/err counters
// accordingly, then checks the record's own capture timestamp against the
// flush cadence. Flushes are driven by the older of two clocks: the idle
// wall-clock probe above (for when the queue runs dry) and this per-record
// check (for when it never does, e.g. under sustained production where
// TryPop never observes an empty queue). Either one alone would miss the
// other's case, so both update lastFlush on every flush they trigger.
func (l *Logger) writeData(rec *record.LogRecord, lastFlush *int64, flushIntervalMs int64) {
	ts := rec.TimestampMillis()
	if err := l.sink.Write(rec); err != nil {
		l.stats.Err.Add(1)
		l.diag.Report(record.Error, "sink write failed: %v", err)
		return
	}
	l.stats.delivered.Add(1)

	if ts-*lastFlush >= flushIntervalMs {
		l.flushSink()
		*lastFlush = ts
	}
}

// drainAndStop empties whatever remains in the queue after a stop record
// is observed, writing every data record to the sink, then flushes and
// closes it. A stop record is only ever enqueued after every producer has
// stopped pushing (Logger.Stop spins until its own push succeeds, which by
// construction happens after the caller has already quiesced producers),
// so once TryPop starts returning false the queue is genuinely empty.
func (l *Logger) drainAndStop() {
	lastFlush := l.now().UnixMilli()
	flushIntervalMs := l.flushInterval.Milliseconds()
	for {
		rec, ok := l.q.TryPop()
		if !ok {
			break
		}
		if rec.Kind == record.Data {
			l.writeData(rec, &lastFlush, flushIntervalMs)
		}
	}
	l.flushSink()
	if err := l.sink.Close(); err != nil {
		l.diag.Report(record.Error, "sink close failed: %v", err)
	}
}

func (l *Logger) flushSink() {
	if err := l.sink.Flush(); err != nil {
		l.diag.Report(record.Error, "sink flush failed: %v", err)
	}
}

// backoff advances the three-phase idle strategy: busy-spin briefly,
// yield to let other goroutines run, then sleep for a capped, doubling
// duration. idle is the caller's running count of consecutive empty
// dequeues.
func (l *Logger) backoff(idle *int) {
	*idle++
	switch {
	case *idle < spinIterations:
		// busy-spin: do nothing, just loop again
	case *idle < yieldUntil:
		runtime.Gosched()
	default:
		shift := *idle - yieldUntil
		if shift > 13 {
			shift = 13
		}
		d := minSleep << uint(shift)
		if d > maxSleep {
			d = maxSleep
		}
		time.Sleep(d)
	}
}
