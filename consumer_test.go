package alog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestBackoffSpinsWithoutSleeping exercises the busy-spin phase: idle in
// [0, spinIterations) must return immediately, with no yield or sleep.
func TestBackoffSpinsWithoutSleeping(t *testing.T) {
	var l Logger
	idle := 0

	start := time.Now()
	for i := 0; i < spinIterations; i++ {
		l.backoff(&idle)
	}
	elapsed := time.Since(start)

	assert.Equal(t, spinIterations, idle)
	assert.Less(t, elapsed, 10*time.Millisecond, "busy-spin phase must not sleep")
}

// TestBackoffYieldsWithoutSleeping exercises the yield phase: idle in
// [spinIterations, yieldUntil) calls runtime.Gosched but never time.Sleep.
func TestBackoffYieldsWithoutSleeping(t *testing.T) {
	var l Logger
	idle := spinIterations

	start := time.Now()
	for idle < yieldUntil {
		l.backoff(&idle)
	}
	elapsed := time.Since(start)

	assert.Equal(t, yieldUntil, idle)
	assert.Less(t, elapsed, 50*time.Millisecond, "yield phase must not block on a real sleep")
}

// TestBackoffSleepsAndCapsAtMaxSleep exercises the sleep phase: once idle
// reaches yieldUntil, each call sleeps for a real, doubling duration
// capped at maxSleep.
func TestBackoffSleepsAndCapsAtMaxSleep(t *testing.T) {
	var l Logger
	idle := yieldUntil - 1 // next call pushes idle to yieldUntil, the first sleeping call

	start := time.Now()
	l.backoff(&idle)
	elapsed := time.Since(start)

	assert.Equal(t, yieldUntil, idle)
	assert.GreaterOrEqual(t, elapsed, minSleep, "first sleeping call must sleep at least minSleep")
	assert.Less(t, elapsed, 50*time.Millisecond, "first sleeping call's duration must be small")

	// Drive idle far past the point where the doubling would exceed
	// maxSleep, and confirm the sleep is capped rather than growing
	// unbounded.
	idle = yieldUntil + 1000
	start = time.Now()
	l.backoff(&idle)
	elapsed = time.Since(start)

	assert.GreaterOrEqual(t, elapsed, maxSleep)
	assert.Less(t, elapsed, 100*time.Millisecond, "sleep must be capped at maxSleep, not grow with idle")
}
