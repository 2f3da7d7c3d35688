package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesPayload(t *testing.T) {
	data := []byte("hello")
	r := New(Info, time.Now(), 7, data)
	require.Equal(t, "hello", string(r.Payload))

	data[0] = 'H'
	assert.Equal(t, "hello", string(r.Payload), "record must not alias caller's buffer")

	assert.Equal(t, Data, r.Kind)
	assert.Equal(t, Info, r.Level)
	assert.Equal(t, uint64(7), r.ProducerID)
}

func TestNewOversizedPayloadDoesNotPanic(t *testing.T) {
	data := make([]byte, MaxPayload+1000)
	require.NotPanics(t, func() {
		r := New(Warn, time.Now(), 1, data)
		assert.Equal(t, len(data), len(r.Payload))
	})
}

func TestReleaseRecyclesBuffer(t *testing.T) {
	r := New(Info, time.Now(), 1, []byte("abc"))
	Release(r)
	assert.Nil(t, r.Payload)

	// Release must tolerate nil.
	Release(nil)
}

func TestNewControlCarriesNoPayload(t *testing.T) {
	r := NewControl(Stop)
	assert.Equal(t, Stop, r.Kind)
	assert.Nil(t, r.Payload)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG ", Debug.String())
	assert.Equal(t, "NOTICE", Notice.String())
	assert.Equal(t, "?     ", Level(200).String())
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("warn")
	require.True(t, ok)
	assert.Equal(t, Warn, lvl)

	_, ok = ParseLevel("bogus")
	assert.False(t, ok)
}

func TestTimestampMillis(t *testing.T) {
	ts := time.Unix(1700000000, 123_000_000)
	r := New(Info, ts, 1, nil)
	assert.Equal(t, ts.UnixMilli(), r.TimestampMillis())
}
