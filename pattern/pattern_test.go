package pattern

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvashisth/alog/record"
)

func render(t *testing.T, p *Pattern, rec *record.LogRecord, process string) string {
	t.Helper()
	var buf strings.Builder
	p.Render(&buf, rec, process)
	return buf.String()
}

func TestDefaultPattern(t *testing.T) {
	p := Compile(Default)
	ts := time.Date(2026, 3, 5, 9, 8, 7, 250*1e6, time.UTC)
	rec := &record.LogRecord{
		Kind:       record.Data,
		Level:      record.Warn,
		Timestamp:  ts,
		ProducerID: 42,
		Payload:    []byte("disk at 90%"),
	}
	out := render(t, p, rec, "myproc")
	require.Equal(t, "2026-03-05 09:08:07.250 WARN   myproc[42] disk at 90%", out)
}

func TestUnrecognisedGroupRendersLiterally(t *testing.T) {
	p := Compile("%(bogus)-%(msg)")
	rec := &record.LogRecord{Payload: []byte("hi")}
	assert.Equal(t, "%(bogus)-hi", render(t, p, rec, "p"))
}

func TestLiteralPercent(t *testing.T) {
	p := Compile("100%% done: %(msg)")
	rec := &record.LogRecord{Payload: []byte("ok")}
	assert.Equal(t, "100% done: ok", render(t, p, rec, "p"))
}

func TestUnterminatedGroupRendersLiterally(t *testing.T) {
	p := Compile("abc %(msg")
	rec := &record.LogRecord{Payload: []byte("ignored")}
	assert.Equal(t, "abc %(msg", render(t, p, rec, "p"))
}

func TestEmptyPatternUsesDefault(t *testing.T) {
	p := Compile("")
	rec := &record.LogRecord{
		Timestamp: time.Unix(0, 0).UTC(),
		Level:     record.Info,
		Payload:   []byte("x"),
	}
	out := render(t, p, rec, "p")
	assert.Contains(t, out, "INFO  ")
}
