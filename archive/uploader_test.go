package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	messages []string
}

func (r *recordingReporter) Report(format string, args ...any) {
	r.messages = append(r.messages, format)
}

// newTestUploader builds an Uploader without reaching out to GCS, enough
// to exercise Rotated's non-blocking drop behavior: run() and upload() are
// never started, so the queue channel is the only thing under test.
func newTestUploader(queueSize int, reporter Reporter) *Uploader {
	if reporter == nil {
		reporter = nullReporter{}
	}
	return &Uploader{
		cfg:      Config{Bucket: "test", QueueSize: queueSize},
		reporter: reporter,
		queue:    make(chan string, queueSize),
	}
}

func TestRotatedEnqueuesWhenRoom(t *testing.T) {
	u := newTestUploader(2, nil)
	u.Rotated("/var/log/app.log.1")
	require.Len(t, u.queue, 1)
	assert.Equal(t, uint64(0), u.stats.Dropped.Load())
}

func TestRotatedDropsWhenQueueFull(t *testing.T) {
	reporter := &recordingReporter{}
	u := newTestUploader(1, reporter)
	u.Rotated("/var/log/app.log.1")
	u.Rotated("/var/log/app.log.2")

	assert.Equal(t, uint64(1), u.stats.Dropped.Load())
	require.Len(t, reporter.messages, 1)
}
