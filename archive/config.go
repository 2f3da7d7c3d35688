// Package archive uploads rotated log segments to Google Cloud Storage.
// It is a best-effort sidecar: upload failures are reported but never
// propagate back to the logging hot path.
package archive

import (
	"fmt"
	"time"
)

// Config configures an Uploader.
type Config struct {
	// Bucket is the destination GCS bucket. Required.
	Bucket string

	// ObjectPrefix is prepended to the uploaded object name, derived from
	// the rotated file's base name. May be empty.
	ObjectPrefix string

	// UploadTimeout bounds a single file's upload. Defaults to 2 minutes.
	UploadTimeout time.Duration

	// MaxConcurrentUploads bounds how many uploads run at once. Defaults
	// to 4.
	MaxConcurrentUploads int

	// QueueSize bounds how many pending rotated paths the uploader will
	// hold before it starts dropping notifications. Defaults to 64.
	QueueSize int
}

// Validate checks required fields and applies defaults, the same
// mutate-in-place shape used elsewhere in this module.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("archive: Bucket is required")
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = 2 * time.Minute
	}
	if c.MaxConcurrentUploads <= 0 {
		c.MaxConcurrentUploads = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	return nil
}
