// Package config parses the JSON configuration file understood by the
// syslog ABI shim and by any caller that prefers file-based setup over
// constructing alog.Options directly.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvashisth/alog/pattern"
	"github.com/nvashisth/alog/record"
)

// File is the on-disk schema: {"path": "...", "pattern": "...", "level":
// "...", "queue_size": N}. Pattern and level are optional; queue_size
// defaults the same way alog.Options does.
type File struct {
	Path      string `json:"path"`
	Pattern   string `json:"pattern"`
	Level     string `json:"level"`
	QueueSize int    `json:"queue_size"`
}

// Resolved is a File after validation: Level parsed to a record.Level and
// Pattern compiled.
type Resolved struct {
	Path      string
	Pattern   *pattern.Pattern
	Level     record.Level
	QueueSize int
}

// Load reads and parses the configuration file at path, rejecting unknown
// keys so a typo in a config file fails loudly instead of silently
// applying defaults.
func Load(path string) (Resolved, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse validates and resolves raw JSON config bytes.
func Parse(data []byte) (Resolved, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return Resolved{}, fmt.Errorf("config: decode: %w", err)
	}
	return f.Validate()
}

// Validate checks required fields and resolves level/pattern, applying
// defaults where the schema allows.
func (f File) Validate() (Resolved, error) {
	if f.Path == "" {
		return Resolved{}, fmt.Errorf("config: \"path\" is required")
	}

	level := record.Info
	if f.Level != "" {
		lvl, ok := record.ParseLevel(f.Level)
		if !ok {
			return Resolved{}, fmt.Errorf("config: unrecognized level %q", f.Level)
		}
		level = lvl
	}

	patStr := f.Pattern
	if patStr == "" {
		patStr = pattern.Default
	}

	queueSize := f.QueueSize
	if queueSize == 0 {
		queueSize = 1024
	} else if queueSize < 2 || queueSize&(queueSize-1) != 0 {
		return Resolved{}, fmt.Errorf("config: \"queue_size\" must be a power of two >= 2, got %d", queueSize)
	}

	return Resolved{
		Path:      f.Path,
		Pattern:   pattern.Compile(patStr),
		Level:     level,
		QueueSize: queueSize,
	}, nil
}
