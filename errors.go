package alog

import "errors"

// Sentinel errors returned by the logger facade. Producer-path failures
// (drop, truncation, format error) are never returned as errors — they are
// silent and only counted.
var (
	// ErrNoSink is returned by New when Options.Sink is nil.
	ErrNoSink = errors.New("alog: no sink configured")
	// ErrAlreadyStarted is returned by Start when the logger is already running.
	ErrAlreadyStarted = errors.New("alog: already started")
	// ErrNotRunning is returned by operations that require a running logger.
	ErrNotRunning = errors.New("alog: logger not running")
)
