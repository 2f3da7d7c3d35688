// Package syslogshim gives unmodified callers written against the
// log/syslog-style Openlog/Syslog/Closelog shape a drop-in async logger
// backend, without requiring them to import or construct an alog.Logger
// directly.
package syslogshim

import (
	"fmt"
	"os"
	"sync"

	"github.com/nvashisth/alog"
	"github.com/nvashisth/alog/archive"
	"github.com/nvashisth/alog/config"
	"github.com/nvashisth/alog/pattern"
	"github.com/nvashisth/alog/record"
	"github.com/nvashisth/alog/sink"
)

const hookQueueSize = 1024 * 1024

var (
	once   sync.Once
	logger *alog.Logger
	prod   *alog.Producer
	initMu sync.Mutex
)

// Priority mirrors the handful of syslog(3) priority constants the shim
// translates to record.Level.
type Priority int

const (
	LOG_EMERG Priority = iota
	LOG_ALERT
	LOG_CRIT
	LOG_ERR
	LOG_WARNING
	LOG_NOTICE
	LOG_INFO
	LOG_DEBUG
)

// Openlog lazily initializes the process-wide logger on first call,
// guarded by a sync.Once the same way a pthread_once-guarded C hook
// would be. ident and facility are accepted for interface compatibility
// but otherwise unused.
func Openlog(ident string, facility int) {
	once.Do(openlogOnce)
}

func openlogOnce() {
	candidates := []string{}
	if configFile := os.Getenv("ALOG_CONFIG_FILE"); configFile != "" {
		candidates = append(candidates, configFile)
	}
	candidates = append(candidates, "../conf/asynclog.json", "asynclog.json")

	var resolved config.Resolved
	var loadedFrom string
	var lastErr error
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			lastErr = err
			continue
		}
		r, err := config.Load(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		resolved = r
		loadedFrom = candidate
		break
	}

	if loadedFrom == "" {
		resolved = config.Resolved{
			Path:      defaultLogPath(),
			Pattern:   pattern.Compile(pattern.Default),
			Level:     record.Info,
			QueueSize: hookQueueSize,
		}
	}

	var diagBuf diagnosticBuffer
	fileSink := sink.NewFile(resolved.Path, resolved.Pattern, processName(), &diagBuf)

	if bucket := os.Getenv("ALOG_GCS_BUCKET"); bucket != "" {
		if uploader, err := archive.New(archive.Config{Bucket: bucket}, nil); err == nil {
			fileSink = sink.NewFile(resolved.Path, resolved.Pattern, processName(), &diagBuf, sink.WithRotationWatcher(uploader))
		} else {
			diagBuf.Report(record.Error, "archive uploader disabled: %v", err)
		}
	}

	l, err := alog.New(alog.Options{
		Sink:      fileSink,
		QueueSize: resolved.QueueSize,
		Level:     resolved.Level,
	})
	if err != nil {
		diagBuf.Report(record.Error, "openlog: failed to construct logger: %v", err)
		return
	}
	if err := l.Start(); err != nil {
		diagBuf.Report(record.Error, "openlog: failed to start logger: %v", err)
		return
	}

	initMu.Lock()
	logger = l
	prod = l.NewProducer()
	initMu.Unlock()

	if loadedFrom != "" {
		diagBuf.Report(record.Info, "openlog: loaded config file: %s", loadedFrom)
	} else {
		diagBuf.Report(record.Error, "openlog: no config file found (%v), using embedded defaults", lastErr)
	}
}

// Syslog logs one record at priority, translated to the library's level
// scale, formatting format+args the same way Producer.Log does.
func Syslog(priority Priority, format string, args ...any) {
	Openlog("", 0)
	initMu.Lock()
	l, p := logger, prod
	initMu.Unlock()
	if l == nil || p == nil {
		return
	}

	level := translatePriority(priority)
	if !l.ShouldLog(level) {
		return
	}
	p.Log(level, format, args...)
}

// Closelog stops the process-wide logger, draining its queue, if Openlog
// was ever called.
func Closelog() {
	initMu.Lock()
	l := logger
	initMu.Unlock()
	if l == nil {
		return
	}
	_ = l.Stop()
}

// Setlogmask is accepted for ABI compatibility; this shim does not filter
// by a bitmask of priorities, only by the single minimum level alog.Logger
// already supports.
func Setlogmask(mask int) int {
	return mask
}

func translatePriority(p Priority) record.Level {
	switch p {
	case LOG_EMERG, LOG_ALERT, LOG_CRIT:
		return record.Fatal
	case LOG_ERR:
		return record.Error
	case LOG_WARNING:
		return record.Warn
	case LOG_NOTICE:
		return record.Notice
	case LOG_INFO:
		return record.Info
	case LOG_DEBUG:
		return record.Debug
	default:
		return record.Fatal
	}
}

func processName() string {
	exe, err := os.Executable()
	if err != nil {
		return "unknown"
	}
	return exe
}

func defaultLogPath() string {
	return processName() + ".log"
}

// diagnosticBuffer is a minimal sink.Diagnostics that prints to stderr,
// used only during Openlog before a full Logger (and its own internal
// diagnostic stream) exists yet.
type diagnosticBuffer struct{}

func (diagnosticBuffer) Report(level record.Level, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", level.String(), fmt.Sprintf(format, args...))
}
