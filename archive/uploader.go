package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

// Reporter receives best-effort diagnostic messages about upload outcomes.
// Unlike sink.Diagnostics it carries no level. Uploader does not import
// alog, so callers supply their own implementation (cmd/alogd wires a small
// stderr adapter).
type Reporter interface {
	Report(format string, args ...any)
}

type nullReporter struct{}

func (nullReporter) Report(string, ...any) {}

// ArchiveError describes a failed attempt to upload a rotated segment. It is
// never returned from Uploader's methods — Rotated and upload are
// best-effort and report through Reporter instead — but it gives those
// reports a consistent, inspectable shape for callers that want to parse
// them back out (e.g. a Reporter that also increments its own metrics).
type ArchiveError struct {
	Op   string // "open", "upload", or "finalize"
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// Stats counts upload outcomes.
type Stats struct {
	Uploaded atomic.Uint64
	Failed   atomic.Uint64
	Dropped  atomic.Uint64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Uploaded uint64
	Failed   uint64
	Dropped  uint64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Uploaded: s.Uploaded.Load(),
		Failed:   s.Failed.Load(),
		Dropped:  s.Dropped.Load(),
	}
}

// Uploader is a sink.RotationWatcher that best-effort uploads rotated log
// files to GCS. Its Rotated method never blocks the file sink: if the
// internal queue is full, the rotation is dropped and counted, never
// retried.
type Uploader struct {
	cfg      Config
	client   *storage.Client
	reporter Reporter
	stats    Stats

	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group
	queue  chan string

	closeOnce sync.Once
	dispatch  sync.WaitGroup
}

// New constructs an Uploader. The returned Uploader owns its own
// background context; call Close to stop accepting new rotations and wait
// for in-flight uploads to finish.
func New(cfg Config, reporter Reporter, clientOpts ...option.ClientOption) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = nullReporter{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("archive: create storage client: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrentUploads)

	u := &Uploader{
		cfg:      cfg,
		client:   client,
		reporter: reporter,
		ctx:      gctx,
		cancel:   cancel,
		g:        g,
		queue:    make(chan string, cfg.QueueSize),
	}

	u.dispatch.Add(1)
	go u.run()
	return u, nil
}

// Rotated implements sink.RotationWatcher. It is called synchronously from
// the file sink's flush path, so it must never block: a full queue drops
// the rotation and counts it.
func (u *Uploader) Rotated(oldPath string) {
	select {
	case u.queue <- oldPath:
	default:
		u.stats.Dropped.Add(1)
		u.reporter.Report("archive: queue full, dropping rotation of %q", oldPath)
	}
}

// run dispatches queued paths onto the bounded errgroup, one upload per
// path. It returns once queue is closed and drained.
func (u *Uploader) run() {
	defer u.dispatch.Done()
	for path := range u.queue {
		path := path
		u.g.Go(func() error {
			u.upload(path)
			return nil
		})
	}
}

// upload uploads the file at path to cfg.Bucket under
// cfg.ObjectPrefix+basename, applying cfg.UploadTimeout. Errors are
// reported, never returned: a failed archival must not affect logging.
func (u *Uploader) upload(path string) {
	ctx, cancel := context.WithTimeout(u.ctx, u.cfg.UploadTimeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		u.fail(&ArchiveError{Op: "open", Path: path, Err: err})
		return
	}
	defer f.Close()

	object := u.cfg.ObjectPrefix + filepath.Base(path)
	w := u.client.Bucket(u.cfg.Bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/plain"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		u.fail(&ArchiveError{Op: "upload", Path: object, Err: err})
		return
	}
	if err := w.Close(); err != nil {
		u.fail(&ArchiveError{Op: "finalize", Path: object, Err: err})
		return
	}
	u.stats.Uploaded.Add(1)
}

func (u *Uploader) fail(err *ArchiveError) {
	u.stats.Failed.Add(1)
	u.reporter.Report("%v", err)
}

// Stats returns a point-in-time snapshot of upload counters.
func (u *Uploader) Stats() Snapshot {
	return u.stats.Snapshot()
}

// Close stops accepting new rotations, waits for in-flight and already
// queued uploads to finish, and releases the storage client.
func (u *Uploader) Close() error {
	var closeErr error
	u.closeOnce.Do(func() {
		close(u.queue)
		u.dispatch.Wait()
		if err := u.g.Wait(); err != nil {
			closeErr = err
		}
		u.cancel()
		if err := u.client.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	})
	return closeErr
}
