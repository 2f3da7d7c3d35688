// Command alogd runs a standalone async logger off a JSON config file,
// reading lines from stdin and writing each as a data record. It exists to
// exercise the config and sink packages end-to-end outside of tests.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvashisth/alog"
	"github.com/nvashisth/alog/archive"
	"github.com/nvashisth/alog/config"
	"github.com/nvashisth/alog/record"
	"github.com/nvashisth/alog/sink"
)

func main() {
	configFile := flag.String("config", "asynclog.json", "path to JSON config file")
	gcsBucket := flag.String("gcs-bucket", "", "if set, upload rotated segments to this GCS bucket")
	flag.Parse()

	resolved, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("alogd: %v", err)
	}

	var rotationWatcher sink.RotationWatcher
	var uploader *archive.Uploader
	if *gcsBucket != "" {
		uploader, err = archive.New(archive.Config{Bucket: *gcsBucket}, stderrReporter{})
		if err != nil {
			log.Fatalf("alogd: failed to set up archive uploader: %v", err)
		}
		rotationWatcher = uploader
	}

	var fileOpts []sink.FileOption
	if rotationWatcher != nil {
		fileOpts = append(fileOpts, sink.WithRotationWatcher(rotationWatcher))
	}
	fileSink := sink.NewFile(resolved.Path, resolved.Pattern, "alogd", stderrDiag{}, fileOpts...)

	logger, err := alog.New(alog.Options{
		Sink:      fileSink,
		QueueSize: resolved.QueueSize,
		Level:     resolved.Level,
	})
	if err != nil {
		log.Fatalf("alogd: %v", err)
	}
	if err := logger.Start(); err != nil {
		log.Fatalf("alogd: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer := logger.NewProducer()
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			producer.Log(record.Info, "%s", scanner.Text())
		}
	}()

	select {
	case <-sigCh:
	case <-done:
	}

	if err := logger.Stop(); err != nil {
		log.Fatalf("alogd: stop: %v", err)
	}
	if uploader != nil {
		if err := uploader.Close(); err != nil {
			log.Printf("alogd: archive close: %v", err)
		}
	}
}

type stderrDiag struct{}

func (stderrDiag) Report(level record.Level, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", level.String(), fmt.Sprintf(format, args...))
}

type stderrReporter struct{}

func (stderrReporter) Report(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "archive: "+format+"\n", args...)
}
