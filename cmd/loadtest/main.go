// Command loadtest drives a fixed number of producer goroutines against an
// alog.Logger writing to a file sink, and reports throughput and drop rate
// once the run completes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvashisth/alog"
	"github.com/nvashisth/alog/pattern"
	"github.com/nvashisth/alog/record"
	"github.com/nvashisth/alog/sink"
)

func main() {
	var (
		duration    = flag.Duration("duration", 10*time.Second, "how long to generate load")
		producers   = flag.Int("producers", 8, "number of concurrent producer goroutines")
		queueSize   = flag.Int("queue-size", 1<<16, "queue capacity, must be a power of two")
		logDir      = flag.String("log-dir", "loadtest-logs", "directory to write the output log file into")
		flushPeriod = flag.Duration("flush-interval", 200*time.Millisecond, "consumer flush cadence")
	)
	flag.Parse()

	if err := os.MkdirAll(*logDir, 0755); err != nil {
		log.Fatalf("loadtest: create log dir: %v", err)
	}
	path := filepath.Join(*logDir, "loadtest.log")
	fileSink := sink.NewFile(path, pattern.Compile(pattern.Default), "loadtest", diagLogger{})

	logger, err := alog.New(alog.Options{
		Sink:          fileSink,
		QueueSize:     *queueSize,
		FlushInterval: *flushPeriod,
	})
	if err != nil {
		log.Fatalf("loadtest: %v", err)
	}
	if err := logger.Start(); err != nil {
		log.Fatalf("loadtest: %v", err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p := logger.NewProducer()
			n := 0
			for {
				select {
				case <-stop:
					return
				default:
				}
				p.Log(record.Info, "producer %d message %d at %s", id, n, time.Now().Format(time.RFC3339Nano))
				n++
			}
		}(i)
	}

	time.Sleep(*duration)
	close(stop)
	wg.Wait()
	elapsed := time.Since(start)

	if err := logger.Stop(); err != nil {
		log.Fatalf("loadtest: stop: %v", err)
	}

	snap := logger.Stats()
	fmt.Printf("duration:        %s\n", elapsed)
	fmt.Printf("total:           %d\n", snap.Total)
	fmt.Printf("delivered:       %d\n", snap.Delivered)
	fmt.Printf("dropped:         %d\n", snap.Drop)
	fmt.Printf("truncated:       %d\n", snap.Trunc)
	fmt.Printf("throughput/sec:  %.0f\n", float64(snap.Total)/elapsed.Seconds())
	fmt.Printf("output file:     %s\n", path)
}

type diagLogger struct{}

func (diagLogger) Report(level record.Level, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "loadtest: %s %s\n", level.String(), fmt.Sprintf(format, args...))
}
