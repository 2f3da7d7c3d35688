// Package sink defines the capability record consumed by the logger's
// consumer loop and provides the file, null, and stream implementations.
//
// Sinks are modeled as a small capability interface rather than an
// inheritance hierarchy: a file sink *has a* formatter and *has a*
// byte-output function, it does not inherit from a generic sink type.
package sink

import "github.com/nvashisth/alog/record"

// Diagnostics is the weak, non-owning back-reference a sink uses to report
// internal failures. Its lifetime is guaranteed by the logger outliving its
// sink.
type Diagnostics interface {
	Report(level record.Level, format string, args ...any)
}

// Sink is the polymorphic destination the consumer dispatches records to.
// Write takes ownership of rec and must release it (via record.Release)
// regardless of outcome.
type Sink interface {
	// Write formats and emits one data record. The sink takes ownership of
	// rec and must call record.Release on it before returning.
	Write(rec *record.LogRecord) error

	// Flush drains any internally buffered bytes to the destination.
	Flush() error

	// Close releases the sink's resources. Close must be idempotent.
	Close() error
}
