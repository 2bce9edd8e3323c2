// Package metrics defines the observability sink the processor publishes to.
// Publish failures are swallowed: losing a data point must never fail a
// record that otherwise processed cleanly.
package metrics

import "time"

type Sink interface {
	Count(name string, value float64, dimensions map[string]string)
	Duration(name string, d time.Duration, dimensions map[string]string)
}

// Metric names published by the processor.
const (
	InvocationCount = "InvocationCount"
	FilesProcessed  = "FilesProcessed"
	FilesFailed     = "FilesFailed"
	RowsWritten     = "RowsWritten"
	DuplicateSkips  = "DuplicateSkips"
	ErrorCount      = "ErrorCount"
	WriteDuration   = "WriteDuration"
)

// Noop discards every observation; used when metrics are disabled and in
// tests that do not assert on them.
type Noop struct{}

func (Noop) Count(string, float64, map[string]string)        {}
func (Noop) Duration(string, time.Duration, map[string]string) {}
