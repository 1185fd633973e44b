// Package cli implements the licensetower command-line interface.
//
// This package provides commands for scanning project manifests, checking
// license compatibility, managing the license metadata cache and serving the
// HTTP API. The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - scan: Resolve the license of every dependency under a directory
//   - check: Check whether two licenses can be combined
//   - licenses: Analyze license sets, normalize names, inspect the knowledge base
//   - cache: Inspect, export, prune and clear the metadata cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Diagnostics go
// to stderr so that exports written to stdout stay clean.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Analyzed 42 dependencies (1.234s)"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg+" ("+time.Since(p.start).Round(time.Millisecond).String()+")", keyvals...)
}
