// Package cli provides the ResQrypt command-line front-end: flag parsing,
// password entry, and progress rendering around the internal/pipeline core.
package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CXPhoenix/ResQrypt/internal/util"
)

// Reporter implements pipeline.ProgressReporter for terminal output. Unlike
// a GUI progress bar, ResQrypt's default is silent; passing verbose=true
// (the -v/--verbose flag) turns on a single overwritten progress line.
type Reporter struct {
	mu        sync.Mutex
	status    string
	done      int64
	total     int64
	start     time.Time
	verbose   bool
	cancelled atomic.Bool
	lastLine  int
}

// NewReporter creates a CLI progress reporter. Progress is only rendered
// when verbose is true; errors are always printed regardless.
func NewReporter(verbose bool) *Reporter {
	return &Reporter{verbose: verbose, start: time.Now()}
}

// SetStatus updates the status message.
func (r *Reporter) SetStatus(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = text
	r.render()
}

// SetProgress records how many of the total bytes for the running phase
// have been processed so far.
func (r *Reporter) SetProgress(done, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = done
	r.total = total
	r.render()
}

// SetCanCancel is a no-op for the CLI; cancellation is always available via
// Ctrl+C, handled through OS signals in root.go.
func (r *Reporter) SetCanCancel(can bool) {}

// Update re-renders the current state (called by pipeline stages as a
// heartbeat; the CLI renders eagerly from SetStatus/SetProgress already, so
// this is a cheap no-op duplicate render).
func (r *Reporter) Update() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.render()
}

// render must be called with r.mu held.
func (r *Reporter) render() {
	if !r.verbose {
		return
	}

	progress, speed, eta := util.Statify(r.done, r.total, r.start)

	barWidth := 30
	filled := min(int(progress*float32(barWidth)), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("\r[%s] %s, %.2f MiB/s, ETA %s | %s",
		bar, util.Sizeify(r.done), speed, eta, r.status)
	if len(line) < r.lastLine {
		line += strings.Repeat(" ", r.lastLine-len(line))
	}
	r.lastLine = len(line)

	fmt.Fprint(os.Stderr, line)
}

// IsCancelled reports whether the operation was cancelled (Ctrl+C).
func (r *Reporter) IsCancelled() bool {
	return r.cancelled.Load()
}

// Cancel marks the operation as cancelled.
func (r *Reporter) Cancel() {
	r.cancelled.Store(true)
}

// Finish prints a trailing newline to move past the progress line.
func (r *Reporter) Finish() {
	if r.verbose {
		fmt.Fprintln(os.Stderr)
	}
}

// PrintError prints an error message. Always shown, per spec.md's
// "any non-zero exit MUST be accompanied by a single human-readable error
// line on stderr" contract.
func (r *Reporter) PrintError(format string, args ...any) {
	r.mu.Lock()
	showedProgress := r.verbose && r.lastLine > 0
	r.mu.Unlock()
	if showedProgress {
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintSuccess prints a success message, suppressed unless verbose.
func (r *Reporter) PrintSuccess(format string, args ...any) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
