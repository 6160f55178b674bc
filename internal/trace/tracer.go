// Package trace provides opt-in execution tracing for the story engine:
// an enable flag, a glob filter list and a single io.Writer sink, with
// one line emitted per traced event (diverts taken, control commands
// executed, choices generated, external calls).
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Tracer records engine step events to a writer, filtered by glob
// patterns matched against a step's path string.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New constructs a Tracer. A nil writer defaults to os.Stderr.
func New(enabled bool, filters []string, writer io.Writer) *Tracer {
	if writer == nil {
		writer = os.Stderr
	}
	return &Tracer{enabled: enabled, filters: filters, writer: writer}
}

// Enabled reports whether the tracer will emit anything at all.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

func (t *Tracer) matchesFilter(name string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// Divert logs a divert being taken from one path to another.
func (t *Tracer) Divert(from, to string, kind string) {
	if t == nil || !t.enabled || !t.matchesFilter(to) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] DIVERT(%s) %s -> %s\n", kind, from, to)
}

// ControlCommand logs a control command executed at path.
func (t *Tracer) ControlCommand(at string, cmd string) {
	if t == nil || !t.enabled || !t.matchesFilter(at) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] CMD %s at %s\n", cmd, at)
}

// ChoiceGenerated logs a choice point producing a Choice.
func (t *Tracer) ChoiceGenerated(at string, text string, invisible bool) {
	if t == nil || !t.enabled || !t.matchesFilter(at) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	vis := "visible"
	if invisible {
		vis = "invisible"
	}
	display := text
	if len(display) > 60 {
		display = display[:57] + "..."
	}
	fmt.Fprintf(t.writer, "[TRACE] CHOICE(%s) at %s %q\n", vis, at, display)
}

// ExternalCall logs an external function invocation.
func (t *Tracer) ExternalCall(name string, argc int) {
	if t == nil || !t.enabled || !t.matchesFilter(name) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "[TRACE] EXTERNAL %s argc=%d\n", name, argc)
}
