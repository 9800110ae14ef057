// Package trace provides leveled diagnostics for the optimizer: pass-level
// totals and per-method detail, off by default.
package trace

import (
	"fmt"
	"io"
	"sync"
)

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff Level = iota
	// LevelPass emits pass-level totals.
	LevelPass
	// LevelMethod emits per-method events as well.
	LevelMethod
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelPass:
		return "pass"
	case LevelMethod:
		return "method"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF":
		return LevelOff, nil
	case "pass", "PASS":
		return LevelPass, nil
	case "method", "METHOD":
		return LevelMethod, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|pass|method)", s)
	}
}

// Tracer receives formatted trace events. Implementations must be safe for
// concurrent use: the driver emits from parallel workers.
type Tracer interface {
	Enabled(l Level) bool
	Eventf(l Level, format string, args ...any)
}

// Nop is a tracer that drops everything.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Enabled(Level) bool           { return false }
func (nopTracer) Eventf(Level, string, ...any) {}

// NewWriter returns a tracer that writes events at or below max, one line
// per event, to w.
func NewWriter(w io.Writer, max Level) Tracer {
	return &writerTracer{w: w, max: max}
}

type writerTracer struct {
	mu  sync.Mutex
	w   io.Writer
	max Level
}

func (t *writerTracer) Enabled(l Level) bool {
	return l != LevelOff && l <= t.max
}

func (t *writerTracer) Eventf(l Level, format string, args ...any) {
	if !t.Enabled(l) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format+"\n", args...)
}
