// Package progress reports the steps of long-running operations.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Callback receives progress updates during long operations. current and
// total count steps; message names the step just entered.
type Callback func(op string, current, total int, message string)

// Noop is a no-op callback for default behavior.
func Noop(op string, current, total int, message string) {}

// Multi fans one update out to every non-nil callback.
func Multi(cbs ...Callback) Callback {
	return func(op string, current, total int, message string) {
		for _, cb := range cbs {
			if cb != nil {
				cb(op, current, total, message)
			}
		}
	}
}

// Terminal renders a single-line progress bar.
type Terminal struct {
	mu          sync.Mutex
	writer      io.Writer
	enabled     bool
	lastLineLen int
	current     int
	total       int
	op          string
}

// NewTerminal creates a progress bar writing to w.
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	return &Terminal{writer: w, enabled: enabled}
}

// Callback returns a Callback that redraws the bar.
func (t *Terminal) Callback() Callback {
	return func(op string, current, total int, message string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if !t.enabled {
			return
		}
		t.op, t.current, t.total = op, current, total
		t.render(message)
	}
}

func (t *Terminal) render(message string) {
	total := t.total
	if total <= 0 {
		total = 1
	}
	current := t.current
	if current > total {
		current = total
	}

	const barWidth = 30
	filled := barWidth * current / total
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)

	clear := "\r"
	if t.lastLineLen > 0 {
		clear = "\r" + strings.Repeat(" ", t.lastLineLen) + "\r"
	}
	line := fmt.Sprintf("%s [%s] %d/%d", t.op, bar, current, total)
	if message != "" {
		line += " " + message
	}
	fmt.Fprint(t.writer, clear+line)
	t.lastLineLen = len(line)
}

// Done ends the bar with a newline.
func (t *Terminal) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled || t.lastLineLen == 0 {
		return
	}
	fmt.Fprintln(t.writer)
	t.lastLineLen = 0
}
