// Package color styles terminal output for shimctl. It respects the
// NO_COLOR environment variable (https://no-color.org/).
package color

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var state struct {
	mu       sync.RWMutex
	once     sync.Once
	disabled bool
}

// Init decides once whether output is styled, from NO_COLOR, TERM=dumb and
// the --no-color flag.
func Init(noColorFlag bool) {
	state.once.Do(func() {
		disabled := noColorFlag
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			disabled = true
		}
		if os.Getenv("TERM") == "dumb" {
			disabled = true
		}
		state.mu.Lock()
		state.disabled = disabled
		state.mu.Unlock()
	})
}

// Enabled reports whether output is styled.
func Enabled() bool {
	Init(false)
	state.mu.RLock()
	defer state.mu.RUnlock()
	return !state.disabled
}

// Disable turns styling off.
func Disable() {
	Init(false)
	state.mu.Lock()
	state.disabled = true
	state.mu.Unlock()
}

// Enable turns styling on.
func Enable() {
	Init(false)
	state.mu.Lock()
	state.disabled = false
	state.mu.Unlock()
}

// Palette.
const (
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
)

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	warningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	infoStyle    = lipgloss.NewStyle().Foreground(ColorHighlight)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	codeStyle    = lipgloss.NewStyle().Bold(true).Faint(true)
)

func render(style lipgloss.Style, s string) string {
	if !Enabled() {
		return s
	}
	return style.Render(s)
}

// Success formats a success message.
func Success(s string) string { return render(successStyle, s) }

// Successf is Success with printf-style arguments.
func Successf(format string, args ...any) string { return Success(fmt.Sprintf(format, args...)) }

// Error formats an error message.
func Error(s string) string { return render(errorStyle, s) }

// Errorf is Error with printf-style arguments.
func Errorf(format string, args ...any) string { return Error(fmt.Sprintf(format, args...)) }

// Warning formats a warning message.
func Warning(s string) string { return render(warningStyle, s) }

// Warningf is Warning with printf-style arguments.
func Warningf(format string, args ...any) string { return Warning(fmt.Sprintf(format, args...)) }

// Info formats an informational message.
func Info(s string) string { return render(infoStyle, s) }

// Path formats a filesystem path or URI.
func Path(s string) string { return render(infoStyle, s) }

// State formats an install state name.
func State(s string) string { return render(warningStyle, s) }

// Header formats a header.
func Header(s string) string { return render(headerStyle, s) }

// Dim formats secondary information.
func Dim(s string) string { return render(dimStyle, s) }

// Code formats a command string.
func Code(s string) string { return render(codeStyle, s) }
