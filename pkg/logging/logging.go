// Package logging provides structured logging for shim staging and installs.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level represents a log level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the log encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseLevel maps a config or flag value to a Level. Unknown values fall back
// to LevelInfo.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "warning":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger provides structured logging. Loggers derived with WithFields share
// the output and level of their parent.
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
}

// NewLogger creates a new JSON logger writing to stderr.
func NewLogger(level Level) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(level.logrus())
	base.SetFormatter(jsonFormatter())
	return &Logger{base: base, entry: logrus.NewEntry(base)}
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	}
}

// WithFields returns a new logger with additional fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return &Logger{base: l.base, entry: l.entry.WithFields(logrus.Fields(fields))}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	l.with(fields).Debug(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	l.with(fields).Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	l.with(fields).Warn(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	l.with(fields).Error(msg)
}

// ErrorErr logs an error message with an error value.
func (l *Logger) ErrorErr(msg string, err error, fields ...map[string]any) {
	l.with(fields).WithError(err).Error(msg)
}

func (l *Logger) with(fields []map[string]any) *logrus.Entry {
	e := l.entry
	for _, f := range fields {
		e = e.WithFields(logrus.Fields(f))
	}
	return e
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// SetLevel sets the log level.
func (l *Logger) SetLevel(level Level) {
	l.base.SetLevel(level.logrus())
}

// SetFormat switches between JSON and human-readable text output.
func (l *Logger) SetFormat(f Format) {
	if f == FormatText {
		l.base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	l.base.SetFormatter(jsonFormatter())
}

// Global logger instance
var global = NewLogger(LevelInfo)

// SetGlobal sets the global logger.
func SetGlobal(l *Logger) {
	global = l
}

// Global returns the process-wide logger.
func Global() *Logger {
	return global
}

// Debug logs to the global logger.
func Debug(msg string, fields ...map[string]any) {
	global.Debug(msg, fields...)
}

// Info logs to the global logger.
func Info(msg string, fields ...map[string]any) {
	global.Info(msg, fields...)
}

// Warn logs to the global logger.
func Warn(msg string, fields ...map[string]any) {
	global.Warn(msg, fields...)
}

// Error logs to the global logger.
func Error(msg string, fields ...map[string]any) {
	global.Error(msg, fields...)
}

// ErrorErr logs to the global logger with an error.
func ErrorErr(msg string, err error, fields ...map[string]any) {
	global.ErrorErr(msg, err, fields...)
}

// WithFields returns a new logger from global with additional fields.
func WithFields(fields map[string]any) *Logger {
	return global.WithFields(fields)
}
