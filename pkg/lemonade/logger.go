package lemonade

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel defines the level of logging
type LogLevel int

const (
	// LogLevelError only shows error messages
	LogLevelError LogLevel = iota
	// LogLevelWarn shows warning and error messages
	LogLevelWarn
	// LogLevelInfo shows info and error messages
	LogLevelInfo
	// LogLevelDebug shows all messages including debug
	LogLevelDebug
	// LogLevelTrace shows all messages including trace
	LogLevelTrace
)

// ParseLogLevel maps a level name to a LogLevel. Unknown names yield LogLevelInfo.
func ParseLogLevel(name string) LogLevel {
	switch name {
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	case "trace":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// loggerStruct filters by LogLevel and hands the surviving messages to zerolog
type loggerStruct struct {
	level LogLevel
	zl    zerolog.Logger
}

// NewLogger creates a new logger with the specified log level, writing
// human-readable lines to stderr.
func NewLogger(level LogLevel) *loggerStruct {
	return NewLoggerWithWriter(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// NewLoggerWithWriter creates a logger that writes zerolog events to w.
// A plain writer receives one JSON object per line.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *loggerStruct {
	return &loggerStruct{
		level: level,
		zl:    zerolog.New(w).With().Timestamp().Str("component", "lemonade").Logger(),
	}
}

func (l *loggerStruct) SetLevel(level LogLevel) {
	l.level = level
}

func (l *loggerStruct) Error(format string, v ...interface{}) {
	// Error messages are always shown
	l.zl.Error().Msgf(format, v...)
}

// Warn logs a warning message if the log level is Warn or higher
func (l *loggerStruct) Warn(format string, v ...interface{}) {
	if l.level >= LogLevelWarn {
		l.zl.Warn().Msgf(format, v...)
	}
}

func (l *loggerStruct) Info(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.zl.Info().Msgf(format, v...)
	}
}

func (l *loggerStruct) Debug(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.zl.Debug().Msgf(format, v...)
	}
}

// Trace bypasses zerolog's global level, which drops trace events by default.
func (l *loggerStruct) Trace(format string, v ...interface{}) {
	if l.level >= LogLevelTrace {
		l.zl.Log().Str(zerolog.LevelFieldName, zerolog.LevelTraceValue).Msgf(format, v...)
	}
}

// Logger is the interface for logging, it can be overridden by the client code
type Logger interface {
	SetLevel(level LogLevel)
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Trace(format string, v ...interface{})
}
