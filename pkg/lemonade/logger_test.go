package lemonade

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewLogger tests the creation of a new logger
func TestNewLogger(t *testing.T) {
	logger := NewLogger(LogLevelInfo)
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}

	if logger.level != LogLevelInfo {
		t.Errorf("Expected log level %d, got %d", LogLevelInfo, logger.level)
	}
}

// TestSetLevel tests setting the log level
func TestSetLevel(t *testing.T) {
	logger := NewLogger(LogLevelError)
	if logger.level != LogLevelError {
		t.Errorf("Initial log level should be %d, got %d", LogLevelError, logger.level)
	}

	logger.SetLevel(LogLevelDebug)
	if logger.level != LogLevelDebug {
		t.Errorf("Log level should be %d after SetLevel, got %d", LogLevelDebug, logger.level)
	}
}

// captureOutput runs f against a logger writing JSON lines to a buffer
func captureOutput(level LogLevel, f func(Logger)) string {
	var buf bytes.Buffer
	f(NewLoggerWithWriter(level, &buf))
	return buf.String()
}

func TestLevelFiltering(t *testing.T) {
	levels := []LogLevel{LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug, LogLevelTrace}

	emitters := []struct {
		name     string
		minLevel LogLevel
		marker   string
		emit     func(Logger, string)
	}{
		{"Error", LogLevelError, `"level":"error"`, func(l Logger, m string) { l.Error(m) }},
		{"Warn", LogLevelWarn, `"level":"warn"`, func(l Logger, m string) { l.Warn(m) }},
		{"Info", LogLevelInfo, `"level":"info"`, func(l Logger, m string) { l.Info(m) }},
		{"Debug", LogLevelDebug, `"level":"debug"`, func(l Logger, m string) { l.Debug(m) }},
		{"Trace", LogLevelTrace, `"level":"trace"`, func(l Logger, m string) { l.Trace(m) }},
	}

	for _, e := range emitters {
		for _, level := range levels {
			t.Run(e.name+"At"+logLevelToString(level), func(t *testing.T) {
				message := e.name + " message"
				output := captureOutput(level, func(l Logger) { e.emit(l, message) })

				containsMessage := strings.Contains(output, e.marker) && strings.Contains(output, message)
				expected := level >= e.minLevel
				if expected && !containsMessage {
					t.Errorf("Expected %s log with message '%s', got: '%s'", e.name, message, output)
				} else if !expected && containsMessage {
					t.Errorf("Did not expect %s log with message '%s', but got: '%s'", e.name, message, output)
				}
			})
		}
	}
}

// Helper function to convert LogLevel to string for testing purposes
func logLevelToString(level LogLevel) string {
	switch level {
	case LogLevelError:
		return "Error"
	case LogLevelWarn:
		return "Warn"
	case LogLevelInfo:
		return "Info"
	case LogLevelDebug:
		return "Debug"
	case LogLevelTrace:
		return "Trace"
	default:
		return "Unknown"
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		name  string
		level LogLevel
	}{
		{"error", LogLevelError},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"info", LogLevelInfo},
		{"debug", LogLevelDebug},
		{"trace", LogLevelTrace},
		{"bogus", LogLevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLogLevel(tc.name); got != tc.level {
				t.Errorf("ParseLogLevel(%q) = %d, want %d", tc.name, got, tc.level)
			}
		})
	}
}

// TestFormatting tests log message formatting
func TestFormatting(t *testing.T) {
	output := captureOutput(LogLevelDebug, func(l Logger) {
		l.Debug("Test %s %d", "string", 42)
	})

	expected := "Test string 42"
	if !strings.Contains(output, expected) {
		t.Errorf("Expected formatted message '%s', got: '%s'", expected, output)
	}
	if !strings.Contains(output, `"component":"lemonade"`) {
		t.Errorf("Expected component field in output, got: '%s'", output)
	}
}
