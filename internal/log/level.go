package log

import "log/slog"

// Level represents the severity of a log message
type Level string

const (
	// LevelDebug is for detailed debugging information
	LevelDebug Level = "debug"
	// LevelInfo is for general informational messages
	LevelInfo Level = "info"
	// LevelWarn is for warning messages that indicate potential issues
	LevelWarn Level = "warn"
	// LevelError is for error messages that indicate failures
	LevelError Level = "error"
)

// ToSlogLevel converts our Level to slog.Level
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a string into a Level, defaulting to info
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
