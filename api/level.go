package api

import (
	"fmt"
	"strings"
)

// Level is the severity of a log event. Values follow the classic
// numeric scale so that ordering comparisons are plain integer comparisons.
type Level int

const (
	LevelNotSet Level = -1
	LevelTrace  Level = 0
	LevelDebug  Level = 10000
	LevelInfo   Level = 20000
	LevelWarn   Level = 30000
	LevelError  Level = 40000
	LevelFatal  Level = 50000
	LevelOff    Level = 60000

	// LevelAll enables every event.
	LevelAll = LevelTrace
)

// String returns the canonical upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelNotSet:
		return "NOTSET"
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// IsSet reports whether the level carries a value.
func (l Level) IsSet() bool { return l != LevelNotSet }

// ParseLevel converts a level name to a Level. Case-insensitive.
// An empty name yields LevelNotSet without error; an unknown name yields
// LevelNotSet and an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return LevelNotSet, nil
	case "NOTSET", "NOT_SET":
		return LevelNotSet, nil
	case "TRACE", "ALL":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	case "OFF":
		return LevelOff, nil
	}
	return LevelNotSet, fmt.Errorf("unknown log level %q", s)
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
