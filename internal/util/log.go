package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel orders log severities from most to least verbose.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelByName = map[string]LogLevel{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// String returns the lowercase name of the level.
func (lvl LogLevel) String() string {
	switch lvl {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Logger writes timestamped, level-tagged lines to one destination. The
// level is atomic because config reload adjusts it while workers log; the
// writer is guarded so interleaved goroutines emit whole lines.
type Logger struct {
	level atomic.Int32
	clock func() time.Time

	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a logger writing to stderr.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to the provided destination.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	l := &Logger{w: w, clock: time.Now}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the minimum severity that gets written.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// Level reports the current minimum severity.
func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if level < LogLevel(l.level.Load()) {
		return
	}
	ts := l.clock().Format("2006-01-02 15:04:05.000")
	tag := strings.ToUpper(level.String())
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s %-5s %s\n", ts, tag, msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// ParseLogLevel converts a string into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	if lvl, ok := levelByName[strings.ToLower(s)]; ok {
		return lvl
	}
	return LevelInfo
}
