package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
	CRITICAL
)

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a flag value to a level. Unknown names fall back to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TRACE
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "critical":
		return CRITICAL
	default:
		return INFO
	}
}

// sink is shared by a root logger and all of its named children.
type sink struct {
	mu         sync.Mutex
	minLevel   LogLevel
	out        io.WriteCloser
	alsoStdout bool
}

// Logger writes leveled lines to a file and optionally stdout. A nil *Logger
// discards everything, so components can be built without one.
type Logger struct {
	s         *sink
	component string
}

func NewFileLogger(filePath string, minLevel LogLevel, alsoStdout bool) (*Logger, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewLogger(f, minLevel, alsoStdout), nil
}

// NewLogger wraps an arbitrary writer. The writer is closed by Close.
func NewLogger(w io.WriteCloser, minLevel LogLevel, alsoStdout bool) *Logger {
	return &Logger{s: &sink{
		minLevel:   minLevel,
		out:        w,
		alsoStdout: alsoStdout,
	}}
}

// Named returns a child logger whose lines are tagged with component.
func (l *Logger) Named(component string) *Logger {
	if l == nil {
		return nil
	}
	name := component
	if l.component != "" {
		name = l.component + "." + component
	}
	return &Logger{s: l.s, component: name}
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.out != nil {
		err := l.s.out.Close()
		l.s.out = nil
		return err
	}
	return nil
}

func (l *Logger) SetMinLevel(level LogLevel) {
	if l == nil {
		return
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.minLevel = level
}

// Enabled reports whether a line at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	if l == nil {
		return false
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return level >= l.s.minLevel
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if l == nil {
		return
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	if level < l.s.minLevel {
		return
	}

	ts := time.Now().Format(time.RFC3339Nano)
	body := fmt.Sprintf(msg, args...)
	if l.component != "" {
		body = l.component + ": " + body
	}
	line := fmt.Sprintf("%s [%s] %s\n", ts, level.String(), body)

	if l.s.out != nil {
		_, _ = io.WriteString(l.s.out, line)
		if f, ok := l.s.out.(*os.File); ok {
			_ = f.Sync()
		}
	}
	if l.s.alsoStdout {
		_, _ = os.Stdout.WriteString(line)
	}
}

func (l *Logger) Trace(msg string, args ...any)    { l.log(TRACE, msg, args...) }
func (l *Logger) Debug(msg string, args ...any)    { l.log(DEBUG, msg, args...) }
func (l *Logger) Info(msg string, args ...any)     { l.log(INFO, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)     { l.log(WARN, msg, args...) }
func (l *Logger) Error(msg string, args ...any)    { l.log(ERROR, msg, args...) }
func (l *Logger) Critical(msg string, args ...any) { l.log(CRITICAL, msg, args...) }
