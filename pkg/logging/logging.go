// Package logging is lantern's subsystem logger. In CLI mode entries go to a
// slog text handler; in TUI mode they are delivered on a channel that the
// terminal UI drains into its activity log.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// SlogLevel maps l onto slog; unknown levels log as info.
func (l LogLevel) SlogLevel() slog.Level {
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

// ParseLevel maps a config/flag value such as "debug" to a LogLevel.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogEntry is one message as the TUI receives it.
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Subsystem string
	Message   string
	Err       error
}

// String renders the entry the way the TUI log strip shows it.
func (e LogEntry) String() string {
	line := fmt.Sprintf("%s [%s] %s: %s", e.Timestamp.Format("15:04:05"), e.Level, e.Subsystem, e.Message)
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	return line
}

// mode selects where entries go.
type mode int

const (
	modeUnset mode = iota
	modeCLI
	modeTUI
)

const defaultTUIBuffer = 2048

// sink is the active destination. It is replaced whole on every init.
type sink struct {
	mode    mode
	level   LogLevel
	logger  *slog.Logger
	entries chan LogEntry
}

var (
	mu      sync.RWMutex
	current sink
	dropped atomic.Int64
)

func install(m mode, level LogLevel, output io.Writer, buffer int) <-chan LogEntry {
	mu.Lock()
	defer mu.Unlock()

	s := sink{mode: m, level: level}
	if m == modeTUI {
		if buffer <= 0 {
			buffer = defaultTUIBuffer
		}
		s.entries = make(chan LogEntry, buffer)
		// Libraries logging through slog directly must not draw over the TUI.
		output = os.Stderr
	}
	s.logger = slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.SlogLevel()}))
	slog.SetDefault(s.logger)

	current = s
	return s.entries
}

// InitForTUI routes entries at or above filterLevel to the returned channel.
func InitForTUI(filterLevel LogLevel) <-chan LogEntry {
	return install(modeTUI, filterLevel, nil, defaultTUIBuffer)
}

// InitForCLI writes entries at or above filterLevel to output.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	install(modeCLI, filterLevel, output, 0)
}

// Dropped reports how many TUI entries were discarded because the TUI
// was not draining the channel fast enough.
func Dropped() int64 {
	return dropped.Load()
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	mu.RLock()
	defer mu.RUnlock()

	switch current.mode {
	case modeTUI:
		if level < current.level {
			return
		}
		entry := LogEntry{Timestamp: time.Now(), Level: level, Subsystem: subsystem, Message: msg, Err: err}
		// The UI loop logs too; it must never stall on a slow TUI.
		select {
		case current.entries <- entry:
		default:
			dropped.Add(1)
		}
	case modeCLI:
		attrs := []slog.Attr{slog.String("subsystem", subsystem)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		current.logger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
	default:
		fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", time.Now().Format(time.RFC3339), level, subsystem, msg)
	}
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message with its cause.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// CloseTUIChannel closes the TUI channel and falls back to stderr until the
// next init.
func CloseTUIChannel() {
	mu.Lock()
	defer mu.Unlock()
	if current.entries != nil {
		close(current.entries)
	}
	current = sink{}
}
