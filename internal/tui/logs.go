package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lantern/internal/tui/design"
	"lantern/internal/tui/utils"
	"lantern/pkg/logging"
)

// MaxActivityLogLines caps the in-memory activity log.
const MaxActivityLogLines = 200

// LogEntryMsg carries one entry from the logging channel.
type LogEntryMsg struct {
	Entry logging.LogEntry
}

// ListenForLogs waits for the next entry on ch. Issue it again after every
// LogEntryMsg to keep listening.
func ListenForLogs(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return LogEntryMsg{Entry: entry}
	}
}

// ActivityLog keeps the newest log entries for display.
type ActivityLog struct {
	entries []logging.LogEntry
	limit   int
}

// NewActivityLog creates a log holding at most limit entries.
func NewActivityLog(limit int) *ActivityLog {
	if limit <= 0 {
		limit = MaxActivityLogLines
	}
	return &ActivityLog{limit: limit}
}

// Add appends an entry, dropping the oldest past the limit.
func (l *ActivityLog) Add(entry logging.LogEntry) {
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0], l.entries[over:]...)
	}
}

// Len returns the number of kept entries.
func (l *ActivityLog) Len() int {
	return len(l.entries)
}

// Render shows the last height entries, newest at the bottom.
func (l *ActivityLog) Render(width, height int) string {
	if height <= 0 {
		return ""
	}
	start := max(0, len(l.entries)-height)
	lines := make([]string, 0, height)
	for _, entry := range l.entries[start:] {
		line := utils.Ellipsize(entry.String(), width)
		lines = append(lines, levelStyle(entry.Level).Render(line))
	}
	return strings.Join(lines, "\n")
}

func levelStyle(level logging.LogLevel) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return design.LogDebugStyle
	case logging.LevelWarn:
		return design.LogWarnStyle
	case logging.LevelError:
		return design.LogErrorStyle
	default:
		return design.LogInfoStyle
	}
}
