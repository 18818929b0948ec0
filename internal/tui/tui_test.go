package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lantern/internal/tui/components"
	"lantern/pkg/logging"
)

func entry(i int) logging.LogEntry {
	return logging.LogEntry{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Level:     logging.LevelInfo,
		Subsystem: "Test",
		Message:   fmt.Sprintf("line %d", i),
	}
}

func TestActivityLog_KeepsNewest(t *testing.T) {
	log := NewActivityLog(3)
	for i := 1; i <= 5; i++ {
		log.Add(entry(i))
	}
	assert.Equal(t, 3, log.Len())

	out := log.Render(80, 2)
	assert.NotContains(t, out, "line 3")
	assert.Contains(t, out, "line 4")
	assert.Contains(t, out, "line 5")
	assert.Empty(t, log.Render(80, 0))
}

func TestListenForLogs(t *testing.T) {
	assert.Nil(t, ListenForLogs(nil))

	ch := make(chan logging.LogEntry, 1)
	ch <- entry(7)
	msg := ListenForLogs(ch)()
	require.IsType(t, LogEntryMsg{}, msg)
	assert.Equal(t, "line 7", msg.(LogEntryMsg).Entry.Message)

	close(ch)
	assert.Nil(t, ListenForLogs(ch)())
}

func TestStatus_LaterMessageSurvivesEarlierClear(t *testing.T) {
	var s Status
	require.NotNil(t, s.Set("first", components.StatusBarInfo, time.Second))
	s.Set("second", components.StatusBarSuccess, 0)

	s.Clear(ClearStatusBarMsg{ID: 1})
	assert.Equal(t, "second", s.Message)

	s.Clear(ClearStatusBarMsg{ID: 2})
	assert.Empty(t, s.Message)
}

func TestCopyToStatus(t *testing.T) {
	original := writeClipboard
	t.Cleanup(func() { writeClipboard = original })

	var copied string
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	var s Status
	CopyToStatus(&s, "error", "boom")
	assert.Equal(t, "boom", copied)
	assert.Equal(t, "Copied error to clipboard", s.Message)
	assert.Equal(t, components.StatusBarSuccess, s.Type)

	CopyToStatus(&s, "error", "")
	assert.Equal(t, "Nothing to copy: no error", s.Message)

	writeClipboard = func(string) error { return errors.New("no clipboard") }
	CopyToStatus(&s, "error", "boom")
	assert.Equal(t, components.StatusBarError, s.Type)
	assert.Contains(t, s.Message, "no clipboard")
}
