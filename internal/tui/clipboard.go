package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"lantern/internal/tui/components"
)

// For mocking in tests
var writeClipboard = clipboard.WriteAll

// CopyToStatus copies text to the system clipboard and reports the result
// in the status bar. what names the copied thing in the message.
func CopyToStatus(status *Status, what, text string) tea.Cmd {
	if text == "" {
		return status.Set(fmt.Sprintf("Nothing to copy: no %s", what), components.StatusBarWarning, 3*time.Second)
	}
	if err := writeClipboard(text); err != nil {
		return status.Set(fmt.Sprintf("Failed to copy %s: %v", what, err), components.StatusBarError, 5*time.Second)
	}
	return status.Set(fmt.Sprintf("Copied %s to clipboard", what), components.StatusBarSuccess, 3*time.Second)
}
