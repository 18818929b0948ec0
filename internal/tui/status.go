package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lantern/internal/tui/components"
)

// ClearStatusBarMsg clears the status message it was scheduled for.
type ClearStatusBarMsg struct {
	ID int
}

// Status holds the transient status bar message.
type Status struct {
	Message string
	Type    components.MessageType
	id      int
}

// Set shows msg and, when clearAfter is positive, schedules its removal.
// A later Set wins over the pending clear of an earlier one.
func (s *Status) Set(msg string, msgType components.MessageType, clearAfter time.Duration) tea.Cmd {
	s.id++
	s.Message = msg
	s.Type = msgType
	if clearAfter <= 0 {
		return nil
	}
	id := s.id
	return tea.Tick(clearAfter, func(time.Time) tea.Msg {
		return ClearStatusBarMsg{ID: id}
	})
}

// Clear handles a ClearStatusBarMsg.
func (s *Status) Clear(msg ClearStatusBarMsg) {
	if msg.ID == s.id {
		s.Message = ""
	}
}

// Render draws the status bar; left and right show while no message is set.
func (s *Status) Render(width int, left, right string) string {
	bar := components.NewStatusBar(width).WithLeftText(left).WithRightText(right)
	if s.Message != "" {
		bar.WithMessage(s.Message, s.Type)
	}
	return bar.Render()
}
