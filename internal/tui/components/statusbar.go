package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lantern/internal/tui/design"
	"lantern/internal/tui/utils"
)

// MessageType selects the status bar color.
type MessageType int

const (
	StatusBarInfo MessageType = iota
	StatusBarSuccess
	StatusBarError
	StatusBarWarning
)

// StatusBar is the bottom line of both TUIs: a transient message when one is
// set, otherwise left and right aligned text.
type StatusBar struct {
	Width       int
	Message     string
	MessageType MessageType
	LeftText    string
	RightText   string
}

// NewStatusBar creates an empty bar width cells wide.
func NewStatusBar(width int) *StatusBar {
	return &StatusBar{Width: width}
}

// WithMessage sets a message that replaces the left and right text.
func (s *StatusBar) WithMessage(message string, msgType MessageType) *StatusBar {
	s.Message = message
	s.MessageType = msgType
	return s
}

func (s *StatusBar) WithLeftText(text string) *StatusBar {
	s.LeftText = text
	return s
}

func (s *StatusBar) WithRightText(text string) *StatusBar {
	s.RightText = text
	return s
}

// Render fills exactly Width cells.
func (s *StatusBar) Render() string {
	style := s.getStyle()
	inner := max(0, s.Width-style.GetHorizontalFrameSize())

	var content string
	switch {
	case s.Message != "":
		content = utils.Ellipsize(s.Message, inner)
	case s.LeftText != "" && s.RightText != "":
		padding := inner - lipgloss.Width(s.LeftText) - lipgloss.Width(s.RightText)
		if padding > 0 {
			content = s.LeftText + strings.Repeat(" ", padding) + s.RightText
		} else {
			content = utils.TruncateString(s.LeftText, inner)
		}
	default:
		content = utils.TruncateString(s.LeftText+s.RightText, inner)
	}

	return style.
		Width(s.Width).
		MaxWidth(s.Width).
		Render(content)
}

var messageStyles = map[MessageType]lipgloss.Style{
	StatusBarInfo:    design.StatusBarInfoStyle,
	StatusBarSuccess: design.StatusBarSuccessStyle,
	StatusBarError:   design.StatusBarErrorStyle,
	StatusBarWarning: design.StatusBarWarningStyle,
}

func (s *StatusBar) getStyle() lipgloss.Style {
	if s.Message == "" {
		return design.StatusBarStyle
	}
	if style, ok := messageStyles[s.MessageType]; ok {
		return style
	}
	return design.StatusBarInfoStyle
}
