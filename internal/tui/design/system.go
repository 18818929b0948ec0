// Package design holds the colours, sizes and lipgloss styles shared by the
// display and companion TUIs.
package design

import (
	"github.com/charmbracelet/lipgloss"
)

// Sizes, in terminal cells.
const (
	SpaceXS = 1
	SpaceSM = 2

	MinPanelHeight = 5
	MinPanelWidth  = 20

	// Rows reserved below the main panel for the log strip.
	LogStripHeight = 4
)

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Palette. Amber is the lamp; everything else stays out of its way.
var (
	ColorPrimary = adaptive("#A16207", "#FCD34D")

	ColorSuccess = adaptive("#15803D", "#4ADE80")
	ColorError   = adaptive("#B91C1C", "#F87171")
	ColorWarning = adaptive("#C2410C", "#FB923C")
	ColorInfo    = adaptive("#0E7490", "#22D3EE")

	ColorInk     = adaptive("#1C1917", "#FAFAF9")
	ColorDim     = adaptive("#78716C", "#A8A29E")
	ColorFaint   = adaptive("#A8A29E", "#57534E")
	ColorShade   = adaptive("#F5F5F4", "#292524")
	ColorBorder  = adaptive("#D6D3D1", "#44403C")
	ColorOnColor = adaptive("#FFFFFF", "#1C1917")
)

// Panels and text.
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, SpaceXS)

	PanelFocusedStyle = PanelStyle.BorderForeground(ColorPrimary)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorInk)

	ListItemStyle         = lipgloss.NewStyle().PaddingLeft(SpaceSM)
	ListItemSelectedStyle = ListItemStyle.Foreground(ColorPrimary).Bold(true)
)

// Status bar, one style per message kind.
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorShade).
			Foreground(ColorInk).
			Padding(0, SpaceSM)

	StatusBarSuccessStyle = onColor(ColorSuccess)
	StatusBarErrorStyle   = onColor(ColorError)
	StatusBarWarningStyle = onColor(ColorWarning)
	StatusBarInfoStyle    = onColor(ColorInfo)
)

func onColor(c lipgloss.AdaptiveColor) lipgloss.Style {
	return StatusBarStyle.Background(c).Foreground(ColorOnColor)
}

// Icons.
var (
	IconDefaultStyle = lipgloss.NewStyle().Foreground(ColorDim)
	IconSuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	IconErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	IconWarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	IconInfoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	IconPrimaryStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
)

// Activity log lines by level.
var (
	LogInfoStyle  = lipgloss.NewStyle().Foreground(ColorInk)
	LogWarnStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	LogErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	LogDebugStyle = lipgloss.NewStyle().Foreground(ColorFaint).Italic(true)
)

// StateStyle colours a projector discovery or connection state name.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "CONNECTED", "ENDPOINTS_AVAILABLE":
		return IconSuccessStyle
	case "CONNECTING", "LOOKING_FOR_ENDPOINTS":
		return IconWarningStyle
	default:
		return IconDefaultStyle
	}
}

// Initialize tells lipgloss which side of each adaptive colour to use.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}
