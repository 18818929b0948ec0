package tui

import "github.com/charmbracelet/bubbles/key"

// DisplayKeyMap defines the keybindings of the projector screen. The
// direction keys stand in for the accelerometer.
type DisplayKeyMap struct {
	North     key.Binding
	East      key.Binding
	South     key.Binding
	West      key.Binding
	Up        key.Binding
	Down      key.Binding
	Copy      key.Binding
	ToggleLog key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultDisplayKeyMap returns the projector bindings.
func DefaultDisplayKeyMap() DisplayKeyMap {
	return DisplayKeyMap{
		North: key.NewBinding(
			key.WithKeys("n", "up"),
			key.WithHelp("↑/n", "point north"),
		),
		East: key.NewBinding(
			key.WithKeys("e", "right"),
			key.WithHelp("→/e", "point east"),
		),
		South: key.NewBinding(
			key.WithKeys("s", "down"),
			key.WithHelp("↓/s", "point south"),
		),
		West: key.NewBinding(
			key.WithKeys("w", "left"),
			key.WithHelp("←/w", "point west"),
		),
		Up: key.NewBinding(
			key.WithKeys("u", "pgup"),
			key.WithHelp("u", "point up"),
		),
		Down: key.NewBinding(
			key.WithKeys("d", "pgdown"),
			key.WithHelp("d", "point down"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy error"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k DisplayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.North, k.South, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k DisplayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.North, k.East, k.South},
		{k.West, k.Up, k.Down},
		{k.Copy, k.ToggleLog, k.Help, k.Quit},
	}
}

// CompanionKeyMap defines the keybindings of the companion screens.
type CompanionKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Connect    key.Binding
	Back       key.Binding
	Retry      key.Binding
	Copy       key.Binding
	NextType   key.Binding
	ClearPlane key.Binding
	Point      key.Binding
	ToggleLog  key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultCompanionKeyMap returns the companion bindings.
func DefaultCompanionKeyMap() CompanionKeyMap {
	return CompanionKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "navigate up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "navigate down"),
		),
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "disconnect"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "try again / refresh"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		NextType: key.NewBinding(
			key.WithKeys("t", " "),
			key.WithHelp("t", "next channel type"),
		),
		ClearPlane: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear plane"),
		),
		Point: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "point lantern here"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k CompanionKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Back, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k CompanionKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Connect, k.Back},
		{k.NextType, k.ClearPlane, k.Point, k.Retry},
		{k.Copy, k.ToggleLog, k.Help, k.Quit},
	}
}
