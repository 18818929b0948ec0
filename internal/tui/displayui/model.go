// Package displayui is the terminal face of the projector: it shows the
// visible channel, lets the keyboard stand in for the accelerometer and
// tails the activity log.
package displayui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lantern/internal/channel"
	"lantern/internal/tui"
	"lantern/internal/tui/components"
	"lantern/internal/tui/design"
	"lantern/pkg/logging"
)

const tickInterval = time.Second

// Source is the display as seen from the terminal program. Both methods
// return immediately; frames arrive later as FrameMsg.
type Source interface {
	// RequestFrame asks for a frame of the given content size.
	RequestFrame(width, height int)
	// SetDirection overrides the sensed orientation.
	SetDirection(d channel.Direction)
}

type tickMsg time.Time

// Model is the bubbletea model of the projector screen.
type Model struct {
	name    string
	source  Source
	keys    tui.DisplayKeyMap
	help    help.Model
	log     *tui.ActivityLog
	logCh   <-chan logging.LogEntry
	status  tui.Status
	frame   Frame
	width   int
	height  int
	showLog bool
}

// New creates the projector screen. logCh may be nil.
func New(name string, source Source, logCh <-chan logging.LogEntry) *Model {
	return &Model{
		name:    name,
		source:  source,
		keys:    tui.DefaultDisplayKeyMap(),
		help:    help.New(),
		log:     tui.NewActivityLog(tui.MaxActivityLogLines),
		logCh:   logCh,
		showLog: true,
	}
}

// Init starts the log listener and the render tick.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tui.ListenForLogs(m.logCh), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.requestFrame()
		return m, nil

	case tickMsg:
		m.requestFrame()
		return m, tick()

	case FrameMsg:
		m.frame = msg.Frame
		return m, nil

	case tui.LogEntryMsg:
		m.log.Add(msg.Entry)
		return m, tui.ListenForLogs(m.logCh)

	case tui.ClearStatusBarMsg:
		m.status.Clear(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.requestFrame()
		return m, nil
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.requestFrame()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, tui.CopyToStatus(&m.status, "error", m.frame.Error)
	}

	if d, ok := m.directionFor(msg); ok {
		m.source.SetDirection(d)
		m.requestFrame()
		return m, m.status.Set(fmt.Sprintf("Pointing %s", d), components.StatusBarInfo, 2*time.Second)
	}
	return m, nil
}

func (m *Model) directionFor(msg tea.KeyMsg) (channel.Direction, bool) {
	bindings := []struct {
		binding key.Binding
		d       channel.Direction
	}{
		{m.keys.North, channel.DirectionNorth},
		{m.keys.East, channel.DirectionEast},
		{m.keys.South, channel.DirectionSouth},
		{m.keys.West, channel.DirectionWest},
		{m.keys.Up, channel.DirectionUp},
		{m.keys.Down, channel.DirectionDown},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return b.d, true
		}
	}
	return "", false
}

func (m *Model) requestFrame() {
	if m.width == 0 || m.height == 0 {
		return
	}
	w, h := m.mainPanel().InnerSize()
	m.source.RequestFrame(w, h)
}

func (m *Model) mainHeight() int {
	used := 1 + lipgloss.Height(m.help.View(m.keys))
	if m.showLog {
		used += design.LogStripHeight
	}
	return m.height - used
}

func (m *Model) mainPanel() *components.Panel {
	dir := m.frame.Status.Direction
	title := m.frame.Title
	if dir != "" {
		title = fmt.Sprintf("%s · %s", strings.ToUpper(string(dir)), title)
	}
	panel := components.NewPanel(title).
		WithIcon("◉").
		WithDimensions(m.width, m.mainHeight()).
		WithContent(m.frame.Body).
		SetFocused(true)
	if m.frame.Error != "" {
		panel.WithType(components.PanelTypeError)
	}
	return panel
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Starting lantern..."
	}

	sections := []string{m.mainPanel().Render()}
	if m.showLog {
		strip := m.log.Render(m.width, design.LogStripHeight)
		sections = append(sections, lipgloss.NewStyle().Height(design.LogStripHeight).Render(strip))
	}

	metrics := m.frame.Status.Metrics
	left := fmt.Sprintf("%s facing %s", m.name, m.frame.Status.Direction)
	right := fmt.Sprintf("commits %d  failures %d", metrics.Commits, metrics.Failures)
	sections = append(sections,
		m.status.Render(m.width, left, right),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
