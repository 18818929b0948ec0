// Package companionui is the terminal face of the companion: it follows
// the search controller through searching, endpoint selection and
// connecting, then edits the connected projector's planes on the home
// screen.
package companionui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lantern/internal/channel"
	"lantern/internal/planes"
	"lantern/internal/projector"
	"lantern/internal/search"
	"lantern/internal/tui"
	"lantern/internal/tui/components"
	"lantern/internal/tui/design"
	"lantern/pkg/logging"
)

const (
	remoteTimeout = 5 * time.Second
	noticeHeight  = 7
)

// Actions are the user intents the Model hands to the search controller.
// Implementations post them to the UI loop and return immediately.
type Actions interface {
	SelectEndpoint(ep projector.Endpoint)
	HomeFinished(result search.HomeResult)
	Retry(n search.Notice)
}

type screen int

const (
	screenIdle screen = iota
	screenSearching
	screenEndpoints
	screenConnecting
	screenHome
)

type endpointItem struct {
	ep projector.Endpoint
}

func (i endpointItem) Title() string       { return i.ep.Info.EndpointName }
func (i endpointItem) Description() string { return i.ep.Info.URL }
func (i endpointItem) FilterValue() string { return i.ep.Info.EndpointName }

// home is the state of the home screen for one connection.
type home struct {
	gen      int
	endpoint projector.Endpoint
	planes   planes.Planes
	types    []channel.Info
	cursor   int
	loading  bool
	finished bool
}

type homeLoadedMsg struct {
	gen    int
	planes planes.Planes
	types  []channel.Info
	err    error
}

type remoteDoneMsg struct {
	gen  int
	what string
	err  error
}

// Model is the bubbletea model of the companion.
type Model struct {
	actions Actions
	remote  projector.Remote
	keys    tui.CompanionKeyMap
	help    help.Model
	log     *tui.ActivityLog
	logCh   <-chan logging.LogEntry
	status  tui.Status
	spinner spinner.Model
	list    list.Model

	screen       screen
	connectingTo string
	home         home
	notice       *search.Notice
	state        projector.State

	width   int
	height  int
	showLog bool
}

// New creates the companion UI. logCh may be nil.
func New(actions Actions, remote projector.Remote, logCh <-chan logging.LogEntry) *Model {
	endpoints := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	endpoints.Title = "Projectors"
	endpoints.SetShowHelp(false)
	endpoints.SetFilteringEnabled(false)
	endpoints.DisableQuitKeybindings()
	endpoints.Styles.Title = design.TitleStyle.Foreground(design.ColorPrimary)

	return &Model{
		actions: actions,
		remote:  remote,
		keys:    tui.DefaultCompanionKeyMap(),
		help:    help.New(),
		log:     tui.NewActivityLog(tui.MaxActivityLogLines),
		logCh:   logCh,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(design.IconPrimaryStyle)),
		list:    endpoints,
		showLog: true,
	}
}

// Init starts the log listener and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(tui.ListenForLogs(m.logCh), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, m.mainHeight())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.LogEntryMsg:
		m.log.Add(msg.Entry)
		return m, tui.ListenForLogs(m.logCh)

	case tui.ClearStatusBarMsg:
		m.status.Clear(msg)
		return m, nil

	case StateMsg:
		return m, m.stateChanged(msg.State)

	case searchingMsg:
		m.notice = nil
		m.screen = screenSearching
		return m, nil

	case endpointsMsg:
		m.notice = nil
		m.screen = screenEndpoints
		items := make([]list.Item, 0, len(msg.endpoints))
		for _, ep := range msg.endpoints {
			items = append(items, endpointItem{ep: ep})
		}
		return m, m.list.SetItems(items)

	case connectingMsg:
		m.screen = screenConnecting
		m.connectingTo = msg.name
		return m, nil

	case homeMsg:
		m.notice = nil
		m.screen = screenHome
		m.home = home{gen: m.home.gen + 1, endpoint: msg.endpoint, loading: true}
		return m, m.loadHome()

	case noticeMsg:
		return m, m.showNotice(msg.notice)

	case homeLoadedMsg:
		if msg.gen != m.home.gen || m.screen != screenHome {
			return m, nil
		}
		m.home.loading = false
		if msg.err != nil {
			return m, m.status.Set(fmt.Sprintf("Failed to load planes: %v", msg.err), components.StatusBarError, 5*time.Second)
		}
		m.home.planes = msg.planes
		m.home.types = msg.types
		return m, nil

	case remoteDoneMsg:
		if msg.gen != m.home.gen || m.screen != screenHome {
			return m, nil
		}
		if msg.err != nil {
			return m, m.status.Set(fmt.Sprintf("Failed to %s: %v", msg.what, msg.err), components.StatusBarError, 5*time.Second)
		}
		return m, tea.Batch(
			m.status.Set(fmt.Sprintf("Done: %s", msg.what), components.StatusBarSuccess, 3*time.Second),
			m.loadHome(),
		)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) stateChanged(state projector.State) tea.Cmd {
	m.state = state
	if m.screen == screenHome && !m.home.finished && state.Connection != projector.ConnectionConnected {
		m.home.finished = true
		m.screen = screenIdle
		m.actions.HomeFinished(search.HomeDisconnected)
	}
	return nil
}

func (m *Model) showNotice(n search.Notice) tea.Cmd {
	switch n.Duration {
	case search.NoticeIndefinite:
		m.notice = &n
		return nil
	case search.NoticeLong:
		return m.status.Set(n.Message, components.StatusBarError, 6*time.Second)
	default:
		return m.status.Set(n.Message, components.StatusBarWarning, 3*time.Second)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.list.SetSize(m.width, m.mainHeight())
		return m, nil
	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		m.list.SetSize(m.width, m.mainHeight())
		return m, nil
	case key.Matches(msg, m.keys.Retry) && m.notice != nil:
		n := *m.notice
		m.notice = nil
		if n.Retry != nil {
			m.actions.Retry(n)
		}
		return m, nil
	}

	switch m.screen {
	case screenEndpoints:
		return m.handleEndpointsKey(msg)
	case screenHome:
		return m.handleHomeKey(msg)
	}
	return m, nil
}

func (m *Model) selectedEndpoint() (projector.Endpoint, bool) {
	item, ok := m.list.SelectedItem().(endpointItem)
	return item.ep, ok
}

func (m *Model) handleEndpointsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Connect):
		if ep, ok := m.selectedEndpoint(); ok {
			m.actions.SelectEndpoint(ep)
		}
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		ep, _ := m.selectedEndpoint()
		return m, tui.CopyToStatus(&m.status, "projector id", ep.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := channel.AllDirections[m.home.cursor]
	switch {
	case key.Matches(msg, m.keys.Back):
		m.home.finished = true
		m.screen = screenIdle
		m.actions.HomeFinished(search.HomeCancelled)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.home.cursor = (m.home.cursor + len(channel.AllDirections) - 1) % len(channel.AllDirections)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.home.cursor = (m.home.cursor + 1) % len(channel.AllDirections)
		return m, nil
	case key.Matches(msg, m.keys.Retry):
		m.home.loading = true
		return m, m.loadHome()
	case key.Matches(msg, m.keys.Copy):
		return m, tui.CopyToStatus(&m.status, "projector id", m.home.endpoint.ID)
	case key.Matches(msg, m.keys.Point):
		return m, m.remoteCmd(fmt.Sprintf("point lantern %s", d), func(ctx context.Context, r projector.Remote) error {
			return r.SetDirection(ctx, d)
		})
	case key.Matches(msg, m.keys.ClearPlane):
		return m, m.remoteCmd(fmt.Sprintf("clear %s", d), func(ctx context.Context, r projector.Remote) error {
			return r.ClearPlane(ctx, d)
		})
	case key.Matches(msg, m.keys.NextType):
		next := m.nextType(d)
		if next == "" {
			return m, m.remoteCmd(fmt.Sprintf("clear %s", d), func(ctx context.Context, r projector.Remote) error {
				return r.ClearPlane(ctx, d)
			})
		}
		cfg := channel.Config{Type: next}
		return m, m.remoteCmd(fmt.Sprintf("set %s to %s", d, next), func(ctx context.Context, r projector.Remote) error {
			return r.SetPlane(ctx, d, cfg)
		})
	}
	return m, nil
}

// nextType cycles through the projector's channel types and then to
// unassigned.
func (m *Model) nextType(d channel.Direction) string {
	options := make([]string, 0, len(m.home.types)+1)
	for _, info := range m.home.types {
		options = append(options, info.ID)
	}
	options = append(options, "")

	current := ""
	if cfg, ok := m.home.planes[d]; ok {
		current = cfg.Type
	}
	for i, id := range options {
		if id == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (m *Model) loadHome() tea.Cmd {
	gen, remote := m.home.gen, m.remote
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		p, err := remote.Planes(ctx)
		if err != nil {
			return homeLoadedMsg{gen: gen, err: err}
		}
		types, err := remote.ChannelTypes(ctx)
		return homeLoadedMsg{gen: gen, planes: p, types: types, err: err}
	}
}

func (m *Model) remoteCmd(what string, op func(ctx context.Context, r projector.Remote) error) tea.Cmd {
	gen, remote := m.home.gen, m.remote
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		return remoteDoneMsg{gen: gen, what: what, err: op(ctx, remote)}
	}
}

func (m *Model) mainHeight() int {
	used := 1 + lipgloss.Height(m.help.View(m.keys))
	if m.showLog {
		used += design.LogStripHeight
	}
	if m.notice != nil {
		used += noticeHeight
	}
	return max(design.MinPanelHeight, m.height-used)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Starting lantern companion..."
	}

	var sections []string
	switch m.screen {
	case screenEndpoints:
		sections = append(sections, m.list.View())
	case screenHome:
		sections = append(sections, m.renderHome())
	default:
		sections = append(sections, m.renderWaiting())
	}

	if m.notice != nil {
		content := m.notice.Message
		if m.notice.Action != "" {
			content += fmt.Sprintf("\n\nPress r: %s", m.notice.Action)
		}
		sections = append(sections, components.NewPanel("Notice").
			WithIcon("!").
			WithType(components.PanelTypeWarning).
			WithDimensions(m.width, noticeHeight).
			WithContent(content).
			Render())
	}

	if m.showLog {
		strip := m.log.Render(m.width, design.LogStripHeight)
		sections = append(sections, lipgloss.NewStyle().Height(design.LogStripHeight).Render(strip))
	}

	left := fmt.Sprintf("%s / %s", m.state.Discovery, m.state.Connection)
	right := fmt.Sprintf("%d projector(s)", len(m.state.Endpoints))
	if m.state.ConnectedTo != nil {
		right = "connected to " + m.state.ConnectedTo.Info.EndpointName
	}
	sections = append(sections,
		m.status.Render(m.width, design.StateStyle(m.state.Connection.String()).Render(left), right),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderWaiting() string {
	var content string
	switch m.screen {
	case screenSearching:
		content = fmt.Sprintf("%s Looking for projectors...", m.spinner.View())
	case screenConnecting:
		content = fmt.Sprintf("%s Connecting to %s...", m.spinner.View(), m.connectingTo)
	default:
		content = "Waiting..."
	}
	return components.NewPanel("lantern").
		WithDimensions(m.width, m.mainHeight()).
		WithContent(content).
		Render()
}

func (m *Model) renderHome() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  (%s)\n\n", m.home.endpoint.Info.URL, m.home.endpoint.ID)
	if m.home.loading && m.home.planes == nil {
		fmt.Fprintf(&b, "%s Loading planes...", m.spinner.View())
	} else {
		for i, d := range channel.AllDirections {
			value := "(unassigned)"
			if cfg, ok := m.home.planes[d]; ok {
				value = cfg.String()
			}
			line := fmt.Sprintf("%-6s %s", strings.ToUpper(string(d)), value)
			if i == m.home.cursor {
				b.WriteString(design.ListItemSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(design.ListItemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}
	return components.NewPanel(m.home.endpoint.Info.EndpointName).
		WithIcon("◉").
		WithType(components.PanelTypeSuccess).
		WithDimensions(m.width, m.mainHeight()).
		WithContent(strings.TrimRight(b.String(), "\n")).
		SetFocused(true).
		Render()
}
