package companionui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lantern/internal/channel"
	"lantern/internal/planes"
	"lantern/internal/projector"
	"lantern/internal/search"
)

type fakeActions struct {
	selected []projector.Endpoint
	finished []search.HomeResult
	retried  []search.Notice
}

func (a *fakeActions) SelectEndpoint(ep projector.Endpoint)  { a.selected = append(a.selected, ep) }
func (a *fakeActions) HomeFinished(result search.HomeResult) { a.finished = append(a.finished, result) }
func (a *fakeActions) Retry(n search.Notice)                 { a.retried = append(a.retried, n) }

type fakeRemote struct {
	planes     planes.Planes
	types      []channel.Info
	err        error
	set        map[channel.Direction]channel.Config
	cleared    []channel.Direction
	directions []channel.Direction
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		planes: planes.Planes{
			channel.DirectionUp:    {Type: "clock"},
			channel.DirectionNorth: {Type: "message", Settings: map[string]string{"text": "hi"}},
		},
		types: []channel.Info{{ID: "blank"}, {ID: "clock"}, {ID: "message"}},
		set:   map[channel.Direction]channel.Config{},
	}
}

func (r *fakeRemote) Planes(context.Context) (planes.Planes, error) {
	return r.planes.Clone(), r.err
}

func (r *fakeRemote) SetPlane(_ context.Context, d channel.Direction, cfg channel.Config) error {
	r.set[d] = cfg
	return r.err
}

func (r *fakeRemote) ClearPlane(_ context.Context, d channel.Direction) error {
	r.cleared = append(r.cleared, d)
	return r.err
}

func (r *fakeRemote) SetDirection(_ context.Context, d channel.Direction) error {
	r.directions = append(r.directions, d)
	return r.err
}

func (r *fakeRemote) ChannelTypes(context.Context) ([]channel.Info, error) {
	return r.types, r.err
}

var (
	hall    = projector.Endpoint{ID: "hall-1", Info: projector.EndpointInfo{EndpointName: "Hall", URL: "http://hall:8090"}}
	kitchen = projector.Endpoint{ID: "kitchen-1", Info: projector.EndpointInfo{EndpointName: "Kitchen", URL: "http://kitchen:8090"}}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T) (*Model, *fakeActions, *fakeRemote) {
	t.Helper()
	actions := &fakeActions{}
	remote := newFakeRemote()
	m := New(actions, remote, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return m, actions, remote
}

// atHome brings m to a loaded home screen for hall.
func atHome(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(homeMsg{endpoint: hall})
	require.NotNil(t, cmd)
	m.Update(cmd())
	require.False(t, m.home.loading)
}

func TestProgramView_ForwardsCalls(t *testing.T) {
	var got []tea.Msg
	v := NewProgramView(func(msg tea.Msg) { got = append(got, msg) })

	eps := []projector.Endpoint{hall}
	v.ShowSearching()
	v.ShowEndpoints(eps)
	v.ShowConnecting("Hall")
	v.StartHome(hall)
	v.ShowNotice(search.Notice{Message: search.MsgConnectFailed})
	eps[0] = kitchen

	require.Len(t, got, 5)
	assert.Equal(t, searchingMsg{}, got[0])
	assert.Equal(t, endpointsMsg{endpoints: []projector.Endpoint{hall}}, got[1])
	assert.Equal(t, connectingMsg{name: "Hall"}, got[2])
	assert.Equal(t, homeMsg{endpoint: hall}, got[3])
	assert.Equal(t, search.MsgConnectFailed, got[4].(noticeMsg).notice.Message)
}

func TestModel_Searching(t *testing.T) {
	m, _, _ := newModel(t)
	m.Update(searchingMsg{})
	assert.Equal(t, screenSearching, m.screen)
	assert.Contains(t, m.View(), "Looking for projectors...")
}

func TestModel_SelectEndpoint(t *testing.T) {
	m, actions, _ := newModel(t)
	m.Update(endpointsMsg{endpoints: []projector.Endpoint{hall, kitchen}})
	assert.Equal(t, screenEndpoints, m.screen)
	assert.Contains(t, m.View(), "Kitchen")

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []projector.Endpoint{kitchen}, actions.selected)
}

func TestModel_Connecting(t *testing.T) {
	m, _, _ := newModel(t)
	m.Update(connectingMsg{name: "Hall"})
	assert.Contains(t, m.View(), "Connecting to Hall...")
}

func TestModel_HomeShowsPlanes(t *testing.T) {
	m, _, _ := newModel(t)
	atHome(t, m)

	view := m.View()
	assert.Contains(t, view, "Hall")
	assert.Contains(t, view, "UP     clock")
	assert.Contains(t, view, "NORTH  message{text=hi}")
	assert.Contains(t, view, "(unassigned)")
}

func TestModel_HomeEditsPlanes(t *testing.T) {
	m, _, remote := newModel(t)
	atHome(t, m)

	// up: clock -> message
	_, cmd := m.Update(runes("t"))
	require.NotNil(t, cmd)
	done := cmd()
	assert.Equal(t, channel.Config{Type: "message"}, remote.set[channel.DirectionUp])

	_, cmd = m.Update(done)
	assert.NotNil(t, cmd, "a successful change reloads the planes")
	assert.Contains(t, m.status.Message, "set up to message")

	// down is unassigned: next is the first type
	m.Update(runes("j"))
	_, cmd = m.Update(runes("t"))
	cmd()
	assert.Equal(t, channel.Config{Type: "blank"}, remote.set[channel.DirectionDown])

	_, cmd = m.Update(runes("x"))
	cmd()
	assert.Equal(t, []channel.Direction{channel.DirectionDown}, remote.cleared)

	_, cmd = m.Update(runes("p"))
	cmd()
	assert.Equal(t, []channel.Direction{channel.DirectionDown}, remote.directions)
}

func TestModel_NextTypeWrapsToUnassigned(t *testing.T) {
	m, _, remote := newModel(t)
	atHome(t, m)

	m.Update(runes("k")) // wraps to west
	m.Update(runes("k")) // south
	m.Update(runes("k")) // east
	m.Update(runes("k")) // north, showing message
	_, cmd := m.Update(runes("t"))
	cmd()
	assert.Equal(t, []channel.Direction{channel.DirectionNorth}, remote.cleared)
}

func TestModel_HomeRemoteError(t *testing.T) {
	m, actions, remote := newModel(t)
	atHome(t, m)

	remote.err = errors.New("projector responded 400: unknown direction")
	_, cmd := m.Update(runes("p"))
	m.Update(cmd())
	assert.Contains(t, m.status.Message, "unknown direction")
	assert.Equal(t, screenHome, m.screen)
	assert.Empty(t, actions.finished)
}

func TestModel_HomeDisconnected(t *testing.T) {
	m, actions, _ := newModel(t)
	atHome(t, m)

	m.Update(StateMsg{State: projector.State{Connection: projector.ConnectionConnected, ConnectedTo: &hall}})
	assert.Empty(t, actions.finished)

	m.Update(StateMsg{State: projector.State{Connection: projector.ConnectionDisconnected}})
	m.Update(StateMsg{State: projector.State{Connection: projector.ConnectionDisconnected}})
	assert.Equal(t, []search.HomeResult{search.HomeDisconnected}, actions.finished)
	assert.Equal(t, screenIdle, m.screen)
}

func TestModel_HomeCancelled(t *testing.T) {
	m, actions, _ := newModel(t)
	atHome(t, m)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []search.HomeResult{search.HomeCancelled}, actions.finished)

	_, cmd := m.Update(runes("r"))
	assert.Nil(t, cmd, "home keys are ignored once home finished")
}

func TestModel_StaleHomeLoadIgnored(t *testing.T) {
	m, _, _ := newModel(t)
	_, first := m.Update(homeMsg{endpoint: hall})
	m.Update(homeMsg{endpoint: kitchen})

	m.Update(first())
	assert.True(t, m.home.loading)
	assert.Equal(t, kitchen, m.home.endpoint)
}

func TestModel_IndefiniteNoticeRetries(t *testing.T) {
	m, actions, _ := newModel(t)
	m.Update(noticeMsg{notice: search.Notice{
		Message:  search.MsgDiscoveryFailed,
		Duration: search.NoticeIndefinite,
		Action:   search.ActionTryAgain,
		Retry:    func() {},
	}})

	view := m.View()
	assert.Contains(t, view, search.MsgDiscoveryFailed)
	assert.Contains(t, view, "Press r: Try again")

	m.Update(runes("r"))
	require.Len(t, actions.retried, 1)
	assert.Nil(t, m.notice)
	assert.NotContains(t, m.View(), search.MsgDiscoveryFailed)
}

func TestModel_TimedNoticeUsesStatusBar(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := m.Update(noticeMsg{notice: search.Notice{Message: search.MsgConnectionLost, Duration: search.NoticeLong}})
	assert.NotNil(t, cmd)
	assert.Nil(t, m.notice)
	assert.Equal(t, search.MsgConnectionLost, m.status.Message)
}
