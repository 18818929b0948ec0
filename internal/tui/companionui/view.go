package companionui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"lantern/internal/projector"
	"lantern/internal/search"
)

type searchingMsg struct{}

type endpointsMsg struct {
	endpoints []projector.Endpoint
}

type connectingMsg struct {
	name string
}

type homeMsg struct {
	endpoint projector.Endpoint
}

type noticeMsg struct {
	notice search.Notice
}

// StateMsg reports a client state change to the Model.
type StateMsg struct {
	State projector.State
}

// ProgramView implements search.View by forwarding every call to the
// terminal program as a message. It is called on the UI loop and never
// touches the Model directly.
type ProgramView struct {
	send func(tea.Msg)
}

var _ search.View = (*ProgramView)(nil)

// NewProgramView creates a view that delivers through send, usually
// (*tea.Program).Send.
func NewProgramView(send func(tea.Msg)) *ProgramView {
	return &ProgramView{send: send}
}

func (v *ProgramView) ShowSearching() {
	v.send(searchingMsg{})
}

func (v *ProgramView) ShowEndpoints(endpoints []projector.Endpoint) {
	v.send(endpointsMsg{endpoints: slices.Clone(endpoints)})
}

func (v *ProgramView) ShowConnecting(name string) {
	v.send(connectingMsg{name: name})
}

func (v *ProgramView) StartHome(endpoint projector.Endpoint) {
	v.send(homeMsg{endpoint: endpoint})
}

func (v *ProgramView) ShowNotice(n search.Notice) {
	v.send(noticeMsg{notice: n})
}
