package search

import (
	"lantern/internal/notify"
	"lantern/internal/projector"
	"lantern/pkg/logging"
)

const subsystem = "Search"

// Screen is what the companion is currently showing.
type Screen int

const (
	ScreenIdle Screen = iota
	ScreenSearching
	ScreenEndpoints
	ScreenConnecting
	ScreenHome
)

func (s Screen) String() string {
	switch s {
	case ScreenIdle:
		return "Idle"
	case ScreenSearching:
		return "Searching"
	case ScreenEndpoints:
		return "Endpoints"
	case ScreenConnecting:
		return "Connecting"
	case ScreenHome:
		return "Home"
	default:
		return "Unknown"
	}
}

// HomeResult is how the home context ended.
type HomeResult int

const (
	// HomeDisconnected means the home context lost the projector.
	HomeDisconnected HomeResult = iota
	// HomeCancelled means the user backed out of the home context.
	HomeCancelled
)

// NoticeDuration controls how long a notice stays up.
type NoticeDuration int

const (
	NoticeShort NoticeDuration = iota
	NoticeLong
	NoticeIndefinite
)

// Notice is a dismissible message, optionally with a retry action.
type Notice struct {
	Message  string
	Duration NoticeDuration
	// Action labels Retry; both are empty for plain notices.
	Action string
	Retry  func()
}

// Notices shown by the controller.
const (
	MsgDiscoveryFailed = "Failed to start discovery"
	MsgConnectFailed   = "Failed to connect to projector"
	MsgConnectionLost  = "Lost connection to projector"
	ActionTryAgain     = "Try again"
)

// View renders the controller's decisions.
type View interface {
	ShowSearching()
	ShowEndpoints(endpoints []projector.Endpoint)
	ShowConnecting(name string)
	// StartHome hands control to the home context. The view reports back
	// through Controller.HomeFinished.
	StartHome(endpoint projector.Endpoint)
	ShowNotice(n Notice)
}

// Controller maps the client's discovery and connection state onto the
// companion's screens. All methods must be called from the UI loop.
type Controller struct {
	client projector.Client
	view   View

	sub        *notify.Subscription
	screen     Screen
	homeActive bool
	selected   *projector.Endpoint
}

// New creates a paused controller.
func New(client projector.Client, view View) *Controller {
	return &Controller{client: client, view: view}
}

// Resume starts following the client and kicks off discovery if it has not
// been started yet.
func (c *Controller) Resume() {
	if c.sub != nil {
		return
	}
	c.sub = c.client.Subscribe(func(projector.State) { c.update() })
	c.client.SetFailureListener(c)
	if c.client.DiscoveryState() == projector.DiscoveryUninitialised {
		c.client.StartDiscovery()
	}
	c.update()
}

// Pause stops following the client.
func (c *Controller) Pause() {
	if c.sub == nil {
		return
	}
	c.client.Unsubscribe(c.sub)
	c.sub = nil
	c.client.SetFailureListener(nil)
}

// Active reports whether the controller is resumed.
func (c *Controller) Active() bool {
	return c.sub != nil
}

// Screen returns the screen last shown.
func (c *Controller) Screen() Screen {
	return c.screen
}

// SelectEndpoint asks the client to connect to ep.
func (c *Controller) SelectEndpoint(ep projector.Endpoint) {
	logging.Info(subsystem, "Selected projector %s", ep.Info.EndpointName)
	c.selected = &ep
	c.client.ConnectTo(ep.ID)
	if c.client.ConnectionState() == projector.ConnectionConnected {
		c.update()
		return
	}
	c.show(ScreenConnecting)
	c.view.ShowConnecting(ep.Info.EndpointName)
}

// HomeFinished is called by the view once the home context has ended.
func (c *Controller) HomeFinished(result HomeResult) {
	if !c.homeActive {
		return
	}
	c.homeActive = false
	c.selected = nil

	switch result {
	case HomeDisconnected:
		logging.Warn(subsystem, "Home reported a lost connection")
		c.view.ShowNotice(Notice{Message: MsgConnectionLost, Duration: NoticeLong})
	case HomeCancelled:
		logging.Info(subsystem, "Home cancelled, disconnecting")
		c.client.Disconnect()
	}
	c.update()
}

// OnStartDiscoveryFailure implements projector.FailureListener.
func (c *Controller) OnStartDiscoveryFailure() {
	c.view.ShowNotice(Notice{
		Message:  MsgDiscoveryFailed,
		Duration: NoticeIndefinite,
		Action:   ActionTryAgain,
		Retry:    c.client.StartDiscovery,
	})
}

// OnRequestConnectionFailure implements projector.FailureListener.
func (c *Controller) OnRequestConnectionFailure() {
	c.view.ShowNotice(Notice{Message: MsgConnectFailed, Duration: NoticeLong})
}

func (c *Controller) update() {
	if c.client.ConnectionState() == projector.ConnectionConnected {
		if !c.homeActive {
			c.startHome()
		}
		return
	}
	if c.homeActive {
		// The home context notices the drop and reports via HomeFinished.
		return
	}
	if c.screen == ScreenConnecting && c.client.ConnectionState() == projector.ConnectionConnecting {
		return
	}

	switch c.client.DiscoveryState() {
	case projector.DiscoveryLookingForEndpoints:
		c.show(ScreenSearching)
		c.view.ShowSearching()
	case projector.DiscoveryEndpointsAvailable:
		c.show(ScreenEndpoints)
		c.view.ShowEndpoints(c.client.Endpoints())
	}
}

func (c *Controller) startHome() {
	ep := c.connectedEndpoint()
	c.homeActive = true
	c.show(ScreenHome)
	logging.Info(subsystem, "Connected to %s, starting home", ep.Info.EndpointName)
	c.view.StartHome(ep)
}

func (c *Controller) connectedEndpoint() projector.Endpoint {
	if c.selected != nil {
		return *c.selected
	}
	if ep := c.client.State().ConnectedTo; ep != nil {
		return *ep
	}
	return projector.Endpoint{}
}

func (c *Controller) show(s Screen) {
	if c.screen != s {
		logging.Debug(subsystem, "Screen %s -> %s", c.screen, s)
	}
	c.screen = s
}
