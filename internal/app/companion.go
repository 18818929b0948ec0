package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lantern/internal/config"
	"lantern/internal/loop"
	"lantern/internal/notify"
	"lantern/internal/projector"
	"lantern/internal/search"
	"lantern/internal/tui/companionui"
	"lantern/pkg/logging"
)

// CompanionServices is the companion side: the projector client and the
// search controller, both owned by one loop.
type CompanionServices struct {
	Loop       *loop.Loop
	Client     *projector.HTTPClient
	Controller *search.Controller

	stateSub *notify.Subscription
}

// InitializeCompanion wires the companion from cfg. Nothing runs until
// Start.
func InitializeCompanion(cfg config.LanternConfig) *CompanionServices {
	l := loop.New()
	client := projector.NewHTTPClient(l, projector.Options{
		Candidates:     cfg.Companion.Endpoints,
		ProbeTimeout:   cfg.Companion.ProbeTimeout,
		Retries:        cfg.Companion.RetryCount(),
		RescanInterval: cfg.Companion.RescanInterval,
	})
	return &CompanionServices{Loop: l, Client: client}
}

// Start runs the loop and resumes a search controller driving view.
// onState, when set, follows every client state change on the loop.
func (c *CompanionServices) Start(ctx context.Context, view search.View, onState func(projector.State)) error {
	go c.Loop.Run(ctx)

	err := c.Loop.Do(ctx, func() error {
		c.Controller = search.New(c.Client, view)
		if onState != nil {
			c.stateSub = c.Client.Subscribe(onState)
			onState(c.Client.State())
		}
		c.Controller.Resume()
		return nil
	})
	if err != nil {
		return fmt.Errorf("starting companion: %w", err)
	}
	return nil
}

// Stop pauses the controller and closes the client.
func (c *CompanionServices) Stop(ctx context.Context) {
	err := c.Loop.Do(ctx, func() error {
		if c.Controller != nil {
			c.Controller.Pause()
		}
		if c.stateSub != nil {
			c.Client.Unsubscribe(c.stateSub)
			c.stateSub = nil
		}
		c.Client.Disconnect()
		return nil
	})
	if err != nil && !errors.Is(err, loop.ErrStopped) {
		logging.Warn("Companion", "Stopping search controller: %v", err)
	}
	c.Client.Close()
}

// SelectEndpoint implements companionui.Actions.
func (c *CompanionServices) SelectEndpoint(ep projector.Endpoint) {
	c.Loop.Post(func() { c.Controller.SelectEndpoint(ep) })
}

// HomeFinished implements companionui.Actions.
func (c *CompanionServices) HomeFinished(result search.HomeResult) {
	c.Loop.Post(func() { c.Controller.HomeFinished(result) })
}

// Retry implements companionui.Actions.
func (c *CompanionServices) Retry(n search.Notice) {
	if n.Retry != nil {
		c.Loop.Post(n.Retry)
	}
}

var _ companionui.Actions = (*CompanionServices)(nil)

// headlessView drives the companion without a terminal UI: it logs every
// screen, connects to the first projector found and prints its planes.
type headlessView struct {
	companion  *CompanionServices
	retryAfter time.Duration
	homes      chan projector.Endpoint
}

var _ search.View = (*headlessView)(nil)

func newHeadlessView(c *CompanionServices, retryAfter time.Duration) *headlessView {
	return &headlessView{
		companion:  c,
		retryAfter: retryAfter,
		homes:      make(chan projector.Endpoint, 1),
	}
}

func (v *headlessView) ShowSearching() {
	logging.Info("Companion", "Looking for projectors...")
}

func (v *headlessView) ShowEndpoints(endpoints []projector.Endpoint) {
	for _, ep := range endpoints {
		logging.Info("Companion", "Found projector %s (%s) at %s", ep.Info.EndpointName, ep.ID, ep.Info.URL)
	}
	if len(endpoints) > 0 {
		// Re-entering the controller from its own view call is not allowed.
		v.companion.SelectEndpoint(endpoints[0])
	}
}

func (v *headlessView) ShowConnecting(name string) {
	logging.Info("Companion", "Connecting to %s...", name)
}

func (v *headlessView) StartHome(ep projector.Endpoint) {
	logging.Info("Companion", "Connected to %s", ep.Info.EndpointName)
	select {
	case v.homes <- ep:
	default:
	}
}

func (v *headlessView) ShowNotice(n search.Notice) {
	logging.Warn("Companion", "%s", n.Message)
	if n.Duration == search.NoticeIndefinite && n.Retry != nil && v.retryAfter > 0 {
		time.AfterFunc(v.retryAfter, func() { v.companion.Retry(n) })
	}
}
