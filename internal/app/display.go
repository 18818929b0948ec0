package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"lantern/internal/channel"
	"lantern/internal/config"
	"lantern/internal/display"
	"lantern/internal/loop"
	"lantern/internal/mcpserver"
	"lantern/internal/notify"
	"lantern/internal/planes"
	"lantern/internal/reconciler"
	"lantern/internal/sensor"
	"lantern/internal/server"
	"lantern/internal/tui/displayui"
	"lantern/pkg/logging"
)

// DisplayServices is the projector side: one loop owning the host,
// reconciler and sources, with the API servers in front of it.
type DisplayServices struct {
	ID   string
	Name string

	Loop       *loop.Loop
	Host       *display.Host
	Registry   *channel.Registry
	Store      *planes.Store
	Sensor     *sensor.Accelerometer
	Reconciler *reconciler.Reconciler
	Controller *reconciler.Controller
	API        *reconciler.Adapter

	HTTP *server.Server
	MCP  *mcpserver.Server

	hostSub *notify.Subscription

	mu          sync.Mutex
	frameWidth  int
	frameHeight int
	send        func(tea.Msg)
}

// InitializeDisplay wires the display from cfg. Nothing runs until Start.
func InitializeDisplay(cfg config.LanternConfig, version string) (*DisplayServices, error) {
	initial, planesPath, err := initialPlanes(cfg)
	if err != nil {
		return nil, err
	}

	id := cfg.Display.ID
	if id == "" {
		id = uuid.NewString()
	}

	l := loop.New()
	host := display.NewHost(cfg.Display.Slot)
	registry := channel.DefaultRegistry()
	store := planes.NewStore(initial, planesPath)
	accel := sensor.NewAccelerometer(cfg.Display.InitialDirection)
	rec := reconciler.New(host, registry, cfg.Display.InitialDirection)
	adapter := reconciler.NewAdapter(l, rec, store, accel, registry)

	d := &DisplayServices{
		ID:         id,
		Name:       cfg.Display.Name,
		Loop:       l,
		Host:       host,
		Registry:   registry,
		Store:      store,
		Sensor:     accel,
		Reconciler: rec,
		Controller: reconciler.NewController(rec, accel, store),
		API:        adapter,
	}

	if cfg.Server.IsEnabled() {
		d.HTTP = server.New(server.Config{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
			ID:   id,
			Name: cfg.Display.Name,
		}, adapter)
	}
	if cfg.MCP.IsEnabled() {
		d.MCP = mcpserver.New(mcpserver.Config{
			Host:    cfg.MCP.Host,
			Port:    cfg.MCP.Port,
			Version: version,
		}, adapter)
	}
	return d, nil
}

// initialPlanes prefers the planes file over the configured planes.
func initialPlanes(cfg config.LanternConfig) (planes.Planes, string, error) {
	path, err := cfg.PlanesPath()
	if err != nil {
		logging.Warn("Bootstrap", "Plane edits will not be persisted: %v", err)
		return cfg.Planes, "", nil
	}
	p, err := planes.Load(path)
	switch {
	case err == nil:
		logging.Info("Bootstrap", "Loaded planes from %s", path)
		return p, path, nil
	case errors.Is(err, os.ErrNotExist):
		return cfg.Planes, path, nil
	default:
		return nil, "", err
	}
}

// Start runs the loop, starts the display controller and the API servers.
func (d *DisplayServices) Start(ctx context.Context) error {
	go d.Loop.Run(ctx)

	err := d.Loop.Do(ctx, func() error {
		// Render after the current pass so the frame sees the settled state.
		d.hostSub = d.Host.Subscribe(func(int64) { d.Loop.Post(d.renderFrame) })
		d.Controller.Start()
		return nil
	})
	if err != nil {
		return fmt.Errorf("starting display: %w", err)
	}

	if d.HTTP != nil {
		if err := d.HTTP.Start(ctx); err != nil {
			return err
		}
	}
	if d.MCP != nil {
		if err := d.MCP.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop shuts the servers down and detaches the controller. ctx bounds the
// shutdown, the loop itself stops with the context passed to Start.
func (d *DisplayServices) Stop(ctx context.Context) {
	if d.HTTP != nil {
		if err := d.HTTP.Stop(ctx); err != nil {
			logging.Warn("Display", "Stopping display API: %v", err)
		}
	}
	if d.MCP != nil {
		if err := d.MCP.Stop(ctx); err != nil {
			logging.Warn("Display", "Stopping MCP server: %v", err)
		}
	}
	err := d.Loop.Do(ctx, func() error {
		d.Controller.Stop()
		if d.hostSub != nil {
			d.Host.Unsubscribe(d.hostSub)
			d.hostSub = nil
		}
		return nil
	})
	if err != nil && !errors.Is(err, loop.ErrStopped) {
		logging.Warn("Display", "Stopping display controller: %v", err)
	}
}

// AttachProgram routes frames to send, usually (*tea.Program).Send.
func (d *DisplayServices) AttachProgram(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	d.mu.Unlock()
}

// RequestFrame implements displayui.Source.
func (d *DisplayServices) RequestFrame(width, height int) {
	d.mu.Lock()
	d.frameWidth, d.frameHeight = width, height
	d.mu.Unlock()
	d.Loop.Post(d.renderFrame)
}

// SetDirection implements displayui.Source.
func (d *DisplayServices) SetDirection(dir channel.Direction) {
	d.Loop.Post(func() { d.Sensor.SetDirection(dir) })
}

// renderFrame draws a frame and sends it. It runs on the loop.
func (d *DisplayServices) renderFrame() {
	d.mu.Lock()
	send, w, h := d.send, d.frameWidth, d.frameHeight
	d.mu.Unlock()
	if send == nil || w == 0 || h == 0 {
		return
	}
	send(displayui.FrameMsg{Frame: displayui.RenderFrame(d.Reconciler, w, h, time.Now())})
}

var _ displayui.Source = (*DisplayServices)(nil)
