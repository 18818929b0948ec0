package reconciler

import (
	"context"
	"fmt"

	"lantern/internal/api"
	"lantern/internal/channel"
	"lantern/internal/planes"
	"lantern/internal/sensor"
)

// Runner runs fn on the UI loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

// Orientation is the sensor as the API drives it: a manual override or a
// raw gravity reading.
type Orientation interface {
	Direction() channel.Direction
	SetDirection(d channel.Direction)
	Update(x, y, z float64) bool
}

// Adapter implements api.DisplayAPI on top of a running display. Every call
// is marshalled onto the UI loop.
type Adapter struct {
	runner   Runner
	rec      *Reconciler
	store    *planes.Store
	steer    Orientation
	registry *channel.Registry
}

var _ api.DisplayAPI = (*Adapter)(nil)

// NewAdapter creates the API adapter.
func NewAdapter(runner Runner, rec *Reconciler, store *planes.Store, steer Orientation, registry *channel.Registry) *Adapter {
	return &Adapter{
		runner:   runner,
		rec:      rec,
		store:    store,
		steer:    steer,
		registry: registry,
	}
}

func (a *Adapter) Status(ctx context.Context) (api.Status, error) {
	var st api.Status
	err := a.runner.Do(ctx, func() error {
		st = Snapshot(a.rec)
		return nil
	})
	return st, err
}

func (a *Adapter) Planes(ctx context.Context) (planes.Planes, error) {
	var p planes.Planes
	err := a.runner.Do(ctx, func() error {
		p = a.store.Planes()
		return nil
	})
	return p, err
}

func (a *Adapter) SetPlanes(ctx context.Context, p planes.Planes) error {
	return a.runner.Do(ctx, func() error { return a.store.Set(p) })
}

func (a *Adapter) SetPlane(ctx context.Context, d channel.Direction, cfg channel.Config) error {
	return a.runner.Do(ctx, func() error { return a.store.SetPlane(d, cfg) })
}

func (a *Adapter) ClearPlane(ctx context.Context, d channel.Direction) error {
	return a.runner.Do(ctx, func() error {
		a.store.ClearPlane(d)
		return nil
	})
}

func (a *Adapter) SetDirection(ctx context.Context, d channel.Direction) error {
	if !d.Valid() {
		_, err := channel.ParseDirection(string(d))
		return err
	}
	return a.runner.Do(ctx, func() error {
		a.steer.SetDirection(d)
		return nil
	})
}

func (a *Adapter) ReportGravity(ctx context.Context, x, y, z float64) (channel.Direction, error) {
	var d channel.Direction
	err := a.runner.Do(ctx, func() error {
		if !a.steer.Update(x, y, z) {
			return fmt.Errorf("%w: (%.2f, %.2f, %.2f)", sensor.ErrWeakReading, x, y, z)
		}
		d = a.steer.Direction()
		return nil
	})
	return d, err
}

func (a *Adapter) ChannelTypes() []channel.Info {
	return a.registry.Infos()
}

// Snapshot summarizes rec. It must run on the UI loop.
func Snapshot(rec *Reconciler) api.Status {
	st := api.Status{
		Direction: rec.Direction(),
		Channels:  make(map[channel.Direction]api.ChannelSummary),
	}
	for d, c := range rec.Channels() {
		st.Channels[d] = api.Summarize(c)
	}
	if v := rec.Visible(); v != nil {
		s := api.Summarize(v)
		st.Visible = &s
	}
	if f, ok := rec.Failure().(*channel.Error); ok && f != nil {
		st.Failure = f.Message()
	}
	m := rec.GetMetrics()
	st.Metrics = api.StatusMetrics{Builds: m.Builds, Commits: m.Commits, Failures: m.Failures}
	return st
}
