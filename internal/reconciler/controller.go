package reconciler

import (
	"lantern/internal/channel"
	"lantern/internal/notify"
	"lantern/internal/planes"
	"lantern/pkg/logging"
)

// OrientationSource publishes the direction the lantern points at.
type OrientationSource interface {
	Direction() channel.Direction
	Subscribe(listener func(channel.Direction)) *notify.Subscription
	Unsubscribe(sub *notify.Subscription)
}

// PlanesSource publishes the per-direction channel configuration.
type PlanesSource interface {
	Planes() planes.Planes
	Subscribe(listener func(planes.Planes)) *notify.Subscription
	Unsubscribe(sub *notify.Subscription)
}

// Controller ties a Reconciler to its two sources for as long as the
// display screen is active. Listener callbacks run synchronously on the
// publisher's goroutine, so both sources must be driven from the UI loop.
type Controller struct {
	rec         *Reconciler
	orientation OrientationSource
	planes      PlanesSource

	orientationSub *notify.Subscription
	planesSub      *notify.Subscription
}

// NewController wires rec to its sources. Nothing happens until Start.
func NewController(rec *Reconciler, orientation OrientationSource, planes PlanesSource) *Controller {
	return &Controller{
		rec:         rec,
		orientation: orientation,
		planes:      planes,
	}
}

// Start subscribes to both sources and runs an initial pass.
func (c *Controller) Start() {
	if c.orientationSub != nil {
		return
	}
	c.orientationSub = c.orientation.Subscribe(c.orientationUpdated)
	c.planesSub = c.planes.Subscribe(c.planesUpdated)

	c.rec.direction = c.orientation.Direction()
	c.rec.Reconcile(c.planes.Planes())
	logging.Info(subsystem, "Display started facing %s", c.rec.Direction())
}

// Stop unsubscribes from both sources. Channels stay attached.
func (c *Controller) Stop() {
	if c.orientationSub == nil {
		return
	}
	c.orientation.Unsubscribe(c.orientationSub)
	c.planes.Unsubscribe(c.planesSub)
	c.orientationSub = nil
	c.planesSub = nil
	logging.Info(subsystem, "Display stopped")
}

// Running reports whether the controller is subscribed.
func (c *Controller) Running() bool {
	return c.orientationSub != nil
}

// Reconciler returns the wrapped reconciler.
func (c *Controller) Reconciler() *Reconciler {
	return c.rec
}

func (c *Controller) orientationUpdated(d channel.Direction) {
	c.rec.SetDirection(d)
}

func (c *Controller) planesUpdated(p planes.Planes) {
	c.rec.Reconcile(p)
}
