package reconciler

import (
	"fmt"
	"maps"

	"lantern/internal/channel"
	"lantern/internal/display"
	"lantern/pkg/logging"
)

const subsystem = "Reconciler"

// Host is the part of the display host the reconciler drives. Apply must
// commit all ops or none.
type Host interface {
	Apply(ops ...display.Op) error
	Contains(c channel.Channel) bool
	Channels() []channel.Channel
}

// Metrics counts reconciler work.
type Metrics struct {
	Builds   int64
	Commits  int64
	Failures int64
}

// Reconciler keeps one live channel per configured direction and keeps the
// channel for the current direction visible on the host. It is not safe for
// concurrent use; callers run it on the UI loop.
type Reconciler struct {
	host      Host
	registry  *channel.Registry
	channels  channel.Set
	visible   channel.Channel
	failure   channel.Channel
	direction channel.Direction
	metrics   Metrics
}

// New creates a reconciler showing direction once channels exist.
func New(host Host, registry *channel.Registry, direction channel.Direction) *Reconciler {
	return &Reconciler{
		host:      host,
		registry:  registry,
		channels:  make(channel.Set),
		direction: direction,
	}
}

// Reconcile brings the channel set in line with planes, then updates the
// visible channel and drops channels that are no longer in the set.
// Channels whose config is value-equal to the incoming one are kept.
func (r *Reconciler) Reconcile(planes map[channel.Direction]channel.Config) {
	for _, d := range channel.AllDirections {
		incoming, configured := planes[d]
		prev, exists := r.channels[d]

		if !configured {
			if exists {
				delete(r.channels, d)
				logging.Info(subsystem, "Channel for %s removed", d)
			}
			continue
		}
		if exists && prev.Config().Equal(incoming) {
			continue
		}

		next := r.registry.New(incoming)
		r.channels[d] = next
		r.metrics.Builds++
		if errCh, ok := next.(*channel.Error); ok {
			logging.Warn(subsystem, "Channel for %s is now %v: %s", d, next, errCh.Message())
		} else {
			logging.Info(subsystem, "Channel for %s is now %v", d, next)
		}
	}

	r.SelectVisible()
	r.CleanupOrphans()
}

// SetDirection records the current orientation and shows its channel.
func (r *Reconciler) SetDirection(d channel.Direction) {
	if d != r.direction {
		logging.Debug(subsystem, "Direction updated to %s", d)
	}
	r.direction = d
	r.SelectVisible()
}

// SelectVisible shows the channel bound to the current direction and hides
// the previous one. It does nothing when that channel is already visible
// and no error channel is on screen.
func (r *Reconciler) SelectVisible() {
	desired := r.channels[r.direction]
	if desired == r.visible && r.failure == nil {
		return
	}
	prev := r.visible
	r.visible = desired

	var ops []display.Op
	if r.failure != nil && r.host.Contains(r.failure) {
		ops = append(ops, display.Op{Kind: display.OpRemove, Channel: r.failure})
	}
	if prev != nil && r.host.Contains(prev) {
		ops = append(ops, display.Op{Kind: display.OpHide, Channel: prev})
	}
	if desired != nil {
		if r.host.Contains(desired) {
			ops = append(ops, display.Op{Kind: display.OpShow, Channel: desired})
		} else {
			ops = append(ops, display.Op{Kind: display.OpAttach, Channel: desired})
		}
	}
	if len(ops) == 0 {
		r.failure = nil
		return
	}

	if err := r.host.Apply(ops...); err != nil {
		r.fail(desired, err)
		return
	}
	r.failure = nil
	r.metrics.Commits++
}

// fail replaces the whole slot with an error channel. The visible reference
// is cleared so the next pass attaches the desired channel again.
func (r *Reconciler) fail(desired channel.Channel, err error) {
	message := fmt.Sprintf("Failed to make channel %v visible.\n\n%v", desired, err)
	logging.Error(subsystem, err, "Failed to make channel %v visible", desired)
	r.metrics.Failures++
	r.visible = nil

	errCh := channel.NewError(channel.Config{Type: "error"}, message)
	if err := r.host.Apply(display.Op{Kind: display.OpReplace, Channel: errCh}); err != nil {
		logging.Error(subsystem, err, "Failed to show error channel")
		return
	}
	r.failure = errCh
	r.metrics.Commits++
}

// CleanupOrphans removes attached channels that are no longer in the set.
// The error channel shown after a failed commit is kept until a later
// commit succeeds.
func (r *Reconciler) CleanupOrphans() {
	keep := make(map[channel.Channel]bool, len(r.channels)+1)
	for _, c := range r.channels {
		keep[c] = true
	}
	if r.failure != nil {
		keep[r.failure] = true
	}

	var ops []display.Op
	for _, c := range r.host.Channels() {
		if !keep[c] {
			ops = append(ops, display.Op{Kind: display.OpRemove, Channel: c})
		}
	}
	if len(ops) == 0 {
		return
	}
	if err := r.host.Apply(ops...); err != nil {
		r.metrics.Failures++
		logging.Error(subsystem, err, "Failed to remove %d orphaned channel(s)", len(ops))
		return
	}
	r.metrics.Commits++
	logging.Debug(subsystem, "Removed %d orphaned channel(s)", len(ops))
}

// Direction returns the current orientation.
func (r *Reconciler) Direction() channel.Direction {
	return r.direction
}

// Visible returns the channel last made visible, or nil.
func (r *Reconciler) Visible() channel.Channel {
	return r.visible
}

// Failure returns the error channel currently covering the slot, or nil.
func (r *Reconciler) Failure() channel.Channel {
	return r.failure
}

// Channel returns the live channel for d.
func (r *Reconciler) Channel(d channel.Direction) (channel.Channel, bool) {
	c, ok := r.channels[d]
	return c, ok
}

// Channels returns a copy of the channel set.
func (r *Reconciler) Channels() channel.Set {
	return maps.Clone(r.channels)
}

// GetMetrics returns a copy of the reconciler metrics.
func (r *Reconciler) GetMetrics() Metrics {
	return r.metrics
}
