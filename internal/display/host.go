package display

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"lantern/internal/channel"
	"lantern/internal/notify"
	"lantern/pkg/logging"
)

const hostSubsystem = "DisplayHost"

var (
	// ErrAlreadyAttached is returned when a batch attaches a channel the host already holds.
	ErrAlreadyAttached = errors.New("channel already attached")
	// ErrNotAttached is returned when a batch shows, hides or removes a channel the host doesn't hold.
	ErrNotAttached = errors.New("channel not attached")
)

// OpKind identifies a host operation.
type OpKind int

const (
	OpAttach OpKind = iota
	OpShow
	OpHide
	OpRemove
	OpReplace
)

func (k OpKind) String() string {
	switch k {
	case OpAttach:
		return "attach"
	case OpShow:
		return "show"
	case OpHide:
		return "hide"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Op is one queued operation of a transaction.
type Op struct {
	Kind    OpKind
	Channel channel.Channel
}

// Metrics counts host activity.
type Metrics struct {
	Commits    int64
	Operations int64
	Failures   int64
}

type slotEntry struct {
	ch     channel.Channel
	hidden bool
}

// Host owns the channels attached to one display slot. Channels are
// attached, shown, hidden and removed in atomic batches.
type Host struct {
	slot string

	// commitMu serializes batches; mu guards state. Mounts run holding only
	// commitMu so they may query the host.
	commitMu sync.Mutex
	mu       sync.RWMutex
	entries  []slotEntry
	metrics  Metrics

	changes *notify.Subject[int64]
}

// NewHost creates an empty host for slot.
func NewHost(slot string) *Host {
	return &Host{
		slot:    slot,
		changes: notify.NewSubject[int64](0),
	}
}

// Slot is the container name the host renders into.
func (h *Host) Slot() string {
	return h.slot
}

// Begin starts a batch.
func (h *Host) Begin() *Transaction {
	return &Transaction{host: h}
}

// Contains reports whether c is attached.
func (h *Host) Contains(c channel.Channel) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return indexOf(h.entries, c) >= 0
}

// Channels returns the attached channels in attach order.
func (h *Host) Channels() []channel.Channel {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]channel.Channel, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, e.ch)
	}
	return out
}

// Visible returns the attached channels that are not hidden.
func (h *Host) Visible() []channel.Channel {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []channel.Channel
	for _, e := range h.entries {
		if !e.hidden {
			out = append(out, e.ch)
		}
	}
	return out
}

// GetMetrics returns a copy of the host metrics.
func (h *Host) GetMetrics() Metrics {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.metrics
}

// Subscribe calls listener with the commit count after every successful commit.
func (h *Host) Subscribe(listener func(commits int64)) *notify.Subscription {
	return h.changes.Subscribe(listener)
}

// Unsubscribe removes a commit listener.
func (h *Host) Unsubscribe(sub *notify.Subscription) {
	h.changes.Unsubscribe(sub)
}

func (h *Host) commit(ops []Op) error {
	commits, err := h.swap(ops)
	if err != nil {
		return err
	}
	logging.Debug(hostSubsystem, "Slot %s committed %d operation(s)", h.slot, len(ops))
	h.changes.Set(commits)
	return nil
}

// swap validates ops, mounts new channels and installs the next state.
// Listeners are notified by the caller once commitMu is released.
func (h *Host) swap(ops []Op) (int64, error) {
	h.commitMu.Lock()
	defer h.commitMu.Unlock()

	h.mu.RLock()
	next, attached, removed, err := apply(h.entries, ops)
	h.mu.RUnlock()
	if err != nil {
		h.recordFailure()
		return 0, err
	}

	var mounted []channel.Mounter
	for _, c := range attached {
		m, ok := c.(channel.Mounter)
		if !ok {
			continue
		}
		if err := m.Mount(); err != nil {
			for _, done := range mounted {
				done.Unmount()
			}
			h.recordFailure()
			return 0, fmt.Errorf("mounting %v: %w", c, err)
		}
		mounted = append(mounted, m)
	}

	h.mu.Lock()
	h.entries = next
	h.metrics.Commits++
	h.metrics.Operations += int64(len(ops))
	commits := h.metrics.Commits
	h.mu.Unlock()

	for _, c := range removed {
		if m, ok := c.(channel.Mounter); ok {
			m.Unmount()
		}
	}
	return commits, nil
}

func (h *Host) recordFailure() {
	h.mu.Lock()
	h.metrics.Failures++
	h.mu.Unlock()
}

// apply runs ops against a copy of entries. It returns the new state, the
// channels newly attached and those that left the host.
func apply(entries []slotEntry, ops []Op) (next []slotEntry, attached, removed []channel.Channel, err error) {
	next = slices.Clone(entries)
	original := slices.Clone(entries)

	for _, op := range ops {
		if op.Channel == nil {
			return nil, nil, nil, fmt.Errorf("%s: nil channel", op.Kind)
		}
		idx := indexOf(next, op.Channel)
		switch op.Kind {
		case OpAttach:
			if idx >= 0 {
				return nil, nil, nil, fmt.Errorf("%s %v: %w", op.Kind, op.Channel, ErrAlreadyAttached)
			}
			next = append(next, slotEntry{ch: op.Channel})
		case OpShow, OpHide:
			if idx < 0 {
				return nil, nil, nil, fmt.Errorf("%s %v: %w", op.Kind, op.Channel, ErrNotAttached)
			}
			next[idx].hidden = op.Kind == OpHide
		case OpRemove:
			if idx < 0 {
				return nil, nil, nil, fmt.Errorf("%s %v: %w", op.Kind, op.Channel, ErrNotAttached)
			}
			next = slices.Delete(next, idx, idx+1)
		case OpReplace:
			next = []slotEntry{{ch: op.Channel}}
		default:
			return nil, nil, nil, fmt.Errorf("unknown operation %d", op.Kind)
		}
	}

	for _, e := range next {
		if indexOf(original, e.ch) < 0 {
			attached = append(attached, e.ch)
		}
	}
	for _, e := range original {
		if indexOf(next, e.ch) < 0 {
			removed = append(removed, e.ch)
		}
	}
	return next, attached, removed, nil
}

func indexOf(entries []slotEntry, c channel.Channel) int {
	for i, e := range entries {
		if e.ch == c {
			return i
		}
	}
	return -1
}
