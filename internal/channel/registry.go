package channel

import (
	"fmt"
	"sync"
)

// Info describes a registered channel type.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Factory builds a channel from its configuration.
type Factory func(Config) Channel

type registration struct {
	info    Info
	factory Factory
}

// Registry maps channel type tags to factories. Registration order is kept
// so listings are stable.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// DefaultRegistry returns a registry with the built-in channel types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Info{ID: "blank", Name: "Blank", Description: "Nothing is projected"}, NewBlank)
	r.MustRegister(Info{ID: "calendar", Name: "Calendar", Description: "The current month, today highlighted"}, NewCalendar)
	r.MustRegister(Info{ID: "clock", Name: "Clock", Description: "Time and date in a configurable time zone"}, NewClock)
	r.MustRegister(Info{ID: "message", Name: "Message", Description: "A fixed text message"}, NewMessage)
	return r
}

// Register adds a channel type. Tags must be unique and non-empty.
func (r *Registry) Register(info Info, factory Factory) error {
	if info.ID == "" {
		return fmt.Errorf("channel type id must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("channel type %q has no factory", info.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[info.ID]; exists {
		return fmt.Errorf("channel type %q already registered", info.ID)
	}
	r.entries[info.ID] = registration{info: info, factory: factory}
	r.order = append(r.order, info.ID)
	return nil
}

// MustRegister is Register for static setup; it panics on error.
func (r *Registry) MustRegister(info Info, factory Factory) {
	if err := r.Register(info, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered for tag.
func (r *Registry) Lookup(tag string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[tag]
	return reg.factory, ok
}

// Infos lists registered types in registration order.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].info)
	}
	return out
}

// New builds the channel for cfg. Unregistered types produce an Error
// channel naming the type instead of failing.
func (r *Registry) New(cfg Config) Channel {
	factory, ok := r.Lookup(cfg.Type)
	if !ok {
		return NewError(cfg, fmt.Sprintf("Unknown channel type '%s'", cfg.Type))
	}
	return factory(cfg)
}
