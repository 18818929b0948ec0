package planes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lantern/internal/channel"
	"lantern/internal/notify"
	"lantern/pkg/logging"

	"gopkg.in/yaml.v3"
)

const subsystem = "Planes"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid planes")

// Planes maps each direction to the channel configured for it.
type Planes map[channel.Direction]channel.Config

// Clone deep-copies p.
func (p Planes) Clone() Planes {
	out := make(Planes, len(p))
	for d, cfg := range p {
		out[d] = cfg.Clone()
	}
	return out
}

// Validate rejects directions outside the fixed enumeration and empty types.
func (p Planes) Validate() error {
	for d, cfg := range p {
		if !d.Valid() {
			return fmt.Errorf("%w: plane %q: %w", ErrInvalid, d, channel.ErrUnknownDirection)
		}
		if cfg.Type == "" {
			return fmt.Errorf("%w: plane %s: channel type must not be empty", ErrInvalid, d)
		}
	}
	return nil
}

// Store is the configuration source for the display: the latest Planes
// and a subscription for updates. Readers always get copies.
type Store struct {
	subject *notify.Subject[Planes]
	path    string
}

// NewStore creates a store holding initial. When path is non-empty every
// update is persisted there.
func NewStore(initial Planes, path string) *Store {
	return &Store{
		subject: notify.NewSubject(initial.Clone()),
		path:    path,
	}
}

// Planes returns a copy of the current configuration.
func (s *Store) Planes() Planes {
	return s.subject.Get().Clone()
}

// Set replaces the whole configuration and notifies subscribers.
func (s *Store) Set(p Planes) error {
	if err := p.Validate(); err != nil {
		return err
	}
	next := p.Clone()
	s.subject.Set(next)
	s.persist(next)
	return nil
}

// SetPlane updates a single direction.
func (s *Store) SetPlane(d channel.Direction, cfg channel.Config) error {
	next := s.Planes()
	next[d] = cfg.Clone()
	return s.Set(next)
}

// ClearPlane removes the configuration for d.
func (s *Store) ClearPlane(d channel.Direction) {
	next := s.Planes()
	delete(next, d)
	s.subject.Set(next)
	s.persist(next)
}

// Subscribe registers listener for configuration updates.
func (s *Store) Subscribe(listener func(Planes)) *notify.Subscription {
	return s.subject.Subscribe(listener)
}

// Unsubscribe removes a listener.
func (s *Store) Unsubscribe(sub *notify.Subscription) {
	s.subject.Unsubscribe(sub)
}

func (s *Store) persist(p Planes) {
	if s.path == "" {
		return
	}
	if err := Save(s.path, p); err != nil {
		logging.Error(subsystem, err, "Failed to persist planes to %s", s.path)
	}
}

// Load reads planes from a YAML file.
func Load(path string) (Planes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Planes
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing planes file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planes file %s: %w", path, err)
	}
	if p == nil {
		p = Planes{}
	}
	return p, nil
}

// Save writes planes to a YAML file, creating the directory if needed.
func Save(path string, p Planes) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
