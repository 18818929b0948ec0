package channel

import (
	"maps"
	"slices"
	"strings"
)

// Config describes the channel that should be shown on one plane.
// Two configs with the same type and settings are interchangeable.
type Config struct {
	Type     string            `yaml:"type" json:"type"`
	Settings map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Equal is value equality. A nil and an empty settings map are equal.
func (c Config) Equal(other Config) bool {
	return c.Type == other.Type && maps.Equal(c.Settings, other.Settings)
}

// Setting returns the named setting or def when unset or empty.
func (c Config) Setting(name, def string) string {
	if v, ok := c.Settings[name]; ok && v != "" {
		return v
	}
	return def
}

// Clone returns a deep copy so callers can't mutate a channel's config.
func (c Config) Clone() Config {
	out := Config{Type: c.Type}
	if c.Settings != nil {
		out.Settings = maps.Clone(c.Settings)
	}
	return out
}

func (c Config) String() string {
	if len(c.Settings) == 0 {
		return c.Type
	}
	keys := slices.Sorted(maps.Keys(c.Settings))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+c.Settings[k])
	}
	return c.Type + "{" + strings.Join(parts, ",") + "}"
}
