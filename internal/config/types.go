package config

import (
	"time"

	"lantern/internal/channel"
	"lantern/internal/planes"
)

// LanternConfig is the top-level configuration structure for lantern.
type LanternConfig struct {
	GlobalSettings GlobalSettings  `yaml:"globalSettings"`
	Display        DisplayConfig   `yaml:"display"`
	Server         ServerConfig    `yaml:"server"`
	MCP            MCPConfig       `yaml:"mcp"`
	Companion      CompanionConfig `yaml:"companion"`
	// Planes is the initial channel configuration. A planes file, when it
	// exists, takes precedence at runtime.
	Planes planes.Planes `yaml:"planes,omitempty"`
}

// GlobalSettings apply to every command.
type GlobalSettings struct {
	LogLevel string `yaml:"logLevel,omitempty"` // debug, info, warn, error
}

// DisplayConfig configures the projector side.
type DisplayConfig struct {
	ID               string            `yaml:"id,omitempty"`               // Stable id reported to companions; generated when empty
	Name             string            `yaml:"name,omitempty"`             // Human readable name shown in the companion's list
	InitialDirection channel.Direction `yaml:"initialDirection,omitempty"` // Direction assumed until the sensor reports
	Slot             string            `yaml:"slot,omitempty"`             // Display host container slot
	PlanesFile       string            `yaml:"planesFile,omitempty"`       // Where plane edits are persisted
}

// ServerConfig configures the display HTTP API.
type ServerConfig struct {
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the API should be served.
func (c ServerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// MCPConfig configures the MCP tool endpoint on the display.
type MCPConfig struct {
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the MCP endpoint should be served. It is off
// unless configured.
func (c MCPConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// CompanionConfig configures discovery and connection on the companion side.
type CompanionConfig struct {
	Endpoints      []string      `yaml:"endpoints,omitempty"` // Projector base URLs to probe
	ProbeTimeout   time.Duration `yaml:"probeTimeout,omitempty"`
	Retries        *int          `yaml:"retries,omitempty"`
	RescanInterval time.Duration `yaml:"rescanInterval,omitempty"`
}

// RetryCount returns the configured retry count.
func (c CompanionConfig) RetryCount() int {
	if c.Retries == nil {
		return 0
	}
	return *c.Retries
}
