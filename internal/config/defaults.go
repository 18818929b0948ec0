package config

import (
	"time"

	"lantern/internal/channel"
	"lantern/internal/planes"
)

const (
	DefaultServerPort = 8090
	DefaultMCPPort    = 8091
)

// GetDefaultPlanes is what a fresh lantern projects.
func GetDefaultPlanes() planes.Planes {
	return planes.Planes{
		channel.DirectionUp:    {Type: "clock"},
		channel.DirectionDown:  {Type: "blank"},
		channel.DirectionNorth: {Type: "calendar"},
		channel.DirectionEast:  {Type: "message", Settings: map[string]string{"text": "Hello from lantern"}},
		channel.DirectionSouth: {Type: "blank"},
		channel.DirectionWest:  {Type: "clock", Settings: map[string]string{"format": "24h"}},
	}
}

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() LanternConfig {
	retries := 2
	return LanternConfig{
		GlobalSettings: GlobalSettings{
			LogLevel: "info",
		},
		Display: DisplayConfig{
			Name:             "lantern",
			InitialDirection: channel.DirectionNorth,
			Slot:             "viewGroup",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: DefaultServerPort,
		},
		MCP: MCPConfig{
			Host: "localhost",
			Port: DefaultMCPPort,
		},
		Companion: CompanionConfig{
			Endpoints:      []string{"http://localhost:8090"},
			ProbeTimeout:   2 * time.Second,
			Retries:        &retries,
			RescanInterval: 5 * time.Second,
		},
		Planes: GetDefaultPlanes(),
	}
}
