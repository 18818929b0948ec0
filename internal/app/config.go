package app

import (
	"lantern/internal/config"
)

// Role selects which side of the system the process runs.
type Role string

const (
	RoleDisplay   Role = "display"
	RoleCompanion Role = "companion"
)

// Config holds the application configuration
type Config struct {
	Role Role

	// UI mode
	NoTUI bool

	// LogLevel overrides globalSettings.logLevel when set.
	LogLevel string

	// ConfigPath replaces the layered configuration with a single file.
	ConfigPath string

	// Version is reported by the MCP server.
	Version string

	// Lantern is filled in by NewApplication.
	Lantern *config.LanternConfig
}

// NewConfig creates a new application configuration
func NewConfig(role Role, noTUI bool, logLevel, configPath string) *Config {
	return &Config{
		Role:       role,
		NoTUI:      noTUI,
		LogLevel:   logLevel,
		ConfigPath: configPath,
		Version:    "dev",
	}
}

// effectiveLogLevel prefers the flag over the configuration file.
func (c *Config) effectiveLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	if c.Lantern != nil {
		return c.Lantern.GlobalSettings.LogLevel
	}
	return ""
}
