package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lantern/internal/channel"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/lantern"
	projectConfigDir = ".lantern"
	configFileName   = "config.yaml"
	planesFileName   = "planes.yaml"
)

// LoadConfig loads the lantern configuration by layering default, user, and project settings.
func LoadConfig() (LanternConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if config, err = overlayFile(config, userConfigPath); err != nil {
		return LanternConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if config, err = overlayFile(config, projectConfigPath); err != nil {
		return LanternConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	if err := config.Validate(); err != nil {
		return LanternConfig{}, err
	}
	return config, nil
}

// LoadConfigFromPath layers a single explicit file over the defaults.
func LoadConfigFromPath(path string) (LanternConfig, error) {
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return LanternConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	config := mergeConfigs(GetDefaultConfig(), overlay)
	if err := config.Validate(); err != nil {
		return LanternConfig{}, err
	}
	return config, nil
}

func overlayFile(base LanternConfig, path string) (LanternConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a LanternConfig from a YAML file.
func loadConfigFromFile(filePath string) (LanternConfig, error) {
	var config LanternConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return LanternConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return LanternConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// the overlay leave the base untouched.
func mergeConfigs(base, overlay LanternConfig) LanternConfig {
	merged := base

	if overlay.GlobalSettings.LogLevel != "" {
		merged.GlobalSettings.LogLevel = overlay.GlobalSettings.LogLevel
	}

	if overlay.Display.ID != "" {
		merged.Display.ID = overlay.Display.ID
	}
	if overlay.Display.Name != "" {
		merged.Display.Name = overlay.Display.Name
	}
	if overlay.Display.InitialDirection != "" {
		merged.Display.InitialDirection = overlay.Display.InitialDirection
	}
	if overlay.Display.Slot != "" {
		merged.Display.Slot = overlay.Display.Slot
	}
	if overlay.Display.PlanesFile != "" {
		merged.Display.PlanesFile = overlay.Display.PlanesFile
	}

	if overlay.Server.Host != "" {
		merged.Server.Host = overlay.Server.Host
	}
	if overlay.Server.Port != 0 {
		merged.Server.Port = overlay.Server.Port
	}
	if overlay.Server.Enabled != nil {
		merged.Server.Enabled = overlay.Server.Enabled
	}

	if overlay.MCP.Host != "" {
		merged.MCP.Host = overlay.MCP.Host
	}
	if overlay.MCP.Port != 0 {
		merged.MCP.Port = overlay.MCP.Port
	}
	if overlay.MCP.Enabled != nil {
		merged.MCP.Enabled = overlay.MCP.Enabled
	}

	if len(overlay.Companion.Endpoints) > 0 {
		merged.Companion.Endpoints = append([]string(nil), overlay.Companion.Endpoints...)
	}
	if overlay.Companion.ProbeTimeout != 0 {
		merged.Companion.ProbeTimeout = overlay.Companion.ProbeTimeout
	}
	if overlay.Companion.Retries != nil {
		merged.Companion.Retries = overlay.Companion.Retries
	}
	if overlay.Companion.RescanInterval != 0 {
		merged.Companion.RescanInterval = overlay.Companion.RescanInterval
	}

	// Planes replace as a whole; merging per direction would make it
	// impossible to unassign a plane from a later layer.
	if overlay.Planes != nil {
		merged.Planes = overlay.Planes.Clone()
	}

	return merged
}

// Validate checks values the loader cannot express in types.
func (c LanternConfig) Validate() error {
	if !c.Display.InitialDirection.Valid() {
		return fmt.Errorf("display.initialDirection: %w: %q", channel.ErrUnknownDirection, c.Display.InitialDirection)
	}
	for name, port := range map[string]int{"server.port": c.Server.Port, "mcp.port": c.MCP.Port} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s: %d is not a valid port", name, port)
		}
	}
	if c.Companion.RetryCount() < 0 {
		return fmt.Errorf("companion.retries must not be negative")
	}
	if err := c.Planes.Validate(); err != nil {
		return fmt.Errorf("planes: %w", err)
	}
	return nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// PlanesPath returns where plane edits are persisted: the configured file,
// or planes.yaml in the user configuration directory.
func (c LanternConfig) PlanesPath() (string, error) {
	if c.Display.PlanesFile != "" {
		return c.Display.PlanesFile, nil
	}
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, planesFileName), nil
}
