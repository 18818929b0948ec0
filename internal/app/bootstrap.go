package app

import (
	"context"
	"fmt"
	"os"

	"lantern/internal/config"
	"lantern/pkg/logging"
)

// Application is the main application structure that bootstraps and runs
// one side of lantern.
type Application struct {
	config    *Config
	display   *DisplayServices
	companion *CompanionServices
}

// NewApplication loads the configuration and wires the services for the
// configured role.
func NewApplication(cfg *Config) (*Application, error) {
	// CLI logging until the TUI takes over
	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel), os.Stdout)

	lanternCfg, err := loadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Lantern = &lanternCfg
	logging.InitForCLI(logging.ParseLevel(cfg.effectiveLogLevel()), os.Stdout)

	a := &Application{config: cfg}
	switch cfg.Role {
	case RoleDisplay:
		a.display, err = InitializeDisplay(lanternCfg, cfg.Version)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to initialize display")
			return nil, fmt.Errorf("failed to initialize display: %w", err)
		}
	case RoleCompanion:
		a.companion = InitializeCompanion(lanternCfg)
	default:
		return nil, fmt.Errorf("unknown role %q", cfg.Role)
	}
	return a, nil
}

func loadConfig(path string) (config.LanternConfig, error) {
	if path != "" {
		cfg, err := config.LoadConfigFromPath(path)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load lantern configuration from path: %s", path)
			return config.LanternConfig{}, fmt.Errorf("failed to load lantern configuration from path %s: %w", path, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", path)
		return cfg, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load lantern configuration")
		return config.LanternConfig{}, fmt.Errorf("failed to load lantern configuration: %w", err)
	}
	logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	return cfg, nil
}

// Run executes the application in the appropriate mode
func (a *Application) Run(ctx context.Context) error {
	switch {
	case a.display != nil && a.config.NoTUI:
		return runDisplayCLI(ctx, a.display)
	case a.display != nil:
		return runDisplayTUI(ctx, a.config, a.display)
	case a.config.NoTUI:
		return runCompanionCLI(ctx, a.config, a.companion)
	default:
		return runCompanionTUI(ctx, a.config, a.companion)
	}
}
