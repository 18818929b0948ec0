package cmd

import (
	"github.com/spf13/cobra"

	"lantern/internal/app"
)

// runRole builds and runs the application for role with the root flags.
func runRole(cmd *cobra.Command, role app.Role) error {
	cfg := app.NewConfig(role, noTUI, logLevel, configPath)
	if rootCmd.Version != "" {
		cfg.Version = rootCmd.Version
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}
	return application.Run(cmd.Context())
}
