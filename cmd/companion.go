package cmd

import (
	"github.com/spf13/cobra"

	"lantern/internal/app"
)

func newCompanionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "companion",
		Short: "Find a projector and edit its planes",
		Long: `Probes the configured projector endpoints, lets you pick one and
connects to it. Once connected the planes can be assigned, cleared and
pointed at.

With --no-tui the companion connects to the first projector it finds and
logs its planes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRole(cmd, app.RoleCompanion)
		},
	}
}
