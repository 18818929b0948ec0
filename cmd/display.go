package cmd

import (
	"github.com/spf13/cobra"

	"lantern/internal/app"
)

func newDisplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "display",
		Short: "Run the projector display",
		Long: `Runs the projector: shows the channel of the plane the display faces
and serves the display API (and, when enabled, the MCP tools) so a
companion can edit the planes.

In the terminal UI the direction keys stand in for the orientation sensor:
n/e/s/w for the compass planes, u and d for up and down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRole(cmd, app.RoleDisplay)
		},
	}
}
