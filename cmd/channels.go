package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lantern/internal/channel"
)

func newChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the channel types a plane can hold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tDESCRIPTION")
			for _, info := range channel.DefaultRegistry().Infos() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.ID, info.Name, info.Description)
			}
			return w.Flush()
		},
	}
}
