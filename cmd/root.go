package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	noTUI      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "Point a display at a direction and show what is configured there",
	Long: `lantern turns a screen into a projector with six planes. Each plane
(north, east, south, west, up, down) holds a channel such as a clock or a
calendar, and the display shows the one it faces.

Run "lantern display" on the projector and "lantern companion" on another
machine to find it and edit its planes.`,
	// Errors are printed by cobra; usage would only hide them.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "lantern version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Read configuration from this file only, skipping the user and project layers")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides globalSettings.logLevel")
	rootCmd.PersistentFlags().BoolVar(&noTUI, "no-tui", false, "Run without the terminal UI and log to stdout")

	rootCmd.AddCommand(newDisplayCmd())
	rootCmd.AddCommand(newCompanionCmd())
	rootCmd.AddCommand(newChannelsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
