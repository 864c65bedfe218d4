// Package cli wires the command-line surface: turning recorded frame
// streams into windowed training samples, training the gesture
// classifier, exporting browser-loadable model artifacts, and
// inspecting exported directories.
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// New builds the root command with all subcommands attached.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:           "signassist",
		Short:         "Gesture recognition training data prep, trainer and model exporter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newWindowsCmd(),
		newTrainCmd(),
		newExportCmd(),
		newInspectCmd(),
	)
	return root
}

// newLogger builds the command logger, honoring --verbose.
func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(os.Stderr)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
