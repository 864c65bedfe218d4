package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/export"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Verify an exported model directory and print its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := export.Verify(args[0])
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format:       %s\n", report.Format)
			fmt.Fprintf(out, "generated by: %s\n", report.GeneratedBy)
			fmt.Fprintf(out, "converted by: %s\n", report.ConvertedBy)
			fmt.Fprintf(out, "tensors:      %d\n", report.Tensors)
			fmt.Fprintf(out, "weight bytes: %d\n", report.WeightBytes)
			fmt.Fprintf(out, "shards:       %s\n", strings.Join(report.Shards, ", "))
			return nil
		},
	}
	return cmd
}
