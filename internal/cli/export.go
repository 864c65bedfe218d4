package cli

import (
	"github.com/spf13/cobra"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/ckpt"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/nn"
)

func newExportCmd() *cobra.Command {
	var (
		ckptPath string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Re-export the layered model from a saved checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd)

			model, labels, err := loadModel(ckptPath)
			if err != nil {
				return err
			}
			logger.Info("checkpoint loaded", "path", ckptPath, "classes", len(labels))

			if err := writeLabels(outDir, labels); err != nil {
				return err
			}
			return exportModel(outDir, model, logger)
		},
	}

	cmd.Flags().StringVar(&ckptPath, "ckpt", "", "checkpoint file to export from")
	cmd.Flags().StringVar(&outDir, "out-dir", "dist/model", "artifact output directory")
	_ = cmd.MarkFlagRequired("ckpt")
	return cmd
}

// loadModel rebuilds the classifier from a checkpoint's header and
// restores its weights.
func loadModel(path string) (*nn.Sequential, []string, error) {
	c, err := ckpt.Read(path)
	if err != nil {
		return nil, nil, err
	}

	model := nn.GestureClassifier(c.Header.SequenceLength, c.Header.Features, c.Header.NumClasses)
	if err := model.Build(0); err != nil {
		return nil, nil, err
	}
	if err := model.LoadStateDict(c.StateDict()); err != nil {
		return nil, nil, err
	}
	return model, c.Header.Labels, nil
}
