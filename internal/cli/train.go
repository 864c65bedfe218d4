package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/ckpt"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/dataset"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/export"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/landmark"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/nn"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/train"
)

// labelsName is the vocabulary file written next to the model document.
// The exporter never touches it.
const labelsName = "labels.json"

func newTrainCmd() *cobra.Command {
	var (
		samplesDir string
		outDir     string
		ckptPath   string
		seqLen     int
		testSplit  float64
		valSplit   float64
		half       bool
	)
	cfg := train.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the gesture classifier and export the layered model",
		Long: `Loads windowed samples, prepares the dataset, trains the
bidirectional-LSTM classifier, saves a checkpoint and the label
vocabulary, and exports the browser-loadable model artifact.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd)
			cfg.Logger = logger

			samples, err := landmark.LoadSamples(samplesDir)
			if err != nil {
				return err
			}
			ds, err := dataset.Prepare(samples, seqLen)
			if err != nil {
				return err
			}
			logger.Info("dataset prepared",
				"samples", ds.Len(), "classes", len(ds.Labels), "counts", ds.ClassCounts())

			rest, test, err := dataset.StratifiedSplit(ds, testSplit, cfg.Seed)
			if err != nil {
				return err
			}
			trainSet, val, err := dataset.StratifiedSplit(rest, valSplit/(1-testSplit), cfg.Seed+1)
			if err != nil {
				return err
			}
			logger.Info("split", "train", trainSet.Len(), "val", val.Len(), "test", test.Len())

			model := nn.GestureClassifier(seqLen, landmark.FeaturesPerFrame, len(ds.Labels))
			if err := model.Build(cfg.Seed); err != nil {
				return err
			}

			hist, err := train.Fit(model, trainSet, val, cfg)
			if err != nil {
				return err
			}
			logger.Info("training finished",
				"epochs", len(hist.Epochs), "stopped_early", hist.Stopped, "best_val_loss", hist.BestValLoss)

			testLoss, testAcc := train.Evaluate(model, test)
			logger.Info("test", "loss", fmt.Sprintf("%.4f", testLoss), "acc", fmt.Sprintf("%.4f", testAcc))
			fmt.Fprint(cmd.OutOrStdout(), train.Classify(model, test).String())

			if ckptPath == "" {
				ckptPath = filepath.Join(outDir, "model.ckpt")
			}
			if err := saveCheckpoint(ckptPath, model, ds.Labels, seqLen, half); err != nil {
				return err
			}
			logger.Info("checkpoint saved", "path", ckptPath)

			if err := writeLabels(outDir, ds.Labels); err != nil {
				return err
			}
			return exportModel(outDir, model, logger)
		},
	}

	cmd.Flags().StringVar(&samplesDir, "samples-dir", "", "directory of windowed sample JSON files")
	cmd.Flags().StringVar(&outDir, "out-dir", "dist/model", "artifact output directory")
	cmd.Flags().StringVar(&ckptPath, "ckpt", "", "checkpoint path (default <out-dir>/model.ckpt)")
	cmd.Flags().IntVar(&seqLen, "seq-len", landmark.DefaultSequenceLength, "frames per sequence")
	cmd.Flags().IntVar(&cfg.Epochs, "epochs", cfg.Epochs, "training epochs")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "mini-batch size")
	cmd.Flags().Float64Var(&cfg.LearningRate, "lr", cfg.LearningRate, "Adam learning rate")
	cmd.Flags().Float64Var(&testSplit, "test-split", 0.15, "test fraction")
	cmd.Flags().Float64Var(&valSplit, "val-split", 0.15, "validation fraction of the full set")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	cmd.Flags().BoolVar(&half, "half", false, "store checkpoint weights in half precision")
	_ = cmd.MarkFlagRequired("samples-dir")
	return cmd
}

func saveCheckpoint(path string, model *nn.Sequential, labels []string, seqLen int, half bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	dtype := tensor.Float32
	if half {
		dtype = tensor.Float16
	}
	c, err := ckpt.FromStateDict(model.StateDict(), model.StateShapes(), dtype, ckpt.Header{
		SequenceLength: seqLen,
		Features:       landmark.FeaturesPerFrame,
		NumClasses:     len(labels),
		Labels:         labels,
	})
	if err != nil {
		return err
	}
	return ckpt.Write(path, c)
}

func writeLabels(dir string, labels []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, labelsName), data, 0o644); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}

func exportModel(dir string, model *nn.Sequential, logger *log.Logger) error {
	layers, err := model.ExportLayers()
	if err != nil {
		return err
	}
	exp := export.Exporter{}
	doc, err := exp.Export(dir, layers, model.Topology())
	if err != nil {
		return err
	}
	logger.Info("model exported",
		"dir", dir,
		"tensors", len(doc.WeightsManifest[0].Weights),
		"shards", len(doc.WeightsManifest[0].Paths))
	return nil
}
