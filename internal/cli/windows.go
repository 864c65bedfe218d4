package cli

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/landmark"
)

func newWindowsCmd() *cobra.Command {
	var (
		framesDir string
		outPath   string
		seqLen    int
		overlap   float64
		augment   bool
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Slice recorded frame streams into windowed training samples",
		Long: `Reads per-label subdirectories of frame-stream JSON files and slices
each stream into fixed-length overlapping windows. With --augment every
window additionally gets one randomly perturbed copy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd)

			samples, err := buildWindowSamples(framesDir, seqLen, overlap, augment, seed)
			if err != nil {
				return err
			}

			perLabel := make(map[string]int)
			for _, s := range samples {
				perLabel[s.Label]++
			}
			for label, n := range perLabel {
				logger.Info("windowed", "label", label, "samples", n)
			}

			if err := landmark.WriteSamples(outPath, samples); err != nil {
				return err
			}
			logger.Info("wrote samples", "path", outPath, "total", len(samples))
			return nil
		},
	}

	cmd.Flags().StringVar(&framesDir, "frames-dir", "", "directory with one subdirectory of frame-stream JSON per label")
	cmd.Flags().StringVar(&outPath, "out", "samples.json", "output samples file")
	cmd.Flags().IntVar(&seqLen, "seq-len", landmark.DefaultSequenceLength, "frames per window")
	cmd.Flags().Float64Var(&overlap, "overlap", 0.5, "window overlap ratio")
	cmd.Flags().BoolVar(&augment, "augment", false, "add one augmented copy per window")
	cmd.Flags().Int64Var(&seed, "seed", 42, "augmentation random seed")
	_ = cmd.MarkFlagRequired("frames-dir")
	return cmd
}

// buildWindowSamples walks framesDir's per-label subdirectories and
// windows every frame stream found inside.
func buildWindowSamples(framesDir string, seqLen int, overlap float64, augment bool, seed int64) ([]landmark.Sample, error) {
	if overlap < 0 || overlap > 0.9 {
		return nil, fmt.Errorf("overlap %g out of range [0, 0.9]", overlap)
	}

	entries, err := os.ReadDir(framesDir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	var labels []string
	for _, e := range entries {
		if e.IsDir() {
			labels = append(labels, e.Name())
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no label subdirectories in %s", framesDir)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UnixMilli()

	var samples []landmark.Sample
	for _, label := range labels {
		files, err := filepath.Glob(filepath.Join(framesDir, label, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", label, err)
		}
		sort.Strings(files)

		for _, f := range files {
			frames, err := landmark.LoadFrameStream(f)
			if err != nil {
				return nil, err
			}
			for _, window := range landmark.BuildSequences(frames, seqLen, overlap) {
				samples = append(samples, landmark.Sample{
					Label:     label,
					Landmarks: window,
					Timestamp: now,
					Source:    "window",
				})
				if augment {
					samples = append(samples, landmark.Sample{
						Label:     label,
						Landmarks: landmark.Augment(window, rng),
						Timestamp: now,
						Source:    "augment",
					})
				}
			}
		}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no frame streams found under %s", framesDir)
	}
	return samples, nil
}
