// Package dataset turns raw landmark samples into the fixed-shape
// arrays the trainer consumes: label vocabulary, per-sample padding or
// downsampling to the sequence length, stratified splitting and
// mini-batching.
package dataset

import (
	"fmt"
	"sort"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/landmark"
)

// Dataset holds prepared sequences and their class indices.
type Dataset struct {
	X      [][][]float64 // [samples][seqLen][features]
	Y      []int         // class index per sample
	Labels []string      // sorted class vocabulary
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.X)
}

// ClassCounts returns the number of samples per class, indexed like
// Labels.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, len(d.Labels))
	for _, y := range d.Y {
		counts[y]++
	}
	return counts
}

// Prepare converts raw samples into a Dataset with every sequence
// exactly seqLen frames long. Short sequences are padded by repeating
// the last frame; long ones are uniformly downsampled to keep temporal
// coverage. Old 63-feature frames are widened; samples with any other
// frame width, or with no frames at all, are skipped.
func Prepare(samples []landmark.Sample, seqLen int) (*Dataset, error) {
	if seqLen <= 0 {
		return nil, fmt.Errorf("sequence length must be positive, got %d", seqLen)
	}

	labelSet := make(map[string]struct{})
	for _, s := range samples {
		labelSet[s.Label] = struct{}{}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	labelIdx := make(map[string]int, len(labels))
	for i, l := range labels {
		labelIdx[l] = i
	}

	ds := &Dataset{Labels: labels}

	for _, s := range samples {
		if len(s.Landmarks) == 0 {
			continue
		}

		frames := make([][]float64, 0, len(s.Landmarks))
		ok := true
		for _, frame := range s.Landmarks {
			widened, err := landmark.UpgradeFrame(frame)
			if err != nil {
				ok = false
				break
			}
			frames = append(frames, widened)
		}
		if !ok {
			continue
		}

		switch {
		case len(frames) < seqLen:
			last := frames[len(frames)-1]
			for len(frames) < seqLen {
				frames = append(frames, last)
			}
		case len(frames) > seqLen:
			frames = downsample(frames, seqLen)
		}

		ds.X = append(ds.X, frames[:seqLen])
		ds.Y = append(ds.Y, labelIdx[s.Label])
	}

	if ds.Len() == 0 {
		return nil, fmt.Errorf("no usable samples after preparation")
	}
	return ds, nil
}

// downsample picks n frames at uniformly spaced indices across the
// stream, always including the first and last frame.
func downsample(frames [][]float64, n int) [][]float64 {
	out := make([][]float64, n)
	if n == 1 {
		out[0] = frames[0]
		return out
	}
	span := float64(len(frames) - 1)
	for i := 0; i < n; i++ {
		idx := int(float64(i) * span / float64(n-1))
		out[i] = frames[idx]
	}
	return out
}

// subset returns a Dataset view over the given sample indices, sharing
// the label vocabulary.
func (d *Dataset) subset(indices []int) *Dataset {
	out := &Dataset{Labels: d.Labels}
	for _, i := range indices {
		out.X = append(out.X, d.X[i])
		out.Y = append(out.Y, d.Y[i])
	}
	return out
}
