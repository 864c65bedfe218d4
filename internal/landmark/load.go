package landmark

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
)

// LoadSamples reads every *.json file in dir and returns the contained
// samples. Each file may hold either a JSON array of samples or a
// single sample object, matching what the collection page downloads.
func LoadSamples(dir string) ([]Sample, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob sample files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JSON sample files found in %s", dir)
	}
	sort.Strings(files)

	var samples []Sample
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}

		var batch []Sample
		if err := json.Unmarshal(data, &batch); err == nil {
			samples = append(samples, batch...)
			continue
		}

		var single Sample
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		samples = append(samples, single)
	}
	return samples, nil
}

// WriteSamples writes samples as one JSON array, creating parent
// directories as needed.
func WriteSamples(path string, samples []Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("encode samples: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadFrameStream reads a raw frame-stream file: a JSON array of frame
// vectors as produced by an external landmark detector. Old 63-feature
// frames are widened on load.
func LoadFrameStream(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var frames [][]float64
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, frame := range frames {
		widened, err := UpgradeFrame(frame)
		if err != nil {
			return nil, fmt.Errorf("%s frame %d: %w", path, i, err)
		}
		frames[i] = widened
	}
	return frames, nil
}
