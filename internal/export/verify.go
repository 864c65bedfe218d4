package export

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Report summarizes a verified artifact directory.
type Report struct {
	Format      string
	GeneratedBy string
	ConvertedBy string
	Tensors     int
	WeightBytes int64
	Shards      []string
}

// ReadDocument loads and decodes the export document from an artifact
// directory.
func ReadDocument(dir string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(dir, DocumentName))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// GroupBytes reads and concatenates a manifest group's shard files in
// path order, reconstructing the original byte stream.
func GroupBytes(dir string, group WeightsManifestGroup) ([]byte, error) {
	var data []byte
	for _, p := range group.Paths {
		b, err := os.ReadFile(filepath.Join(dir, p))
		if err != nil {
			return nil, fmt.Errorf("read shard %s: %w", p, err)
		}
		data = append(data, b...)
	}
	return data, nil
}

// Verify checks that an exported artifact directory is self-consistent:
// the format tag is present, every tensor name is unique, each group's
// summed tensor byte lengths equal its shard bytes exactly (no padding,
// no trailing bytes), and the topology is free of keys the runtime
// rejects.
func Verify(dir string) (*Report, error) {
	doc, err := ReadDocument(dir)
	if err != nil {
		return nil, err
	}

	if doc.Format != FormatLayersModel {
		return nil, fmt.Errorf("unexpected format tag %q (want %q)", doc.Format, FormatLayersModel)
	}

	report := &Report{
		Format:      doc.Format,
		GeneratedBy: doc.GeneratedBy,
		ConvertedBy: doc.ConvertedBy,
	}

	seen := make(map[string]struct{})
	for _, group := range doc.WeightsManifest {
		var want int64
		for _, w := range group.Weights {
			if _, dup := seen[w.Name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateTensorName, w.Name)
			}
			seen[w.Name] = struct{}{}
			if w.DType != "float32" {
				return nil, fmt.Errorf("tensor %q has dtype %q (want float32)", w.Name, w.DType)
			}
			n := 1
			for _, dim := range w.Shape {
				if dim <= 0 {
					return nil, fmt.Errorf("tensor %q has invalid shape %v", w.Name, w.Shape)
				}
				n *= dim
			}
			want += int64(n * 4)
		}

		data, err := GroupBytes(dir, group)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) != want {
			return nil, fmt.Errorf("group shard bytes %d do not match manifest total %d", len(data), want)
		}

		report.Tensors += len(group.Weights)
		report.WeightBytes += want
		report.Shards = append(report.Shards, group.Paths...)
	}

	if err := checkDisallowedKeys(doc.ModelTopology); err != nil {
		return nil, err
	}

	return report, nil
}

// checkDisallowedKeys walks a topology tree and fails on any key the
// normalizer should have removed or renamed.
func checkDisallowedKeys(node any) error {
	var failure error
	walkTopology(node, func(m map[string]any) {
		if failure != nil {
			return
		}
		for k := range m {
			if _, bad := droppedKeys[k]; bad {
				failure = fmt.Errorf("topology contains disallowed key %q", k)
				return
			}
			if k == keyBatchShape {
				failure = fmt.Errorf("topology contains unrenamed key %q", keyBatchShape)
				return
			}
		}
		_, hasModule := m[keyModule]
		_, hasClass := m[keyClassName]
		_, hasReg := m[keyRegisteredName]
		if hasModule && hasClass && hasReg {
			failure = fmt.Errorf("topology contains uncollapsed object reference (module/class_name/registered_name)")
		}
	})
	return failure
}
