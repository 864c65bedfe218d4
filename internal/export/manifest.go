package export

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FormatLayersModel is the fixed format tag identifying a layered-model
// artifact.
const FormatLayersModel = "layers-model"

// DocumentName is the filename of the export document within an
// artifact directory.
const DocumentName = "model.json"

// TensorSpec describes one weight tensor in the manifest: its runtime
// name, shape and element type. Identity is the name, which must be
// unique within one export.
type TensorSpec struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
	DType string `json:"dtype"`
}

// WeightsManifestGroup maps an ordered tensor list onto an ordered list
// of shard files. The manifest is positional: the Nth entry's bytes
// start exactly where the (N-1)th entry's bytes end in the concatenated
// shard stream.
type WeightsManifestGroup struct {
	Paths   []string     `json:"paths"`
	Weights []TensorSpec `json:"weights"`
}

// Document is the persisted export artifact, written once per export
// and never mutated afterwards.
type Document struct {
	Format          string                 `json:"format"`
	GeneratedBy     string                 `json:"generatedBy"`
	ConvertedBy     string                 `json:"convertedBy"`
	ModelTopology   any                    `json:"modelTopology"`
	WeightsManifest []WeightsManifestGroup `json:"weightsManifest"`
}

// Exporter assembles and writes layered-model artifacts.
type Exporter struct {
	// GeneratedBy and ConvertedBy are free-form provenance strings
	// recorded in the document.
	GeneratedBy string
	ConvertedBy string

	// MaxShardBytes splits weight data across multiple shard files
	// when positive. Zero writes a single shard.
	MaxShardBytes int
}

// Export runs the full pipeline: collect weights, normalize the
// topology, rewrite tensor names, pack shards, and write the artifact
// to dir (created if absent). Tensor order is preserved end to end; the
// assembler performs no renaming or reordering of its own.
//
// Shard files are written before the document, so a failed export never
// leaves a document referencing weights that are not fully on disk. Any
// error aborts the export and no partial artifact should be treated as
// loadable. Files already present in dir that the export does not own
// (such as labels.json) are left untouched.
func (e *Exporter) Export(dir string, layers []LayerWeights, topology any) (*Document, error) {
	col, err := Collect(layers)
	if err != nil {
		return nil, fmt.Errorf("collect weights: %w", err)
	}

	normalized := Normalize(topology)

	rewriter := NewRewriter(ModelName(normalized), RulesFromTopology(normalized))
	specs := make([]TensorSpec, len(col.Specs))
	seen := make(map[string]struct{}, len(col.Specs))
	for i, spec := range col.Specs {
		spec.Name = rewriter.Rewrite(spec.Name)
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w after rewrite: %q", ErrDuplicateTensorName, spec.Name)
		}
		seen[spec.Name] = struct{}{}
		specs[i] = spec
	}

	shards, err := Pack(col.Buffers, e.MaxShardBytes)
	if err != nil {
		return nil, fmt.Errorf("pack shards: %w", err)
	}

	paths := make([]string, len(shards))
	for i, s := range shards {
		paths[i] = s.Name
	}

	doc := &Document{
		Format:        FormatLayersModel,
		GeneratedBy:   e.GeneratedBy,
		ConvertedBy:   e.ConvertedBy,
		ModelTopology: normalized,
		WeightsManifest: []WeightsManifestGroup{{
			Paths:   paths,
			Weights: specs,
		}},
	}
	if doc.GeneratedBy == "" {
		doc.GeneratedBy = "signassist trainer"
	}
	if doc.ConvertedBy == "" {
		doc.ConvertedBy = "signassist layered-model exporter"
	}

	if err := writeArtifact(dir, doc, shards); err != nil {
		return nil, err
	}
	return doc, nil
}

// writeArtifact persists shards first and the document last, the
// document via a temp-file rename so a readable model.json always
// references fully written shards.
func writeArtifact(dir string, doc *Document, shards []Shard) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, s := range shards {
		if err := os.WriteFile(filepath.Join(dir, s.Name), s.Data, 0o644); err != nil {
			return fmt.Errorf("write shard %s: %w", s.Name, err)
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp := filepath.Join(dir, DocumentName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, DocumentName)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize document: %w", err)
	}
	return nil
}
