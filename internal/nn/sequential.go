package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/export"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

// Sequential is a linear stack of layers with auto-assigned instance
// names.
type Sequential struct {
	name   string
	layers []Layer
	built  bool
}

// NewSequential builds the container around the given layer stack. The
// model name scopes simple-layer weight paths.
func NewSequential(layers ...Layer) *Sequential {
	return &Sequential{name: "sequential", layers: layers}
}

// Build assigns instance names and initializes all weights from the
// given seed. It must be called exactly once before any forward pass.
func (m *Sequential) Build(seed int64) error {
	if m.built {
		return fmt.Errorf("model %q already built", m.name)
	}
	if len(m.layers) == 0 {
		return fmt.Errorf("model %q has no layers", m.name)
	}

	m.assignNames()

	rng := rand.New(rand.NewSource(seed))
	var shape dataShape
	var err error
	for _, l := range m.layers {
		shape, err = l.build(shape, m.name, rng)
		if err != nil {
			return err
		}
	}
	m.built = true
	return nil
}

// assignNames gives every layer a per-class counter name the way the
// authoring tooling does: the first instance gets the bare class slug,
// later ones get a numeric suffix. A bidirectional wrapper also draws a
// name for its wrapped layer from that layer's own counter.
func (m *Sequential) assignNames() {
	counters := make(map[string]int)
	next := func(slug string) string {
		n := counters[slug]
		counters[slug]++
		if n == 0 {
			return slug
		}
		return fmt.Sprintf("%s_%d", slug, n)
	}

	for _, l := range m.layers {
		if bd, ok := l.(*BidirectionalLayer); ok {
			bd.inner.setName(next(classSlug(bd.inner.ClassName())))
		}
		l.setName(next(classSlug(l.ClassName())))
	}
}

func classSlug(class string) string {
	switch class {
	case "InputLayer":
		return "input_layer"
	case "LSTM":
		return "lstm"
	case "Bidirectional":
		return "bidirectional"
	case "Dense":
		return "dense"
	case "Dropout":
		return "dropout"
	default:
		return class
	}
}

// Layers returns the stack in declaration order.
func (m *Sequential) Layers() []Layer { return m.layers }

// Params returns every trainable weight in layer-declaration order.
func (m *Sequential) Params() []*Param {
	var out []*Param
	for _, l := range m.layers {
		out = append(out, l.Params()...)
	}
	return out
}

// ZeroGrad clears all accumulated gradients.
func (m *Sequential) ZeroGrad() {
	for _, p := range m.Params() {
		p.ZeroGrad()
	}
}

// Forward runs the full stack. The returned batch holds class
// probabilities when the final layer is a softmax dense.
func (m *Sequential) Forward(in *Batch, training bool) *Batch {
	out := in
	for _, l := range m.layers {
		out = l.Forward(out, training)
	}
	return out
}

// Backward propagates an output gradient through the stack in reverse,
// accumulating parameter gradients.
func (m *Sequential) Backward(grad *Batch) {
	g := grad
	for i := len(m.layers) - 1; i >= 0; i-- {
		g = m.layers[i].Backward(g)
	}
}

// BatchFromSequences packs row-major sequences (sample, step, feature)
// into a step-major batch.
func BatchFromSequences(x [][][]float64) *Batch {
	samples := len(x)
	steps := len(x[0])
	features := len(x[0][0])

	out := make([]*mat.Dense, steps)
	for t := 0; t < steps; t++ {
		s := mat.NewDense(samples, features, nil)
		for i := 0; i < samples; i++ {
			copy(s.RawRowView(i), x[i][t])
		}
		out[t] = s
	}
	return &Batch{Steps: out}
}

// Predict runs inference on raw sequences and returns per-sample class
// probability rows.
func (m *Sequential) Predict(x [][][]float64) *mat.Dense {
	return m.Forward(BatchFromSequences(x), false).Flat
}

// Topology serializes the model in the authoring schema: layer configs
// nested under a Sequential model config, with module references and
// dtype-policy objects intact. The export pipeline normalizes this
// form for the browser runtime.
func (m *Sequential) Topology() map[string]any {
	layers := make([]any, 0, len(m.layers))
	for _, l := range m.layers {
		entry := map[string]any{
			"module":          "keras.layers",
			"class_name":      l.ClassName(),
			"config":          l.Config(),
			"registered_name": nil,
		}
		if l.ClassName() != "InputLayer" {
			entry["build_config"] = map[string]any{"input_shape": nil}
		}
		layers = append(layers, entry)
	}

	return map[string]any{
		"keras_version": "3.6.0",
		"backend":       "tensorflow",
		"model_config": map[string]any{
			"module":     "keras",
			"class_name": "Sequential",
			"config": map[string]any{
				"name":      m.name,
				"trainable": true,
				"dtype":     dtypePolicy(),
				"layers":    layers,
			},
			"registered_name": nil,
		},
	}
}

// ExportLayers adapts the model's weights into the collector's layer
// view, preserving declaration order.
func (m *Sequential) ExportLayers() ([]export.LayerWeights, error) {
	var out []export.LayerWeights
	for _, l := range m.layers {
		params := l.Params()
		if len(params) == 0 {
			continue
		}
		lw := export.LayerWeights{Name: l.Name(), Composite: l.Composite()}
		for _, p := range params {
			raw, err := tensor.FromFloat64(tensor.Shape(p.Dims), p.Flat())
			if err != nil {
				return nil, fmt.Errorf("layer %q weight %q: %w", l.Name(), p.Path, err)
			}
			lw.Weights = append(lw.Weights, export.NamedTensor{Path: p.Path, Tensor: raw})
		}
		out = append(out, lw)
	}
	return out, nil
}

// StateDict snapshots every weight by path, row-major.
func (m *Sequential) StateDict() map[string][]float64 {
	out := make(map[string][]float64)
	for _, l := range m.layers {
		prefix := ""
		if l.Composite() {
			prefix = l.Name() + "/"
		}
		for _, p := range l.Params() {
			out[prefix+p.Path] = p.Flat()
		}
	}
	return out
}

// StateShapes returns the logical tensor shape of every weight, keyed
// like StateDict.
func (m *Sequential) StateShapes() map[string][]int {
	out := make(map[string][]int)
	for _, l := range m.layers {
		prefix := ""
		if l.Composite() {
			prefix = l.Name() + "/"
		}
		for _, p := range l.Params() {
			out[prefix+p.Path] = p.Dims
		}
	}
	return out
}

// LoadStateDict restores weights from a snapshot. Every parameter must
// be present with matching element count.
func (m *Sequential) LoadStateDict(state map[string][]float64) error {
	for _, l := range m.layers {
		prefix := ""
		if l.Composite() {
			prefix = l.Name() + "/"
		}
		for _, p := range l.Params() {
			values, ok := state[prefix+p.Path]
			if !ok {
				return fmt.Errorf("missing weight %q", prefix+p.Path)
			}
			if !p.SetFlat(values) {
				return fmt.Errorf("weight %q: wrong element count %d", prefix+p.Path, len(values))
			}
		}
	}
	return nil
}
