package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Batch holds the activations flowing between layers: either a
// sequence (one B×F matrix per timestep) or a single flat B×D matrix.
// Exactly one of the two fields is set.
type Batch struct {
	Steps []*mat.Dense
	Flat  *mat.Dense
}

// dataShape describes the static shape of activations between layers.
type dataShape struct {
	seq      bool
	steps    int // timesteps, when seq
	features int
}

// Layer is one stage of the sequence classifier. The set of
// implementations is closed: collection and naming rules differ only
// between simple layers and the composite bidirectional wrapper, so the
// interface is not open for extension outside this package.
type Layer interface {
	// ClassName returns the authoring-schema class tag.
	ClassName() string
	// Name returns the instance name assigned at build time.
	Name() string
	// Composite reports whether the layer wraps directional sub-layers,
	// which changes how its weight paths are scoped.
	Composite() bool
	// Params returns trainable weights in declaration order.
	Params() []*Param
	// Config returns the layer's serialized configuration in the
	// authoring schema.
	Config() map[string]any

	// Forward computes the layer output, caching whatever the backward
	// pass needs when training is true.
	Forward(in *Batch, training bool) *Batch
	// Backward consumes the gradient of the loss with respect to the
	// layer output, accumulates parameter gradients, and returns the
	// gradient with respect to the layer input.
	Backward(grad *Batch) *Batch

	setName(name string)
	build(in dataShape, modelName string, rng *rand.Rand) (dataShape, error)
}

// baseLayer carries the assigned instance name.
type baseLayer struct {
	name string
}

func (b *baseLayer) Name() string        { return b.name }
func (b *baseLayer) setName(name string) { b.name = name }
func (b *baseLayer) Composite() bool     { return false }
func (b *baseLayer) Params() []*Param    { return nil }
