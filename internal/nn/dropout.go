package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// DropoutLayer zeroes a random fraction of activations during training
// and rescales the survivors by 1/(1-rate). At inference it is the
// identity.
type DropoutLayer struct {
	baseLayer
	rate float64
	rng  *rand.Rand

	mask     *mat.Dense   // flat mode
	seqMasks []*mat.Dense // sequence mode
}

// Dropout builds a dropout layer with the given drop rate in [0, 1).
func Dropout(rate float64) *DropoutLayer {
	return &DropoutLayer{rate: rate}
}

func (l *DropoutLayer) ClassName() string { return "Dropout" }

func (l *DropoutLayer) Config() map[string]any {
	return map[string]any{
		"name":        l.name,
		"trainable":   true,
		"dtype":       dtypePolicy(),
		"rate":        l.rate,
		"seed":        nil,
		"noise_shape": nil,
	}
}

func (l *DropoutLayer) build(in dataShape, _ string, rng *rand.Rand) (dataShape, error) {
	if l.rate < 0 || l.rate >= 1 {
		return dataShape{}, fmt.Errorf("dropout layer %q: rate %v out of range", l.name, l.rate)
	}
	l.rng = rng
	return in, nil
}

func (l *DropoutLayer) Forward(in *Batch, training bool) *Batch {
	if !training || l.rate == 0 {
		l.mask, l.seqMasks = nil, nil
		return in
	}
	if in.Flat != nil {
		l.seqMasks = nil
		l.mask = l.newMask(in.Flat)
		return &Batch{Flat: hadamard(in.Flat, l.mask)}
	}
	l.mask = nil
	l.seqMasks = make([]*mat.Dense, len(in.Steps))
	steps := make([]*mat.Dense, len(in.Steps))
	for t, s := range in.Steps {
		l.seqMasks[t] = l.newMask(s)
		steps[t] = hadamard(s, l.seqMasks[t])
	}
	return &Batch{Steps: steps}
}

func (l *DropoutLayer) Backward(grad *Batch) *Batch {
	if l.mask == nil && l.seqMasks == nil {
		return grad
	}
	if grad.Flat != nil {
		return &Batch{Flat: hadamard(grad.Flat, l.mask)}
	}
	steps := make([]*mat.Dense, len(grad.Steps))
	for t, g := range grad.Steps {
		steps[t] = hadamard(g, l.seqMasks[t])
	}
	return &Batch{Steps: steps}
}

func (l *DropoutLayer) newMask(shapeOf *mat.Dense) *mat.Dense {
	rows, cols := shapeOf.Dims()
	keep := 1.0 - l.rate
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		v := m.RawRowView(r)
		for c := 0; c < cols; c++ {
			if l.rng.Float64() < keep {
				v[c] = 1.0 / keep
			}
		}
	}
	return m
}
