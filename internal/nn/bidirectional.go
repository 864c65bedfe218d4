package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// BidirectionalLayer runs a forward and a backward copy of an LSTM over
// the same sequence and concatenates their outputs along the feature
// axis. Its weight paths are scoped under the wrapper's own name rather
// than the model name.
type BidirectionalLayer struct {
	baseLayer
	inner *LSTMLayer // template carrying units and return mode

	forward  *LSTMLayer
	backward *LSTMLayer
}

// Bidirectional wraps an LSTM in a concat-merge bidirectional layer.
func Bidirectional(inner *LSTMLayer) *BidirectionalLayer {
	return &BidirectionalLayer{inner: inner}
}

func (l *BidirectionalLayer) ClassName() string { return "Bidirectional" }
func (l *BidirectionalLayer) Composite() bool   { return true }

// Params returns the forward sub-layer's weights followed by the
// backward sub-layer's, matching the wrapper's serialized weight order.
func (l *BidirectionalLayer) Params() []*Param {
	return append(l.forward.Params(), l.backward.Params()...)
}

func (l *BidirectionalLayer) Config() map[string]any {
	return map[string]any{
		"name":       l.name,
		"trainable":  true,
		"dtype":      dtypePolicy(),
		"merge_mode": "concat",
		"layer": map[string]any{
			"module":          "keras.layers",
			"class_name":      "LSTM",
			"config":          l.inner.Config(),
			"registered_name": nil,
		},
	}
}

func (l *BidirectionalLayer) build(in dataShape, _ string, rng *rand.Rand) (dataShape, error) {
	if !in.seq {
		return dataShape{}, fmt.Errorf("bidirectional layer %q: flat input, expected a sequence", l.name)
	}
	if l.inner.name == "" {
		return dataShape{}, fmt.Errorf("bidirectional layer %q: wrapped layer has no name", l.name)
	}

	l.forward = LSTM(l.inner.units, l.inner.returnSequences)
	l.forward.setName("forward_" + l.inner.name)
	l.backward = LSTM(l.inner.units, l.inner.returnSequences)
	l.backward.setName("backward_" + l.inner.name)

	// Sub-layer paths carry no model prefix; the weight collector scopes
	// them under the wrapper name.
	out, err := l.forward.build(in, "", rng)
	if err != nil {
		return dataShape{}, err
	}
	if _, err := l.backward.build(in, "", rng); err != nil {
		return dataShape{}, err
	}

	out.features *= 2
	return out, nil
}

func (l *BidirectionalLayer) Forward(in *Batch, training bool) *Batch {
	fw := l.forward.Forward(in, training)
	bw := l.backward.Forward(&Batch{Steps: reverseSteps(in.Steps)}, training)

	if fw.Flat != nil {
		return &Batch{Flat: hstack(fw.Flat, bw.Flat)}
	}

	bwSteps := reverseSteps(bw.Steps)
	steps := make([]*mat.Dense, len(fw.Steps))
	for t := range steps {
		steps[t] = hstack(fw.Steps[t], bwSteps[t])
	}
	return &Batch{Steps: steps}
}

func (l *BidirectionalLayer) Backward(grad *Batch) *Batch {
	var fwGrad, bwGrad *Batch
	if grad.Flat != nil {
		f, b := splitCols(grad.Flat, l.forward.units)
		fwGrad = &Batch{Flat: f}
		bwGrad = &Batch{Flat: b}
	} else {
		fwSteps := make([]*mat.Dense, len(grad.Steps))
		bwSteps := make([]*mat.Dense, len(grad.Steps))
		for t, g := range grad.Steps {
			fwSteps[t], bwSteps[t] = splitCols(g, l.forward.units)
		}
		fwGrad = &Batch{Steps: fwSteps}
		// The backward sub-layer saw the sequence reversed, so its output
		// gradient has to be reversed the same way.
		bwGrad = &Batch{Steps: reverseSteps(bwSteps)}
	}

	dFw := l.forward.Backward(fwGrad)
	dBw := l.backward.Backward(bwGrad)

	bwDx := reverseSteps(dBw.Steps)
	steps := make([]*mat.Dense, len(dFw.Steps))
	for t := range steps {
		steps[t] = addM(dFw.Steps[t], bwDx[t])
	}
	return &Batch{Steps: steps}
}
