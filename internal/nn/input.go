package nn

import (
	"fmt"
	"math/rand"
)

// InputLayer pins the expected sequence shape. It carries no weights
// and passes activations through unchanged.
type InputLayer struct {
	baseLayer
	steps    int
	features int
}

// Input declares the model input: sequences of steps frames with
// features values per frame.
func Input(steps, features int) *InputLayer {
	return &InputLayer{steps: steps, features: features}
}

func (l *InputLayer) ClassName() string { return "InputLayer" }

func (l *InputLayer) Config() map[string]any {
	return map[string]any{
		"batch_shape": []any{nil, l.steps, l.features},
		"dtype":       "float32",
		"sparse":      false,
		"name":        l.name,
	}
}

func (l *InputLayer) Forward(in *Batch, _ bool) *Batch { return in }
func (l *InputLayer) Backward(grad *Batch) *Batch      { return grad }

func (l *InputLayer) build(_ dataShape, _ string, _ *rand.Rand) (dataShape, error) {
	if l.steps <= 0 || l.features <= 0 {
		return dataShape{}, fmt.Errorf("input layer: invalid shape (%d, %d)", l.steps, l.features)
	}
	return dataShape{seq: true, steps: l.steps, features: l.features}, nil
}
