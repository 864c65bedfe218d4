package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Activation names accepted by Dense.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSoftmax = "softmax"
)

// DenseLayer is a fully connected layer over flat activations.
type DenseLayer struct {
	baseLayer
	units      int
	activation string

	kernel *Param
	bias   *Param

	// caches for the backward pass
	in  *mat.Dense
	out *mat.Dense
}

// Dense builds a fully connected layer with the given unit count and
// activation ("linear", "relu" or "softmax").
func Dense(units int, activation string) *DenseLayer {
	return &DenseLayer{units: units, activation: activation}
}

func (l *DenseLayer) ClassName() string { return "Dense" }
func (l *DenseLayer) Params() []*Param  { return []*Param{l.kernel, l.bias} }

func (l *DenseLayer) Config() map[string]any {
	return map[string]any{
		"name":                 l.name,
		"trainable":            true,
		"dtype":                dtypePolicy(),
		"units":                l.units,
		"activation":           l.activation,
		"use_bias":             true,
		"kernel_initializer":   initializerRef("GlorotUniform"),
		"bias_initializer":     initializerRef("Zeros"),
		"kernel_regularizer":   nil,
		"bias_regularizer":     nil,
		"activity_regularizer": nil,
		"kernel_constraint":    nil,
		"bias_constraint":      nil,
	}
}

func (l *DenseLayer) build(in dataShape, modelName string, rng *rand.Rand) (dataShape, error) {
	if in.seq {
		return dataShape{}, fmt.Errorf("dense layer %q: sequence input not supported", l.name)
	}
	switch l.activation {
	case ActivationLinear, ActivationReLU, ActivationSoftmax:
	default:
		return dataShape{}, fmt.Errorf("dense layer %q: unknown activation %q", l.name, l.activation)
	}

	prefix := modelName + "/" + l.name
	l.kernel = newParam(prefix+"/kernel", in.features, l.units, []int{in.features, l.units})
	l.bias = newParam(prefix+"/bias", 1, l.units, []int{l.units})
	glorotUniform(l.kernel, in.features, l.units, rng)

	return dataShape{features: l.units}, nil
}

func (l *DenseLayer) Forward(in *Batch, training bool) *Batch {
	z := matmul(in.Flat, l.kernel.Value)
	addRow(z, l.bias.Value)

	var out *mat.Dense
	switch l.activation {
	case ActivationReLU:
		var a mat.Dense
		a.Apply(func(_, _ int, v float64) float64 {
			if v > 0 {
				return v
			}
			return 0
		}, z)
		out = &a
	case ActivationSoftmax:
		out = softmaxRows(z)
	default:
		out = z
	}

	if training {
		l.in = in.Flat
		l.out = out
	}
	return &Batch{Flat: out}
}

// Backward propagates the output gradient. For a softmax layer the
// incoming gradient must already be taken with respect to the
// pre-activation logits (the cross-entropy loss produces exactly that),
// so only the linear part is differentiated here.
func (l *DenseLayer) Backward(grad *Batch) *Batch {
	dz := grad.Flat
	if l.activation == ActivationReLU {
		dz = hadamard(dz, reluMask(l.out))
	}

	var dK mat.Dense
	dK.Mul(l.in.T(), dz)
	l.kernel.Grad.Add(l.kernel.Grad, &dK)
	l.bias.Grad.Add(l.bias.Grad, colSums(dz))

	var dIn mat.Dense
	dIn.Mul(dz, l.kernel.Value.T())
	return &Batch{Flat: &dIn}
}

func reluMask(out *mat.Dense) *mat.Dense {
	var m mat.Dense
	m.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	}, out)
	return &m
}
