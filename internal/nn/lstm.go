package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// LSTMLayer is a single-direction LSTM over a sequence batch. Gate
// blocks are laid out [input, forget, candidate, output] in the fused
// weight matrices, each block units wide.
type LSTMLayer struct {
	baseLayer
	units           int
	returnSequences bool

	kernel    *Param // (features, 4*units)
	recurrent *Param // (units, 4*units)
	bias      *Param // (4*units)

	features int

	// backward-pass caches, one entry per timestep
	xs    []*mat.Dense
	hs    []*mat.Dense // hs[t] is the state entering step t; len T+1
	cs    []*mat.Dense // cell states, len T+1
	gi    []*mat.Dense
	gf    []*mat.Dense
	gg    []*mat.Dense
	go_   []*mat.Dense
	tanhC []*mat.Dense
}

// LSTM builds an LSTM layer. When returnSequences is true the layer
// emits the hidden state at every timestep, otherwise only the final
// state.
func LSTM(units int, returnSequences bool) *LSTMLayer {
	return &LSTMLayer{units: units, returnSequences: returnSequences}
}

func (l *LSTMLayer) ClassName() string { return "LSTM" }
func (l *LSTMLayer) Params() []*Param  { return []*Param{l.kernel, l.recurrent, l.bias} }

func (l *LSTMLayer) Config() map[string]any {
	return map[string]any{
		"name":                  l.name,
		"trainable":             true,
		"dtype":                 dtypePolicy(),
		"return_sequences":      l.returnSequences,
		"return_state":          false,
		"go_backwards":          false,
		"stateful":              false,
		"unroll":                false,
		"zero_output_for_mask":  false,
		"units":                 l.units,
		"activation":            "tanh",
		"recurrent_activation":  "sigmoid",
		"use_bias":              true,
		"kernel_initializer":    initializerRef("GlorotUniform"),
		"recurrent_initializer": initializerRef("Orthogonal"),
		"bias_initializer":      initializerRef("Zeros"),
		"unit_forget_bias":      true,
		"kernel_regularizer":    nil,
		"recurrent_regularizer": nil,
		"bias_regularizer":      nil,
		"activity_regularizer":  nil,
		"kernel_constraint":     nil,
		"recurrent_constraint":  nil,
		"bias_constraint":       nil,
		"dropout":               0.0,
		"recurrent_dropout":     0.0,
		"seed":                  nil,
	}
}

func (l *LSTMLayer) build(in dataShape, modelName string, rng *rand.Rand) (dataShape, error) {
	if !in.seq {
		return dataShape{}, fmt.Errorf("lstm layer %q: flat input, expected a sequence", l.name)
	}
	l.features = in.features

	prefix := l.name
	if modelName != "" {
		prefix = modelName + "/" + l.name
	}
	prefix += "/lstm_cell"

	u4 := 4 * l.units
	l.kernel = newParam(prefix+"/kernel", in.features, u4, []int{in.features, u4})
	l.recurrent = newParam(prefix+"/recurrent_kernel", l.units, u4, []int{l.units, u4})
	l.bias = newParam(prefix+"/bias", 1, u4, []int{u4})

	glorotUniform(l.kernel, in.features, u4, rng)
	orthogonal(l.recurrent, rng)
	unitForgetBias(l.bias, l.units)

	if l.returnSequences {
		return dataShape{seq: true, steps: in.steps, features: l.units}, nil
	}
	return dataShape{features: l.units}, nil
}

func (l *LSTMLayer) Forward(in *Batch, training bool) *Batch {
	steps := in.Steps
	rows, _ := steps[0].Dims()
	u := l.units

	h := mat.NewDense(rows, u, nil)
	c := mat.NewDense(rows, u, nil)

	if training {
		l.xs = steps
		l.hs = []*mat.Dense{h}
		l.cs = []*mat.Dense{c}
		l.gi, l.gf, l.gg, l.go_ = nil, nil, nil, nil
		l.tanhC = nil
	}

	outSteps := make([]*mat.Dense, len(steps))
	for t, x := range steps {
		z := matmul(x, l.kernel.Value)
		z.Add(z, matmul(h, l.recurrent.Value))
		addRow(z, l.bias.Value)

		gi := sigmoid(colSlice(z, 0, u))
		gf := sigmoid(colSlice(z, u, 2*u))
		gg := tanhM(colSlice(z, 2*u, 3*u))
		go_ := sigmoid(colSlice(z, 3*u, 4*u))

		c = addM(hadamard(gf, c), hadamard(gi, gg))
		tc := tanhM(c)
		h = hadamard(go_, tc)

		if training {
			l.hs = append(l.hs, h)
			l.cs = append(l.cs, c)
			l.gi = append(l.gi, gi)
			l.gf = append(l.gf, gf)
			l.gg = append(l.gg, gg)
			l.go_ = append(l.go_, go_)
			l.tanhC = append(l.tanhC, tc)
		}
		outSteps[t] = h
	}

	if l.returnSequences {
		return &Batch{Steps: outSteps}
	}
	return &Batch{Flat: h}
}

func (l *LSTMLayer) Backward(grad *Batch) *Batch {
	T := len(l.xs)
	u := l.units
	rows, _ := l.xs[0].Dims()

	dhNext := mat.NewDense(rows, u, nil)
	dcNext := mat.NewDense(rows, u, nil)
	dxs := make([]*mat.Dense, T)

	for t := T - 1; t >= 0; t-- {
		dh := dhNext
		if l.returnSequences {
			dh = addM(dh, grad.Steps[t])
		} else if t == T-1 {
			dh = addM(dh, grad.Flat)
		}

		tc := l.tanhC[t]
		do := hadamard(dh, tc)

		// dc = dh * o * (1 - tanh(c)^2) + dcNext
		dc := hadamard(dh, l.go_[t])
		dc.Apply(func(i, j int, v float64) float64 {
			tv := tc.At(i, j)
			return v * (1.0 - tv*tv)
		}, dc)
		dc.Add(dc, dcNext)

		di := hadamard(dc, l.gg[t])
		dg := hadamard(dc, l.gi[t])
		df := hadamard(dc, l.cs[t])

		dzi := sigmoidGrad(di, l.gi[t])
		dzf := sigmoidGrad(df, l.gf[t])
		dzg := tanhGrad(dg, l.gg[t])
		dzo := sigmoidGrad(do, l.go_[t])

		dz := mat.NewDense(rows, 4*u, nil)
		for r := 0; r < rows; r++ {
			row := dz.RawRowView(r)
			copy(row[:u], dzi.RawRowView(r))
			copy(row[u:2*u], dzf.RawRowView(r))
			copy(row[2*u:3*u], dzg.RawRowView(r))
			copy(row[3*u:], dzo.RawRowView(r))
		}

		var dK, dR mat.Dense
		dK.Mul(l.xs[t].T(), dz)
		dR.Mul(l.hs[t].T(), dz)
		l.kernel.Grad.Add(l.kernel.Grad, &dK)
		l.recurrent.Grad.Add(l.recurrent.Grad, &dR)
		l.bias.Grad.Add(l.bias.Grad, colSums(dz))

		dxs[t] = matmul(dz, l.kernel.Value.T())
		dhNext = matmul(dz, l.recurrent.Value.T())
		dcNext = hadamard(dc, l.gf[t])
	}

	return &Batch{Steps: dxs}
}

// sigmoidGrad maps an activation-space gradient through sigma', given
// the forward activation a: d * a * (1 - a).
func sigmoidGrad(d, a *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		av := a.At(i, j)
		return v * av * (1.0 - av)
	}, d)
	return &out
}

// tanhGrad maps an activation-space gradient through tanh', given the
// forward activation a: d * (1 - a^2).
func tanhGrad(d, a *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		av := a.At(i, j)
		return v * (1.0 - av*av)
	}, d)
	return &out
}
