package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// lossAt runs a clean forward pass and returns the cross-entropy loss.
func lossAt(m *Sequential, in *Batch, labels []int) float64 {
	loss, _ := CrossEntropy(m.Forward(in, false).Flat, labels)
	return loss
}

// checkGradients compares every analytic parameter gradient against a
// central finite difference of the loss.
func checkGradients(t *testing.T, m *Sequential, in *Batch, labels []int) {
	t.Helper()

	m.ZeroGrad()
	probs := m.Forward(in, true).Flat
	_, dLogits := CrossEntropy(probs, labels)
	m.Backward(&Batch{Flat: dLogits})

	const eps = 1e-5
	for _, p := range m.Params() {
		rows, cols := p.Value.Dims()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				orig := p.Value.At(r, c)

				p.Value.Set(r, c, orig+eps)
				plus := lossAt(m, in, labels)
				p.Value.Set(r, c, orig-eps)
				minus := lossAt(m, in, labels)
				p.Value.Set(r, c, orig)

				numeric := (plus - minus) / (2 * eps)
				analytic := p.Grad.At(r, c)
				diff := math.Abs(numeric - analytic)
				scale := math.Max(1.0, math.Max(math.Abs(numeric), math.Abs(analytic)))
				require.Lessf(t, diff/scale, 1e-5,
					"%s[%d,%d]: analytic %g vs numeric %g", p.Path, r, c, analytic, numeric)
			}
		}
	}
}

func randomBatch(rng *rand.Rand, samples, steps, features int) *Batch {
	x := make([][][]float64, samples)
	for i := range x {
		x[i] = make([][]float64, steps)
		for t := range x[i] {
			x[i][t] = make([]float64, features)
			for f := range x[i][t] {
				x[i][t][f] = rng.NormFloat64() * 0.5
			}
		}
	}
	return BatchFromSequences(x)
}

func TestGradients_DenseStack(t *testing.T) {
	m := NewSequential(
		Input(1, 5),
		LSTM(4, false),
		Dense(6, ActivationReLU),
		Dense(3, ActivationSoftmax),
	)
	require.NoError(t, m.Build(11))

	rng := rand.New(rand.NewSource(2))
	checkGradients(t, m, randomBatch(rng, 4, 1, 5), []int{0, 2, 1, 2})
}

func TestGradients_LSTMOverTime(t *testing.T) {
	m := NewSequential(
		Input(4, 3),
		LSTM(5, false),
		Dense(2, ActivationSoftmax),
	)
	require.NoError(t, m.Build(7))

	rng := rand.New(rand.NewSource(3))
	checkGradients(t, m, randomBatch(rng, 3, 4, 3), []int{1, 0, 1})
}

func TestGradients_StackedBidirectional(t *testing.T) {
	m := NewSequential(
		Input(3, 4),
		Bidirectional(LSTM(3, true)),
		Bidirectional(LSTM(2, false)),
		Dense(4, ActivationReLU),
		Dense(3, ActivationSoftmax),
	)
	require.NoError(t, m.Build(13))

	rng := rand.New(rand.NewSource(5))
	checkGradients(t, m, randomBatch(rng, 2, 3, 4), []int{2, 0})
}

func TestTraining_LossDecreasesUnderSGD(t *testing.T) {
	m := NewSequential(
		Input(3, 4),
		Bidirectional(LSTM(4, false)),
		Dense(2, ActivationSoftmax),
	)
	require.NoError(t, m.Build(21))

	rng := rand.New(rand.NewSource(9))
	// Two separable clusters.
	x := make([][][]float64, 8)
	labels := make([]int, 8)
	for i := range x {
		labels[i] = i % 2
		offset := float64(labels[i]*2 - 1)
		x[i] = make([][]float64, 3)
		for tt := range x[i] {
			x[i][tt] = make([]float64, 4)
			for f := range x[i][tt] {
				x[i][tt][f] = offset + rng.NormFloat64()*0.1
			}
		}
	}
	batch := BatchFromSequences(x)

	var first, last float64
	for step := 0; step < 30; step++ {
		m.ZeroGrad()
		probs := m.Forward(batch, true).Flat
		loss, dLogits := CrossEntropy(probs, labels)
		if step == 0 {
			first = loss
		}
		last = loss
		m.Backward(&Batch{Flat: dLogits})
		for _, p := range m.Params() {
			var delta mat.Dense
			delta.Scale(0.1, p.Grad)
			p.Value.Sub(p.Value, &delta)
		}
	}
	require.Less(t, last, first*0.5, "loss should at least halve: first %g last %g", first, last)
}
