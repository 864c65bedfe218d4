package train

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/dataset"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/nn"
)

// clusterData builds a trivially separable two-class dataset.
func clusterData(n, steps, features int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := &dataset.Dataset{Labels: []string{"hello", "thanks"}}
	for i := 0; i < n; i++ {
		class := i % 2
		offset := float64(class*2 - 1)
		seq := make([][]float64, steps)
		for t := range seq {
			seq[t] = make([]float64, features)
			for f := range seq[t] {
				seq[t][f] = offset + rng.NormFloat64()*0.1
			}
		}
		ds.X = append(ds.X, seq)
		ds.Y = append(ds.Y, class)
	}
	return ds
}

func TestFit_LearnsSeparableClusters(t *testing.T) {
	train := clusterData(24, 3, 4, 1)
	val := clusterData(8, 3, 4, 2)

	model := nn.NewSequential(
		nn.Input(3, 4),
		nn.Bidirectional(nn.LSTM(4, false)),
		nn.Dense(2, nn.ActivationSoftmax),
	)
	require.NoError(t, model.Build(42))

	cfg := DefaultConfig()
	cfg.Epochs = 40
	cfg.BatchSize = 8
	cfg.LearningRate = 0.01
	hist, err := Fit(model, train, val, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, hist.Epochs)
	assert.True(t, hist.BestRestored)

	first := hist.Epochs[0]
	_, valAcc := Evaluate(model, val)
	assert.Greater(t, valAcc, 0.9, "val accuracy after training")
	assert.Less(t, hist.BestValLoss, first.ValLoss)
}

func TestFit_RejectsBadConfig(t *testing.T) {
	ds := clusterData(8, 3, 4, 1)
	model := nn.NewSequential(
		nn.Input(3, 4),
		nn.LSTM(4, false),
		nn.Dense(2, nn.ActivationSoftmax),
	)
	require.NoError(t, model.Build(1))

	cfg := DefaultConfig()
	cfg.Epochs = 0
	_, err := Fit(model, ds, ds, cfg)
	assert.Error(t, err)
}

func TestAdam_FirstStepIsSignedLearningRate(t *testing.T) {
	model := nn.NewSequential(
		nn.Input(1, 2),
		nn.LSTM(2, false),
		nn.Dense(2, nn.ActivationSoftmax),
	)
	require.NoError(t, model.Build(3))
	params := model.Params()

	opt := NewAdam(params, 0.001)
	target := params[len(params)-1] // dense bias, zero-initialized
	target.Grad.Set(0, 0, 5.0)
	target.Grad.Set(0, 1, -3.0)
	before0 := target.Value.At(0, 0)
	before1 := target.Value.At(0, 1)

	opt.Step(params)

	// With fresh moments the first update is ±lr regardless of gradient
	// magnitude (up to epsilon).
	assert.InDelta(t, before0-0.001, target.Value.At(0, 0), 1e-6)
	assert.InDelta(t, before1+0.001, target.Value.At(0, 1), 1e-6)
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	model := nn.NewSequential(
		nn.Input(1, 1),
		nn.LSTM(1, false),
		nn.Dense(1, nn.ActivationLinear),
	)
	require.NoError(t, model.Build(5))
	params := model.Params()
	opt := NewAdam(params, 0.05)

	// Minimize sum of squared weights; gradient is 2w.
	for step := 0; step < 500; step++ {
		for _, p := range params {
			p.ZeroGrad()
			p.Grad.Scale(2, p.Value)
		}
		opt.Step(params)
	}
	for _, p := range params {
		for _, v := range p.Flat() {
			assert.InDelta(t, 0.0, v, 0.05, p.Path)
		}
	}
}

func TestClassify_ReportShape(t *testing.T) {
	train := clusterData(24, 3, 4, 3)
	model := nn.NewSequential(
		nn.Input(3, 4),
		nn.Bidirectional(nn.LSTM(4, false)),
		nn.Dense(2, nn.ActivationSoftmax),
	)
	require.NoError(t, model.Build(11))

	cfg := DefaultConfig()
	cfg.Epochs = 30
	cfg.BatchSize = 8
	cfg.LearningRate = 0.01
	_, err := Fit(model, train, train, cfg)
	require.NoError(t, err)

	rep := Classify(model, train)
	require.Len(t, rep.Classes, 2)
	assert.Equal(t, "hello", rep.Classes[0].Label)
	assert.Equal(t, 12, rep.Classes[0].Support)
	assert.Greater(t, rep.Accuracy, 0.9)
	assert.Contains(t, rep.String(), "precision")
}
