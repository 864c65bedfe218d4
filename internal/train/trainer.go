// Package train drives the gesture classifier's optimization loop:
// Adam with bias correction, early stopping with best-weight
// restoration, learning-rate reduction on validation plateaus, and
// evaluation metrics.
package train

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/dataset"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/nn"
)

// Config controls one training run.
type Config struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	StopPatience    int     // epochs without val improvement before stopping
	PlateauPatience int     // epochs without val improvement before reducing LR
	PlateauFactor   float64 // multiplicative LR reduction
	MinLearningRate float64
	Seed            int64

	// Logger receives per-epoch progress. Nil disables progress output.
	Logger *log.Logger
}

// DefaultConfig returns the standard training setup.
func DefaultConfig() Config {
	return Config{
		Epochs:          100,
		BatchSize:       32,
		LearningRate:    0.001,
		StopPatience:    10,
		PlateauPatience: 5,
		PlateauFactor:   0.5,
		MinLearningRate: 1e-6,
		Seed:            42,
	}
}

// EpochStats is one row of the training history.
type EpochStats struct {
	Epoch    int
	Loss     float64
	Accuracy float64
	ValLoss  float64
	ValAcc   float64
	LR       float64
}

// History records the full run plus where and why it ended.
type History struct {
	Epochs       []EpochStats
	Stopped      bool // true when early stopping cut the run short
	BestValLoss  float64
	BestRestored bool
}

// Fit trains the model in place on the training split, monitoring the
// validation split. When early stopping triggers (or the run completes)
// the weights from the best validation epoch are restored.
func Fit(model *nn.Sequential, train, val *dataset.Dataset, cfg Config) (*History, error) {
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive, got %d", cfg.Epochs)
	}
	if train.Len() == 0 || val.Len() == 0 {
		return nil, fmt.Errorf("empty split: train %d, val %d", train.Len(), val.Len())
	}

	params := model.Params()
	opt := NewAdam(params, cfg.LearningRate)
	stopper := newEarlyStopping(cfg.StopPatience)
	scheduler := newPlateauScheduler(cfg.PlateauFactor, cfg.PlateauPatience, cfg.MinLearningRate)
	rng := rand.New(rand.NewSource(cfg.Seed))

	hist := &History{}
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		var lossSum, accSum float64
		var batchCount int

		for _, idx := range dataset.Batches(train.Len(), cfg.BatchSize, rng) {
			x := make([][][]float64, len(idx))
			y := make([]int, len(idx))
			for i, j := range idx {
				x[i] = train.X[j]
				y[i] = train.Y[j]
			}

			model.ZeroGrad()
			probs := model.Forward(nn.BatchFromSequences(x), true).Flat
			loss, dLogits := nn.CrossEntropy(probs, y)
			model.Backward(&nn.Batch{Flat: dLogits})
			opt.Step(params)

			lossSum += loss
			accSum += nn.Accuracy(probs, y)
			batchCount++
		}

		valLoss, valAcc := Evaluate(model, val)
		stats := EpochStats{
			Epoch:    epoch,
			Loss:     lossSum / float64(batchCount),
			Accuracy: accSum / float64(batchCount),
			ValLoss:  valLoss,
			ValAcc:   valAcc,
			LR:       opt.LR,
		}
		hist.Epochs = append(hist.Epochs, stats)

		if cfg.Logger != nil {
			cfg.Logger.Info("epoch",
				"n", epoch,
				"loss", fmt.Sprintf("%.4f", stats.Loss),
				"acc", fmt.Sprintf("%.4f", stats.Accuracy),
				"val_loss", fmt.Sprintf("%.4f", valLoss),
				"val_acc", fmt.Sprintf("%.4f", valAcc),
				"lr", opt.LR)
		}

		opt.LR = scheduler.observe(valLoss, opt.LR)
		if stopper.observe(valLoss, model.StateDict()) {
			hist.Stopped = true
			if cfg.Logger != nil {
				cfg.Logger.Info("early stopping", "epoch", epoch, "best_val_loss", stopper.best)
			}
			break
		}
	}

	if best := stopper.bestState(); best != nil {
		if err := model.LoadStateDict(best); err != nil {
			return nil, fmt.Errorf("restore best weights: %w", err)
		}
		hist.BestRestored = true
		hist.BestValLoss = stopper.best
	}
	return hist, nil
}

// Evaluate returns cross-entropy loss and accuracy over a dataset.
func Evaluate(model *nn.Sequential, ds *dataset.Dataset) (loss, acc float64) {
	probs := model.Predict(ds.X)
	loss, _ = nn.CrossEntropy(probs, ds.Y)
	return loss, nn.Accuracy(probs, ds.Y)
}
