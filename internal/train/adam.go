package train

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/nn"
)

// Adam implements bias-corrected Adam over a fixed parameter set. The
// learning rate is mutable so a plateau scheduler can lower it between
// epochs without resetting the moment estimates.
type Adam struct {
	LR float64

	beta1   float64
	beta2   float64
	epsilon float64

	step int
	m    []*mat.Dense
	v    []*mat.Dense
}

// NewAdam builds an optimizer for the given parameters with standard
// moment decay rates (0.9, 0.999) and epsilon 1e-7.
func NewAdam(params []*nn.Param, lr float64) *Adam {
	a := &Adam{
		LR:      lr,
		beta1:   0.9,
		beta2:   0.999,
		epsilon: 1e-7,
		m:       make([]*mat.Dense, len(params)),
		v:       make([]*mat.Dense, len(params)),
	}
	for i, p := range params {
		rows, cols := p.Value.Dims()
		a.m[i] = mat.NewDense(rows, cols, nil)
		a.v[i] = mat.NewDense(rows, cols, nil)
	}
	return a
}

// Step applies one update from the accumulated gradients. The params
// slice must be the same one the optimizer was built with.
func (a *Adam) Step(params []*nn.Param) {
	a.step++
	c1 := 1.0 - math.Pow(a.beta1, float64(a.step))
	c2 := 1.0 - math.Pow(a.beta2, float64(a.step))

	for i, p := range params {
		rows, cols := p.Value.Dims()
		for r := 0; r < rows; r++ {
			grad := p.Grad.RawRowView(r)
			val := p.Value.RawRowView(r)
			mRow := a.m[i].RawRowView(r)
			vRow := a.v[i].RawRowView(r)
			for c := 0; c < cols; c++ {
				g := grad[c]
				mRow[c] = a.beta1*mRow[c] + (1.0-a.beta1)*g
				vRow[c] = a.beta2*vRow[c] + (1.0-a.beta2)*g*g
				mHat := mRow[c] / c1
				vHat := vRow[c] / c2
				val[c] -= a.LR * mHat / (math.Sqrt(vHat) + a.epsilon)
			}
		}
	}
}
