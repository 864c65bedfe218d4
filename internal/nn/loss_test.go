package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestCrossEntropy_KnownValues(t *testing.T) {
	probs := mat.NewDense(2, 3, []float64{
		0.7, 0.2, 0.1,
		0.1, 0.1, 0.8,
	})
	loss, grad := CrossEntropy(probs, []int{0, 2})

	want := -(math.Log(0.7) + math.Log(0.8)) / 2
	assert.InDelta(t, want, loss, 1e-12)

	// grad = (p - y)/B
	assert.InDelta(t, (0.7-1.0)/2, grad.At(0, 0), 1e-12)
	assert.InDelta(t, 0.2/2, grad.At(0, 1), 1e-12)
	assert.InDelta(t, (0.8-1.0)/2, grad.At(1, 2), 1e-12)

	// Each gradient row sums to zero.
	for i := 0; i < 2; i++ {
		var sum float64
		for _, v := range grad.RawRowView(i) {
			sum += v
		}
		assert.InDelta(t, 0.0, sum, 1e-12)
	}
}

func TestCrossEntropy_ClampsZeroProbability(t *testing.T) {
	probs := mat.NewDense(1, 2, []float64{1, 0})
	loss, _ := CrossEntropy(probs, []int{1})
	assert.False(t, math.IsInf(loss, 1))
}

func TestAccuracyAndArgmax(t *testing.T) {
	probs := mat.NewDense(3, 3, []float64{
		0.9, 0.05, 0.05,
		0.1, 0.8, 0.1,
		0.3, 0.3, 0.4,
	})
	assert.Equal(t, []int{0, 1, 2}, Argmax(probs))
	assert.InDelta(t, 2.0/3.0, Accuracy(probs, []int{0, 1, 0}), 1e-12)
}
