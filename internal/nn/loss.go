package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CrossEntropy computes the mean categorical cross-entropy between
// softmax probabilities and integer class labels, together with the
// loss gradient with respect to the pre-softmax logits: (p - y) / B.
// Pairing that gradient with a softmax dense output layer keeps the
// softmax derivative out of the layer's backward pass.
func CrossEntropy(probs *mat.Dense, labels []int) (float64, *mat.Dense) {
	rows, cols := probs.Dims()

	var loss float64
	grad := mat.NewDense(rows, cols, nil)
	inv := 1.0 / float64(rows)

	for i := 0; i < rows; i++ {
		p := probs.RawRowView(i)
		g := grad.RawRowView(i)
		y := labels[i]
		loss -= math.Log(math.Max(p[y], 1e-12))
		for j := 0; j < cols; j++ {
			g[j] = p[j] * inv
		}
		g[y] -= inv
	}

	return loss * inv, grad
}

// Accuracy returns the fraction of rows whose argmax matches the label.
func Accuracy(probs *mat.Dense, labels []int) float64 {
	rows, cols := probs.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		p := probs.RawRowView(i)
		best := 0
		for j := 1; j < cols; j++ {
			if p[j] > p[best] {
				best = j
			}
		}
		if best == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

// Argmax returns the predicted class index per row.
func Argmax(probs *mat.Dense) []int {
	rows, cols := probs.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		p := probs.RawRowView(i)
		for j := 1; j < cols; j++ {
			if p[j] > p[out[i]] {
				out[i] = j
			}
		}
	}
	return out
}
