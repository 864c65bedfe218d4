package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Elementwise helpers over gonum matrices. All return fresh matrices
// unless documented otherwise.

func sigmoid(z *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	}, z)
	return &out
}

func tanhM(z *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Tanh(v)
	}, z)
	return &out
}

func hadamard(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

func addM(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(a, b)
	return &out
}

func matmul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

// addRow adds a 1×N row vector to every row of m, in place.
func addRow(m *mat.Dense, row *mat.Dense) {
	rows, cols := m.Dims()
	r := row.RawRowView(0)
	for i := 0; i < rows; i++ {
		v := m.RawRowView(i)
		for j := 0; j < cols; j++ {
			v[j] += r[j]
		}
	}
}

// colSums returns the 1×N column sums of m.
func colSums(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(1, cols, nil)
	acc := out.RawRowView(0)
	for i := 0; i < rows; i++ {
		v := m.RawRowView(i)
		for j := 0; j < cols; j++ {
			acc[j] += v[j]
		}
	}
	return out
}

// hstack concatenates two matrices with equal row counts side by side.
func hstack(a, b *mat.Dense) *mat.Dense {
	rows, ac := a.Dims()
	_, bc := b.Dims()
	out := mat.NewDense(rows, ac+bc, nil)
	for i := 0; i < rows; i++ {
		copy(out.RawRowView(i)[:ac], a.RawRowView(i))
		copy(out.RawRowView(i)[ac:], b.RawRowView(i))
	}
	return out
}

// splitCols returns copies of m's column ranges [0,at) and [at,cols).
func splitCols(m *mat.Dense, at int) (*mat.Dense, *mat.Dense) {
	rows, cols := m.Dims()
	left := mat.NewDense(rows, at, nil)
	right := mat.NewDense(rows, cols-at, nil)
	for i := 0; i < rows; i++ {
		copy(left.RawRowView(i), m.RawRowView(i)[:at])
		copy(right.RawRowView(i), m.RawRowView(i)[at:])
	}
	return left, right
}

// colSlice returns a copy of m's columns [from,to).
func colSlice(m *mat.Dense, from, to int) *mat.Dense {
	rows, _ := m.Dims()
	out := mat.NewDense(rows, to-from, nil)
	for i := 0; i < rows; i++ {
		copy(out.RawRowView(i), m.RawRowView(i)[from:to])
	}
	return out
}

// reverseSteps returns the sequence in reverse timestep order without
// copying the matrices.
func reverseSteps(steps []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(steps))
	for i, s := range steps {
		out[len(steps)-1-i] = s
	}
	return out
}

// softmaxRows applies a numerically stable row-wise softmax.
func softmaxRows(z *mat.Dense) *mat.Dense {
	rows, cols := z.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		in := z.RawRowView(i)
		o := out.RawRowView(i)
		maxV := in[0]
		for _, v := range in[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sum float64
		for j, v := range in {
			o[j] = math.Exp(v - maxV)
			sum += o[j]
		}
		for j := range o {
			o[j] /= sum
		}
	}
	return out
}
