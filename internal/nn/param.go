package nn

import "gonum.org/v1/gonum/mat"

// Param is one trainable weight matrix with its accumulated gradient.
//
// Path is the weight's authoring-format name (for example
// "sequential/dense/kernel" or "forward_lstm/lstm_cell/kernel" for a
// wrapped directional sub-layer). Dims is the logical tensor shape the
// weight exports under; bias vectors are stored as 1×N matrices but
// export as [N].
type Param struct {
	Path  string
	Value *mat.Dense
	Grad  *mat.Dense
	Dims  []int
}

func newParam(path string, rows, cols int, dims []int) *Param {
	return &Param{
		Path:  path,
		Value: mat.NewDense(rows, cols, nil),
		Grad:  mat.NewDense(rows, cols, nil),
		Dims:  dims,
	}
}

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	p.Grad.Zero()
}

// Flat returns the weight values in row-major order.
func (p *Param) Flat() []float64 {
	rows, cols := p.Value.Dims()
	out := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		out = append(out, p.Value.RawRowView(r)...)
	}
	return out
}

// SetFlat overwrites the weight values from a row-major slice.
func (p *Param) SetFlat(values []float64) bool {
	rows, cols := p.Value.Dims()
	if len(values) != rows*cols {
		return false
	}
	for r := 0; r < rows; r++ {
		copy(p.Value.RawRowView(r), values[r*cols:(r+1)*cols])
	}
	return true
}
