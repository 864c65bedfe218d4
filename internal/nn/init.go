package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// glorotUniform fills p with samples from U(-limit, limit) where
// limit = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(p *Param, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	rows, cols := p.Value.Dims()
	for r := 0; r < rows; r++ {
		v := p.Value.RawRowView(r)
		for c := 0; c < cols; c++ {
			v[c] = (rng.Float64()*2.0 - 1.0) * limit
		}
	}
}

// orthogonal fills p with a (semi-)orthogonal matrix: the Q factor of
// the QR decomposition of a Gaussian matrix, sign-corrected by the
// diagonal of R so the distribution is uniform over orthogonal
// matrices.
func orthogonal(p *Param, rng *rand.Rand) {
	rows, cols := p.Value.Dims()
	n, m := rows, cols
	transposed := n < m
	if transposed {
		n, m = m, n
	}

	g := mat.NewDense(n, m, nil)
	for r := 0; r < n; r++ {
		v := g.RawRowView(r)
		for c := 0; c < m; c++ {
			v[c] = rng.NormFloat64()
		}
	}

	var qr mat.QR
	qr.Factorize(g)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	for c := 0; c < m; c++ {
		if r.At(c, c) < 0 {
			for i := 0; i < n; i++ {
				q.Set(i, c, -q.At(i, c))
			}
		}
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if transposed {
				p.Value.Set(i, j, q.At(j, i))
			} else {
				p.Value.Set(i, j, q.At(i, j))
			}
		}
	}
}

// unitForgetBias zeroes the bias and sets the forget-gate block to one.
// The bias layout is [i f g o], each block units wide.
func unitForgetBias(p *Param, units int) {
	p.Value.Zero()
	row := p.Value.RawRowView(0)
	for j := units; j < 2*units; j++ {
		row[j] = 1.0
	}
}
