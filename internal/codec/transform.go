package codec

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform is an orthonormal two-dimensional DCT-II over N×N blocks.
//
// The 1D basis is
//
//	C[k][i] = s(k) * cos(pi * k * (2i+1) / 2N),  s(0) = sqrt(1/N), s(k>0) = sqrt(2/N)
//
// and because C is orthogonal the separable 2D transform is a pair of matrix
// products: Forward(X) = C·X·Cᵀ and Inverse(Y) = Cᵀ·Y·C. The basis is
// immutable after construction, so one Transform may be shared by any number
// of goroutines as long as each supplies its own destination and scratch.
type Transform struct {
	n     int
	basis *mat.Dense
}

// NewTransform builds the DCT basis for n×n blocks.
func NewTransform(n int) *Transform {
	basis := mat.NewDense(n, n, nil)
	s0 := math.Sqrt(1.0 / float64(n))
	sk := math.Sqrt(2.0 / float64(n))
	for k := 0; k < n; k++ {
		scale := sk
		if k == 0 {
			scale = s0
		}
		for i := 0; i < n; i++ {
			basis.Set(k, i, scale*math.Cos(math.Pi*float64(k)*float64(2*i+1)/(2*float64(n))))
		}
	}
	return &Transform{n: n, basis: basis}
}

// Size returns the block edge length N.
func (t *Transform) Size() int {
	return t.n
}

// Forward returns the DCT coefficients of an N×N sample block.
func (t *Transform) Forward(block mat.Matrix) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(t.basis, block)
	out.Mul(&tmp, t.basis.T())
	return &out
}

// Inverse reconstructs samples from an N×N coefficient block.
func (t *Transform) Inverse(coeffs mat.Matrix) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(t.basis.T(), coeffs)
	out.Mul(&tmp, t.basis)
	return &out
}

// forwardInto is Forward without allocation; dst, tmp and src must be
// distinct N×N matrices.
func (t *Transform) forwardInto(dst, tmp *mat.Dense, src mat.Matrix) {
	tmp.Mul(t.basis, src)
	dst.Mul(tmp, t.basis.T())
}

func (t *Transform) inverseInto(dst, tmp *mat.Dense, src mat.Matrix) {
	tmp.Mul(t.basis.T(), src)
	dst.Mul(tmp, t.basis)
}

// workspace is the per-worker scratch for one block: the sample block, its
// coefficients, and the intermediate product. It is reused across blocks and
// never shared between goroutines.
type workspace struct {
	n       int
	samples *mat.Dense
	coeffs  *mat.Dense
	tmp     *mat.Dense
}

func newWorkspace(n int) *workspace {
	return &workspace{
		n:       n,
		samples: mat.NewDense(n, n, nil),
		coeffs:  mat.NewDense(n, n, nil),
		tmp:     mat.NewDense(n, n, nil),
	}
}

// load copies the block whose top-left sample is (x0, y0) into ws.samples.
func (ws *workspace) load(g Grid, x0, y0 int) {
	raw := ws.samples.RawMatrix()
	if c, ok := g.(*Carrier); ok {
		for r := 0; r < ws.n; r++ {
			copy(raw.Data[r*raw.Stride:r*raw.Stride+ws.n], c.samples[(y0+r)*c.width+x0:])
		}
		return
	}
	for r := 0; r < ws.n; r++ {
		for col := 0; col < ws.n; col++ {
			raw.Data[r*raw.Stride+col] = g.At(x0+col, y0+r)
		}
	}
}

// store writes ws.samples back to the block at (x0, y0) of dst.
func (ws *workspace) store(dst *Carrier, x0, y0 int) {
	raw := ws.samples.RawMatrix()
	for r := 0; r < ws.n; r++ {
		copy(dst.samples[(y0+r)*dst.width+x0:(y0+r)*dst.width+x0+ws.n], raw.Data[r*raw.Stride:r*raw.Stride+ws.n])
	}
}
