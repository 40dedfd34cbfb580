package codec

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func randomBlock(rng *rand.Rand, n int) *mat.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = rng.Float64() * 255
	}
	return mat.NewDense(n, n, data)
}

func TestTransformRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{2, 4, 8, 16} {
		tr := NewTransform(n)
		block := randomBlock(rng, n)
		back := tr.Inverse(tr.Forward(block))
		if !mat.EqualApprox(block, back, 1e-9) {
			t.Errorf("n=%d: inverse(forward(x)) differs from x", n)
		}
	}
}

func TestTransformConstantBlock(t *testing.T) {
	tr := NewTransform(8)
	block := mat.NewDense(8, 8, nil)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			block.Set(r, c, 100)
		}
	}
	coeffs := tr.Forward(block)
	if dc := coeffs.At(0, 0); math.Abs(dc-800) > 1e-9 {
		t.Errorf("DC = %v, want 800", dc)
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if r == 0 && c == 0 {
				continue
			}
			if v := coeffs.At(r, c); math.Abs(v) > 1e-9 {
				t.Errorf("AC(%d,%d) = %v, want 0", r, c, v)
			}
		}
	}
}

func TestTransformPreservesEnergy(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tr := NewTransform(8)
	block := randomBlock(rng, 8)
	coeffs := tr.Forward(block)

	energy := func(m *mat.Dense) float64 {
		var e float64
		for _, v := range m.RawMatrix().Data {
			e += v * v
		}
		return e
	}
	if a, b := energy(block), energy(coeffs); math.Abs(a-b) > 1e-6*a {
		t.Errorf("energy not preserved: samples %v, coefficients %v", a, b)
	}
}

func TestTransformIntoMatchesAllocating(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tr := NewTransform(8)
	ws := newWorkspace(8)
	block := randomBlock(rng, 8)

	tr.forwardInto(ws.coeffs, ws.tmp, block)
	if !mat.EqualApprox(ws.coeffs, tr.Forward(block), 1e-12) {
		t.Error("forwardInto differs from Forward")
	}
	tr.inverseInto(ws.samples, ws.tmp, ws.coeffs)
	if !mat.EqualApprox(ws.samples, block, 1e-9) {
		t.Error("inverseInto did not reconstruct the block")
	}
}

func TestWorkspaceLoadStore(t *testing.T) {
	c, err := NewCarrier(16, 16)
	if err != nil {
		t.Fatalf("NewCarrier: %v", err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c.Set(x, y, float64(y*16+x))
		}
	}
	ws := newWorkspace(8)
	ws.load(c, 8, 8)
	if got := ws.samples.At(0, 0); got != float64(8*16+8) {
		t.Errorf("load top-left = %v, want %v", got, 8*16+8)
	}
	if got := ws.samples.At(7, 7); got != float64(15*16+15) {
		t.Errorf("load bottom-right = %v, want %v", got, 15*16+15)
	}

	ws.samples.Set(0, 0, -1)
	ws.store(c, 8, 8)
	if got := c.At(8, 8); got != -1 {
		t.Errorf("store wrote %v, want -1", got)
	}
	if got := c.At(7, 8); got != float64(8*16+7) {
		t.Errorf("store touched neighbouring block: %v", got)
	}
}
