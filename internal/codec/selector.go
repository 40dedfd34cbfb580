package codec

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Selector decides whether a sample block may carry a bit. Extraction
// recomputes the same predicate over the watermarked carrier, so embed and
// extract must use identical selectors.
type Selector interface {
	Suitable(block mat.Matrix) bool
}

// NewSelector builds the selector described by sel.
func NewSelector(sel Selection) Selector {
	if sel.Policy == SelectAdaptive {
		return Adaptive{MinVariance: sel.MinVariance, MinMean: sel.MinMean, MaxMean: sel.MaxMean}
	}
	return AllBlocks{}
}

// AllBlocks accepts every block, maximising capacity.
type AllBlocks struct{}

func (AllBlocks) Suitable(mat.Matrix) bool { return true }

// Adaptive rejects blocks that are both nearly flat and very dark or very
// bright. Perturbing those shows visible artifacts and yields weak
// coefficients for detection.
type Adaptive struct {
	MinVariance float64
	MinMean     float64
	MaxMean     float64
}

func (a Adaptive) Suitable(block mat.Matrix) bool {
	mean, variance := BlockStats(block)
	if variance >= a.MinVariance {
		return true
	}
	return mean >= a.MinMean && mean <= a.MaxMean
}

// BlockStats returns the mean and variance of a sample block.
func BlockStats(block mat.Matrix) (mean, variance float64) {
	var data []float64
	if d, ok := block.(*mat.Dense); ok {
		raw := d.RawMatrix()
		if raw.Stride == raw.Cols {
			data = raw.Data[:raw.Rows*raw.Cols]
		}
	}
	if data == nil {
		data = mat.DenseCopyOf(block).RawMatrix().Data
	}
	return stat.MeanVariance(data, nil)
}
