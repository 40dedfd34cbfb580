package codec

import "fmt"

// Grid is the read side of a single-channel sample buffer. Anything that can
// report its dimensions and return a scalar sample per coordinate can be
// watermarked or scanned.
type Grid interface {
	Width() int
	Height() int
	At(x, y int) float64
}

// Carrier is a single-channel 2D grid of float samples stored row-major.
//
// The codec never interprets the samples: they may be 8-bit luma, 16-bit
// elevation values, or raw floating-point band data.
type Carrier struct {
	width   int
	height  int
	samples []float64
}

// NewCarrier allocates a zeroed carrier of the given dimensions.
func NewCarrier(width, height int) (*Carrier, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidCarrier, width, height)
	}
	return &Carrier{
		width:   width,
		height:  height,
		samples: make([]float64, width*height),
	}, nil
}

// CarrierFromSamples wraps an existing row-major sample slice. The slice is
// used directly, not copied.
func CarrierFromSamples(width, height int, samples []float64) (*Carrier, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidCarrier, width, height)
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d grid", ErrInvalidCarrier, len(samples), width, height)
	}
	return &Carrier{width: width, height: height, samples: samples}, nil
}

// CarrierFromGrid copies any Grid into a new Carrier.
func CarrierFromGrid(g Grid) (*Carrier, error) {
	if err := validateGrid(g); err != nil {
		return nil, err
	}
	c, err := NewCarrier(g.Width(), g.Height())
	if err != nil {
		return nil, err
	}
	if src, ok := g.(*Carrier); ok {
		copy(c.samples, src.samples)
		return c, nil
	}
	for y := 0; y < c.height; y++ {
		row := c.samples[y*c.width : (y+1)*c.width]
		for x := range row {
			row[x] = g.At(x, y)
		}
	}
	return c, nil
}

func (c *Carrier) Width() int  { return c.width }
func (c *Carrier) Height() int { return c.height }

// At returns the sample at (x, y). Coordinates are not bounds-checked beyond
// the slice index.
func (c *Carrier) At(x, y int) float64 {
	return c.samples[y*c.width+x]
}

// Set stores v at (x, y).
func (c *Carrier) Set(x, y int, v float64) {
	c.samples[y*c.width+x] = v
}

// Samples exposes the backing row-major slice.
func (c *Carrier) Samples() []float64 {
	return c.samples
}

// Clone returns a deep copy.
func (c *Carrier) Clone() *Carrier {
	out := &Carrier{width: c.width, height: c.height, samples: make([]float64, len(c.samples))}
	copy(out.samples, c.samples)
	return out
}

// BlockGrid is the partition of a carrier into non-overlapping N×N blocks.
// Trailing rows and columns that do not fill a block are never touched.
type BlockGrid struct {
	BlockSize int `json:"block_size"`
	Cols      int `json:"cols"`
	Rows      int `json:"rows"`
}

// NewBlockGrid computes the block partition for a width×height carrier.
func NewBlockGrid(width, height, blockSize int) BlockGrid {
	if blockSize <= 0 {
		return BlockGrid{BlockSize: blockSize}
	}
	return BlockGrid{BlockSize: blockSize, Cols: width / blockSize, Rows: height / blockSize}
}

// Total is the number of complete blocks.
func (g BlockGrid) Total() int {
	return g.Cols * g.Rows
}

// Origin returns the top-left sample coordinate of block i in row-major order.
func (g BlockGrid) Origin(i int) (x, y int) {
	return (i % g.Cols) * g.BlockSize, (i / g.Cols) * g.BlockSize
}

func validateGrid(g Grid) error {
	if g == nil {
		return fmt.Errorf("%w: nil carrier", ErrInvalidCarrier)
	}
	if c, ok := g.(*Carrier); ok && c == nil {
		return fmt.Errorf("%w: nil carrier", ErrInvalidCarrier)
	}
	if g.Width() <= 0 || g.Height() <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidCarrier, g.Width(), g.Height())
	}
	return nil
}
