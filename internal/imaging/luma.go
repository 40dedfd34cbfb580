package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
)

// BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Luma returns the BT.601 luma of an 8-bit RGB triple.
func Luma(r, g, b uint8) float64 {
	return lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)
}

// LumaPlane is the luma channel of an image together with the pixels it was
// computed from, so that a modified luma can be merged back.
type LumaPlane struct {
	Carrier *codec.Carrier
	src     *image.NRGBA
}

// SplitLuma computes the unrounded BT.601 luma of img as a carrier.
func SplitLuma(img image.Image) (*LumaPlane, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", codec.ErrInvalidCarrier)
	}
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	carrier, err := codec.NewCarrier(w, h)
	if err != nil {
		return nil, err
	}
	samples := carrier.Samples()
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			samples[y*w+x] = Luma(p[0], p[1], p[2])
		}
	}
	return &LumaPlane{Carrier: carrier, src: src}, nil
}

// Merge writes a modified luma back into a copy of the source pixels. Each
// pixel's luma change is added equally to R, G and B, which leaves its
// chroma unchanged; the results are rounded and clamped to [0,255]. Alpha
// is preserved.
func (p *LumaPlane) Merge(marked codec.Grid) (*image.NRGBA, error) {
	w, h := p.Carrier.Width(), p.Carrier.Height()
	if marked == nil || marked.Width() != w || marked.Height() != h {
		return nil, fmt.Errorf("%w: merged luma does not match %dx%d image", codec.ErrInvalidCarrier, w, h)
	}
	out := imaging.Clone(p.src)
	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			d := marked.At(x, y) - p.Carrier.At(x, y)
			if d == 0 {
				continue
			}
			px := row[x*4 : x*4+3]
			for i := range px {
				px[i] = clampByte(float64(px[i]) + d)
			}
		}
	}
	return out, nil
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// LumaCarrier returns just the luma of img. It is used for measurements that
// do not need to merge anything back.
func LumaCarrier(img image.Image) (*codec.Carrier, error) {
	plane, err := SplitLuma(img)
	if err != nil {
		return nil, err
	}
	return plane.Carrier, nil
}
