package imaging

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"golang.org/x/image/tiff"
)

// Raster is band 1 of a TIFF raster as raw samples.
//
// Grayscale rasters are used as they are. For multi-band rasters the first
// band (red in the decoded colour model) carries the watermark and the other
// bands pass through untouched. 16-bit rasters keep their full range.
type Raster struct {
	Carrier *codec.Carrier
	Depth   int // bits per sample, 8 or 16
	Bands   int
	src     image.Image
}

// MaxValue is the largest sample the raster's depth can store.
func (r *Raster) MaxValue() float64 {
	if r.Depth == 16 {
		return math.MaxUint16
	}
	return math.MaxUint8
}

// ReadRaster decodes the TIFF at path.
func ReadRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()
	return DecodeRaster(bufio.NewReader(f))
}

// DecodeRaster decodes a TIFF stream.
func DecodeRaster(r io.Reader) (*Raster, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode raster: %w", err)
	}
	return RasterFromImage(img)
}

// RasterFromImage takes band 1 of an already decoded image.
func RasterFromImage(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil raster", codec.ErrInvalidCarrier)
	}
	b := img.Bounds()
	carrier, err := codec.NewCarrier(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	r := &Raster{Carrier: carrier, Depth: 8, Bands: 3, src: img}
	samples := carrier.Samples()
	w := b.Dx()

	switch src := img.(type) {
	case *image.Gray:
		r.Bands = 1
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < w; x++ {
				samples[y*w+x] = float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.Gray16:
		r.Bands, r.Depth = 1, 16
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < w; x++ {
				samples[y*w+x] = float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	default:
		switch img.(type) {
		case *image.RGBA64, *image.NRGBA64:
			r.Depth = 16
		}
		if hasAlphaModel(img) {
			r.Bands = 4
		}
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				if r.Depth == 16 {
					samples[y*w+x] = float64(c.R)
				} else {
					samples[y*w+x] = float64(c.R >> 8)
				}
			}
		}
	}
	return r, nil
}

func hasAlphaModel(img image.Image) bool {
	switch img.ColorModel() {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return true
	}
	return false
}

// Image builds the output raster with band 1 replaced by marked. Samples are
// rounded and clamped to the raster's depth.
func (r *Raster) Image(marked codec.Grid) (image.Image, error) {
	w, h := r.Carrier.Width(), r.Carrier.Height()
	if marked == nil || marked.Width() != w || marked.Height() != h {
		return nil, fmt.Errorf("%w: band does not match %dx%d raster", codec.ErrInvalidCarrier, w, h)
	}
	rect := image.Rect(0, 0, w, h)
	maxV := r.MaxValue()

	switch {
	case r.Bands == 1 && r.Depth == 8:
		out := image.NewGray(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray(x, y, color.Gray{Y: uint8(clampSample(marked.At(x, y), maxV))})
			}
		}
		return out, nil
	case r.Bands == 1:
		out := image.NewGray16(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray16(x, y, color.Gray16{Y: uint16(clampSample(marked.At(x, y), maxV))})
			}
		}
		return out, nil
	}

	b := r.src.Bounds()
	if r.Depth == 8 {
		out := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(r.src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				c.R = uint8(clampSample(marked.At(x, y), maxV))
				out.SetNRGBA(x, y, c)
			}
		}
		return out, nil
	}
	out := image.NewNRGBA64(rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(r.src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			c.R = uint16(clampSample(marked.At(x, y), maxV))
			out.SetNRGBA64(x, y, c)
		}
	}
	return out, nil
}

func clampSample(v, maxV float64) float64 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > maxV {
		return maxV
	}
	return v
}

// GrayRaster converts a carrier to a single-band raster image of the given
// depth.
func GrayRaster(c *codec.Carrier, depth int) image.Image {
	r := &Raster{Carrier: c, Depth: depth, Bands: 1}
	img, _ := r.Image(c)
	return img
}

// WriteRaster encodes img as a deflate-compressed TIFF at path. GeoTIFF
// tags of the source are not carried over.
func WriteRaster(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create raster: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode raster: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write raster: %w", err)
	}
	return f.Close()
}
