package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/noise"
	"github.com/anthonynsimon/bild/perlin"
	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
)

// Pattern names a synthetic test carrier.
type Pattern string

const (
	// PatternGradient is (x+y) mod 256.
	PatternGradient Pattern = "gradient"
	// PatternCheckerboard alternates black and white 8×8 squares. Every
	// block is flat at an extreme, so adaptive selection rejects all of them.
	PatternCheckerboard Pattern = "checkerboard"
	// PatternNoise is uniform random noise. It differs on every call.
	PatternNoise Pattern = "noise"
	// PatternNatural is smooth seeded Perlin terrain with mild texture,
	// resembling a photograph or a DEM.
	PatternNatural Pattern = "natural"
)

// Patterns lists the known patterns.
func Patterns() []string {
	names := []string{string(PatternGradient), string(PatternCheckerboard), string(PatternNoise), string(PatternNatural)}
	sort.Strings(names)
	return names
}

// GenerateCarrier renders pattern as 8-bit samples.
func GenerateCarrier(pattern Pattern, width, height int, seed int64) (*codec.Carrier, error) {
	c, err := codec.NewCarrier(width, height)
	if err != nil {
		return nil, err
	}
	s := c.Samples()
	switch pattern {
	case PatternGradient:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				s[y*width+x] = float64((x + y) % 256)
			}
		}
	case PatternCheckerboard:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				s[y*width+x] = float64(((x/8 + y/8) % 2) * 255)
			}
		}
	case PatternNoise:
		img := noise.Generate(width, height, &noise.Options{Monochrome: true, NoiseFn: noise.Uniform})
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				s[y*width+x] = float64(img.Pix[y*img.Stride+x*4])
			}
		}
	case PatternNatural:
		p := perlin.NewPerlin(2, 2, 3, seed)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := 128 + 70*p.Noise2D(float64(x)/48, float64(y)/48) +
					12*math.Sin(float64(x)/3.1)*math.Cos(float64(y)/2.7)
				s[y*width+x] = math.Round(math.Max(0, math.Min(255, v)))
			}
		}
	default:
		return nil, fmt.Errorf("unknown pattern %q", pattern)
	}
	return c, nil
}

// GenerateImage renders pattern as an 8-bit grayscale image.
func GenerateImage(pattern Pattern, width, height int, seed int64) (image.Image, error) {
	c, err := GenerateCarrier(pattern, width, height, seed)
	if err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(c.At(x, y))})
		}
	}
	return img, nil
}

// GenerateRaster renders pattern as a single-band raster. At depth 16 the
// pattern is offset by 1000, like elevations in metres.
func GenerateRaster(pattern Pattern, width, height int, seed int64, depth int) (image.Image, error) {
	if depth != 8 && depth != 16 {
		return nil, fmt.Errorf("unsupported raster depth %d: want 8 or 16", depth)
	}
	c, err := GenerateCarrier(pattern, width, height, seed)
	if err != nil {
		return nil, err
	}
	if depth == 16 {
		s := c.Samples()
		for i := range s {
			s[i] += 1000
		}
	}
	return GrayRaster(c, depth), nil
}
