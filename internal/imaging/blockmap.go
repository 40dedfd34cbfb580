package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
)

// MaxPreviewSize bounds the longer edge of rendered previews.
const MaxPreviewSize = 1024

// Block map tints.
var (
	tintCarrying = color.NRGBA{0, 200, 0, 90}
	tintSpare    = color.NRGBA{0, 90, 255, 70}
	tintSkipped  = color.NRGBA{255, 0, 0, 90}
)

// BlockMapResult is a PNG preview of how a carrier's blocks are used.
type BlockMapResult struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ImageBase64    string `json:"image_base64"`
	MimeType       string `json:"mime_type"`
	BlockSize      int    `json:"block_size"`
	BlocksTotal    int    `json:"blocks_total"`
	BlocksSuitable int    `json:"blocks_suitable"`
	BlocksCarrying int    `json:"blocks_carrying"`
}

// BlockMap draws the block grid over img and tints every block: green for
// the first carrying blocks of selected (those that hold payload bits), blue
// for suitable blocks left spare, red for blocks the selector skipped.
// Trailing partial blocks are left as they are. Previews larger than
// MaxPreviewSize are scaled down.
func BlockMap(img image.Image, grid codec.BlockGrid, selected []int, carrying int, gridColorHex string) (*BlockMapResult, error) {
	if grid.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid block size %d", grid.BlockSize)
	}
	gridColor, err := parseHexColor(gridColorHex)
	if err != nil {
		gridColor = color.RGBA{255, 255, 0, 160}
	}
	carrying = max(0, min(carrying, len(selected)))

	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Rect, img, bounds.Min, draw.Src)

	state := make([]color.NRGBA, grid.Total())
	for i := range state {
		state[i] = tintSkipped
	}
	for i, b := range selected {
		if b < 0 || b >= len(state) {
			return nil, fmt.Errorf("block index %d outside %d-block grid", b, len(state))
		}
		if i < carrying {
			state[b] = tintCarrying
		} else {
			state[b] = tintSpare
		}
	}

	n := grid.BlockSize
	for i, tint := range state {
		x0, y0 := grid.Origin(i)
		r := image.Rect(x0, y0, x0+n, y0+n)
		draw.Draw(result, r, image.NewUniform(tint), image.Point{}, draw.Over)
	}

	cov := image.Rect(0, 0, grid.Cols*n, grid.Rows*n)
	for x := 0; x <= cov.Max.X && x < result.Rect.Dx(); x += n {
		for y := 0; y < cov.Max.Y; y++ {
			result.Set(x, y, gridColor)
		}
	}
	for y := 0; y <= cov.Max.Y && y < result.Rect.Dy(); y += n {
		for x := 0; x < cov.Max.X; x++ {
			result.Set(x, y, gridColor)
		}
	}

	preview := fitPreview(result)
	encoded, err := encodePNG(preview)
	if err != nil {
		return nil, err
	}
	return &BlockMapResult{
		Width:          preview.Bounds().Dx(),
		Height:         preview.Bounds().Dy(),
		ImageBase64:    encoded,
		MimeType:       "image/png",
		BlockSize:      n,
		BlocksTotal:    grid.Total(),
		BlocksSuitable: len(selected),
		BlocksCarrying: carrying,
	}, nil
}

func fitPreview(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxPreviewSize && b.Dy() <= MaxPreviewSize {
		return img
	}
	return imaging.Fit(img, MaxPreviewSize, MaxPreviewSize, imaging.Box)
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
