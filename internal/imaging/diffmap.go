package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// DiffMapResult is a PNG heat map of where a watermark changed an image.
type DiffMapResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
	Amplify     float64 `json:"amplify"`
	MaxDiff     float64 `json:"max_diff"`
}

// DiffMap renders |Y'-Y| between original and marked as grayscale, scaled
// by amplify so that the small perturbations become visible. Both images
// must have the same size.
func DiffMap(original, marked image.Image, amplify float64) (*DiffMapResult, error) {
	if amplify <= 0 {
		amplify = 10
	}
	la, err := LumaCarrier(original)
	if err != nil {
		return nil, err
	}
	lb, err := LumaCarrier(marked)
	if err != nil {
		return nil, err
	}
	w, h := la.Width(), la.Height()
	if lb.Width() != w || lb.Height() != h {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, w, h, lb.Width(), lb.Height())
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	var maxDiff float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Abs(lb.At(x, y) - la.At(x, y))
			maxDiff = math.Max(maxDiff, d)
			out.SetGray(x, y, color.Gray{Y: clampByte(d * amplify)})
		}
	}

	preview := fitPreview(out)
	encoded, err := encodePNG(preview)
	if err != nil {
		return nil, err
	}
	return &DiffMapResult{
		Width:       preview.Bounds().Dx(),
		Height:      preview.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
		Amplify:     amplify,
		MaxDiff:     maxDiff,
	}, nil
}
