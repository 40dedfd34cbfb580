package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/lucasb-eyer/go-colorful"
)

// MaxPSNR is reported for identical inputs, whose true PSNR is infinite.
const MaxPSNR = 100.0

// QualityReport measures the distortion a watermark introduced.
type QualityReport struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// PSNR is the peak signal-to-noise ratio in dB over luma (or band 1 for
	// rasters), capped at MaxPSNR.
	PSNR float64 `json:"psnr_db"`
	MSE  float64 `json:"mse"`

	// MaxDiff is the largest absolute per-sample change.
	MaxDiff float64 `json:"max_diff"`

	ChangedSamples int     `json:"changed_samples"`
	ChangedPercent float64 `json:"changed_percent"`

	// MeanDeltaE and MaxDeltaE are CIEDE2000 colour differences over all
	// pixels. Zero for raster comparisons.
	MeanDeltaE float64 `json:"mean_delta_e"`
	MaxDeltaE  float64 `json:"max_delta_e"`
}

// Compare measures the difference between an original image and its
// watermarked copy. Both must have the same dimensions.
func Compare(original, marked image.Image) (*QualityReport, error) {
	a, b := imaging.Clone(original), imaging.Clone(marked)
	if a.Rect.Dx() != b.Rect.Dx() || a.Rect.Dy() != b.Rect.Dy() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, a.Rect.Dx(), a.Rect.Dy(), b.Rect.Dx(), b.Rect.Dy())
	}
	la, err := LumaCarrier(a)
	if err != nil {
		return nil, err
	}
	lb, err := LumaCarrier(b)
	if err != nil {
		return nil, err
	}
	report, err := CompareCarriers(la, lb, 255)
	if err != nil {
		return nil, err
	}

	w, h := a.Rect.Dx(), a.Rect.Dy()
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*a.Stride + x*4
			pa, pb := a.Pix[i:i+4], b.Pix[i:i+4]
			if pa[0] == pb[0] && pa[1] == pb[1] && pa[2] == pb[2] {
				continue
			}
			ca := colorful.Color{R: float64(pa[0]) / 255, G: float64(pa[1]) / 255, B: float64(pa[2]) / 255}
			cb := colorful.Color{R: float64(pb[0]) / 255, G: float64(pb[1]) / 255, B: float64(pb[2]) / 255}
			d := ca.DistanceCIEDE2000(cb)
			sum += d
			report.MaxDeltaE = math.Max(report.MaxDeltaE, d)
		}
	}
	report.MeanDeltaE = sum / float64(w*h)
	return report, nil
}

// CompareCarriers computes PSNR and change statistics between two sample
// grids whose values range over [0, peak].
func CompareCarriers(original, marked *codec.Carrier, peak float64) (*QualityReport, error) {
	if original == nil || marked == nil {
		return nil, fmt.Errorf("%w: nil carrier", codec.ErrInvalidCarrier)
	}
	w, h := original.Width(), original.Height()
	if marked.Width() != w || marked.Height() != h {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, w, h, marked.Width(), marked.Height())
	}

	report := &QualityReport{Width: w, Height: h}
	a, b := original.Samples(), marked.Samples()
	var sq float64
	for i := range a {
		d := math.Abs(a[i] - b[i])
		// sub-1e-9 differences are float noise from the luma weights
		if d < 1e-9 {
			continue
		}
		report.ChangedSamples++
		sq += d * d
		report.MaxDiff = math.Max(report.MaxDiff, d)
	}
	n := float64(len(a))
	report.MSE = sq / n
	report.ChangedPercent = 100 * float64(report.ChangedSamples) / n
	report.PSNR = PSNR(report.MSE, peak)
	return report, nil
}

// PSNR converts a mean squared error into dB for the given peak value.
func PSNR(mse, peak float64) float64 {
	if mse <= 0 {
		return MaxPSNR
	}
	return math.Min(MaxPSNR, 10*math.Log10(peak*peak/mse))
}
