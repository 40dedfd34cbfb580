package watermark

import (
	"fmt"
	"image"

	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// GenerateRequest describes a synthetic carrier to write to disk.
type GenerateRequest struct {
	OutputPath string
	Pattern    imaging.Pattern
	Width      int
	Height     int
	Seed       int64
	// Depth is 8 or 16 for rasters and ignored for images.
	Depth int
}

// GenerateResult describes a written test carrier.
type GenerateResult struct {
	OutputPath string          `json:"output_path"`
	Kind       imaging.Kind    `json:"kind"`
	Pattern    imaging.Pattern `json:"pattern"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Depth      int             `json:"depth"`
	Seed       int64           `json:"seed"`
}

// Generate writes a synthetic carrier. The output extension decides the
// kind: TIFF paths get a single-band raster, everything else a grayscale
// image.
func (s *Service) Generate(req GenerateRequest) (*GenerateResult, error) {
	if req.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	kind, err := imaging.RequireSupported(req.OutputPath)
	if err != nil {
		return nil, err
	}
	res := &GenerateResult{
		OutputPath: req.OutputPath,
		Kind:       kind,
		Pattern:    req.Pattern,
		Width:      req.Width,
		Height:     req.Height,
		Seed:       req.Seed,
		Depth:      8,
	}
	if res.Pattern == "" {
		res.Pattern = DefaultTestPattern
	}
	if res.Width <= 0 {
		res.Width = DefaultTestSize
	}
	if res.Height <= 0 {
		res.Height = DefaultTestSize
	}

	var img image.Image
	if kind == imaging.KindRaster {
		if req.Depth != 0 {
			res.Depth = req.Depth
		}
		img, err = imaging.GenerateRaster(res.Pattern, res.Width, res.Height, res.Seed, res.Depth)
	} else {
		img, err = imaging.GenerateImage(res.Pattern, res.Width, res.Height, res.Seed)
	}
	if err != nil {
		return nil, err
	}
	if err := imaging.SaveImage(img, req.OutputPath, imaging.DefaultJPEGQuality); err != nil {
		return nil, err
	}
	s.cache.Evict(req.OutputPath)
	return res, nil
}
