package imaging

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when saving JPEG output without an explicit
// quality.
const DefaultJPEGQuality = 95

// SaveImage writes img to path in the format implied by its extension.
// TIFF-family extensions, including .geotiff, go through WriteRaster.
func SaveImage(img image.Image, path string, jpegQuality int) error {
	check := CheckFormat(path)
	if !check.Supported {
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, path)
	}
	if check.Format == "tiff" {
		return WriteRaster(path, img)
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// DefaultOutputPath derives the output file for a watermarked copy of input:
// the same directory and base name with a "_watermarked" suffix. Lossy or
// palette inputs (JPEG, GIF) are written as PNG so the embedded bits survive
// the save.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".gif":
		ext = ".png"
	}
	return base + "_watermarked" + ext
}
