package imaging

import "errors"

var (
	// ErrUnsupportedFormat is returned for files whose extension is not a
	// supported image or raster format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrSizeMismatch is returned when two images that must be compared
	// pixel for pixel have different bounds.
	ErrSizeMismatch = errors.New("image sizes differ")
)
