package imaging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies a carrier file by how its samples are watermarked.
type Kind string

const (
	// KindImage is an 8-bit colour or grayscale picture. The watermark goes
	// into its luma channel.
	KindImage Kind = "image"
	// KindRaster is a single-band scientific raster such as a DEM. The
	// watermark goes into band 1 at full sample depth.
	KindRaster Kind = "raster"
	// KindUnknown is anything else.
	KindUnknown Kind = "unknown"
)

type formatInfo struct {
	kind      Kind
	name      string
	decodable bool
}

var formats = map[string]formatInfo{
	"jpg":     {KindImage, "jpeg", true},
	"jpeg":    {KindImage, "jpeg", true},
	"png":     {KindImage, "png", true},
	"bmp":     {KindImage, "bmp", true},
	"gif":     {KindImage, "gif", true},
	"tif":     {KindRaster, "tiff", true},
	"tiff":    {KindRaster, "tiff", true},
	"geotiff": {KindRaster, "tiff", true},
	"img":     {KindRaster, "erdas-img", false},
	"hdf":     {KindRaster, "hdf", false},
	"nc":      {KindRaster, "netcdf", false},
	"grib":    {KindRaster, "grib", false},
	"jp2":     {KindRaster, "jpeg2000", false},
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// DetectKind classifies path by its extension.
func DetectKind(path string) Kind {
	if f, ok := formats[extension(path)]; ok {
		return f.kind
	}
	return KindUnknown
}

// FormatCheck describes whether a file can be watermarked.
type FormatCheck struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Kind      Kind   `json:"kind"`
	Format    string `json:"format"`
	Supported bool   `json:"supported"`
	Reason    string `json:"reason,omitempty"`
}

// CheckFormat reports the kind and format of path and whether this package
// can decode it. The file is not opened.
func CheckFormat(path string) FormatCheck {
	ext := extension(path)
	check := FormatCheck{Path: path, Extension: ext, Kind: KindUnknown, Format: "unknown"}
	f, ok := formats[ext]
	if !ok {
		check.Reason = fmt.Sprintf("extension %q is not a known image or raster format", ext)
		return check
	}
	check.Kind = f.kind
	check.Format = f.name
	check.Supported = f.decodable
	if !f.decodable {
		check.Reason = fmt.Sprintf("%s rasters are recognised but no decoder is available; convert to GeoTIFF", f.name)
	}
	return check
}

// RequireSupported returns ErrUnsupportedFormat unless path is decodable.
func RequireSupported(path string) (Kind, error) {
	check := CheckFormat(path)
	if !check.Supported {
		return check.Kind, fmt.Errorf("%w: %s", ErrUnsupportedFormat, check.Reason)
	}
	return check.Kind, nil
}

// FormatList groups the known extensions by kind.
type FormatList struct {
	Image       []string `json:"image"`
	Raster      []string `json:"raster"`
	Unsupported []string `json:"recognised_without_decoder"`
}

// DescribeFormats lists every known extension.
func DescribeFormats() FormatList {
	var list FormatList
	for ext, f := range formats {
		switch {
		case !f.decodable:
			list.Unsupported = append(list.Unsupported, ext)
			list.Raster = append(list.Raster, ext)
		case f.kind == KindImage:
			list.Image = append(list.Image, ext)
		default:
			list.Raster = append(list.Raster, ext)
		}
	}
	sort.Strings(list.Image)
	sort.Strings(list.Raster)
	sort.Strings(list.Unsupported)
	return list
}
