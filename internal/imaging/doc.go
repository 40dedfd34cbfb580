// Package imaging is the file and pixel layer around the watermark codec.
//
// It decodes and caches carrier files and classifies them by extension as
// images or rasters. It turns them into single-channel sample grids and back:
//
//   - Images: the BT.601 luma Y = 0.299R + 0.587G + 0.114B is split off as
//     the carrier. After embedding, the luma change of each pixel is added
//     equally to R, G and B, so chroma is untouched.
//   - Rasters: band 1 of a TIFF is used directly at its native 8- or 16-bit
//     depth.
//
// The package also measures distortion (PSNR, maximum change, CIEDE2000
// colour difference), simulates attacks (JPEG recompression, Gaussian blur),
// generates synthetic test carriers, and renders PNG previews of block usage
// and of the per-pixel change.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Blocks are numbered
// row-major from the top-left.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and return new images rather than modifying their inputs.
package imaging
