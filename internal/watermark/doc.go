// Package watermark embeds and extracts text watermarks in image and raster
// files.
//
// A Service routes each file by extension: pictures (PNG, JPEG, BMP, GIF)
// are watermarked in their luma channel with the image profile, and TIFF
// rasters in band 1 with the raster profile. Either can be overridden with
// any named profile. Every operation reports its processing time together
// with the codec's diagnostic counters, so callers can tell a capacity
// problem from a configuration mismatch.
package watermark
