// Package config provides the named codec profiles and loads overrides for
// them from YAML.
//
// Three profiles are built in:
//
//   - image: differential embedding tuned for 8-bit photographs, with
//     adaptive block selection
//   - raster: additive embedding for single-band scientific rasters, every
//     block used
//   - robust: a stronger differential profile for carriers that will be
//     recompressed or blurred
//
// A profile file may adjust any of these or define new ones:
//
//	default: image
//	profiles:
//	  image:
//	    strength: 40
//	  archive:
//	    base: robust
//	    repetition_count: 11
//
// Keys left out of an override keep the value of the profile it is based
// on. Every profile is validated after merging.
package config
