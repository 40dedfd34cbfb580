package imaging

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// AttackKind names a distortion applied between embedding and extraction.
type AttackKind string

const (
	AttackNone AttackKind = "none"
	AttackJPEG AttackKind = "jpeg"
	AttackBlur AttackKind = "blur"
)

const (
	defaultAttackQuality = 75
	defaultBlurRadius    = 1.0
)

// Attack is a parsed distortion: "none", "jpeg[:quality]" or
// "blur[:radius]".
type Attack struct {
	Kind    AttackKind `json:"kind"`
	Quality int        `json:"quality,omitempty"`
	Radius  float64    `json:"radius,omitempty"`
}

// ParseAttack parses an attack spec. The empty string is "none".
func ParseAttack(s string) (Attack, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(strings.ToLower(s)), ":")
	switch AttackKind(name) {
	case "", AttackNone:
		return Attack{Kind: AttackNone}, nil
	case AttackJPEG:
		a := Attack{Kind: AttackJPEG, Quality: defaultAttackQuality}
		if hasArg {
			q, err := strconv.Atoi(arg)
			if err != nil || q < 1 || q > 100 {
				return Attack{}, fmt.Errorf("invalid jpeg quality %q: want 1-100", arg)
			}
			a.Quality = q
		}
		return a, nil
	case AttackBlur:
		a := Attack{Kind: AttackBlur, Radius: defaultBlurRadius}
		if hasArg {
			r, err := strconv.ParseFloat(arg, 64)
			if err != nil || r <= 0 {
				return Attack{}, fmt.Errorf("invalid blur radius %q: want a positive number", arg)
			}
			a.Radius = r
		}
		return a, nil
	}
	return Attack{}, fmt.Errorf("unknown attack %q: want none, jpeg[:quality] or blur[:radius]", s)
}

func (a Attack) String() string {
	switch a.Kind {
	case AttackJPEG:
		return fmt.Sprintf("jpeg:%d", a.Quality)
	case AttackBlur:
		return "blur:" + strconv.FormatFloat(a.Radius, 'g', -1, 64)
	}
	return string(AttackNone)
}

// Apply returns the distorted image. AttackNone returns img unchanged.
func (a Attack) Apply(img image.Image) (image.Image, error) {
	switch a.Kind {
	case AttackJPEG:
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(a.Quality)); err != nil {
			return nil, fmt.Errorf("jpeg attack: %w", err)
		}
		out, err := imaging.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("jpeg attack: %w", err)
		}
		return out, nil
	case AttackBlur:
		return blur.Gaussian(img, a.Radius), nil
	}
	return img, nil
}
