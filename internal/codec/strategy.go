package codec

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// detectThresholdRatio sets the additive dead band at ±2% of strength.
	detectThresholdRatio = 0.02

	// minPushRatio is the smallest additive change, as a fraction of
	// strength, that counts as a push.
	minPushRatio = 0.8
)

// Strategy writes one bit into a block of transform coefficients and reads
// it back. Implementations touch only their configured positions and must
// be safe to call concurrently on distinct coefficient blocks.
type Strategy interface {
	EmbedBit(coeffs *mat.Dense, bit byte)
	DetectBit(coeffs mat.Matrix) byte
}

// NewStrategy builds the strategy named by cfg.Strategy. cfg must be valid.
func NewStrategy(cfg Config) (Strategy, error) {
	switch cfg.Strategy {
	case StrategyDifferential:
		pairs := make([][2]Position, 0, len(cfg.Positions)/2)
		for i := 0; i+1 < len(cfg.Positions); i += 2 {
			pairs = append(pairs, [2]Position{cfg.Positions[i], cfg.Positions[i+1]})
		}
		return &Differential{Pairs: pairs, Strength: cfg.Strength, MaxModification: cfg.MaxModification}, nil
	case StrategyAdditive:
		return &Additive{
			Positions:       append([]Position(nil), cfg.Positions...),
			Strength:        cfg.Strength,
			MaxModification: cfg.MaxModification,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, cfg.Strategy)
}

// Differential encodes a bit as an ordering: bit 1 means A > B for every
// pair (A, B), bit 0 means A < B.
//
// A pair in the wrong order is swapped first. The swap keeps the block's
// energy, and so its variance, unchanged. The pair is then pushed apart
// until the gap reaches Strength, each side moving at most MaxModification.
// The ordering is therefore always established even when the margin is cut
// short.
type Differential struct {
	Pairs           [][2]Position
	Strength        float64
	MaxModification float64
}

func (d *Differential) EmbedBit(coeffs *mat.Dense, bit byte) {
	for _, pair := range d.Pairs {
		hi, lo := pair[0], pair[1]
		if bit == 0 {
			hi, lo = lo, hi
		}
		u := coeffs.At(hi.Row, hi.Col)
		v := coeffs.At(lo.Row, lo.Col)
		if u < v {
			u, v = v, u
		}
		if gap := u - v; gap < d.Strength {
			push := (d.Strength - gap) / 2
			if push > d.MaxModification {
				push = d.MaxModification
			}
			u += push
			v -= push
		}
		coeffs.Set(hi.Row, hi.Col, u)
		coeffs.Set(lo.Row, lo.Col, v)
	}
}

func (d *Differential) DetectBit(coeffs mat.Matrix) byte {
	var diff float64
	for _, pair := range d.Pairs {
		diff += coeffs.At(pair[0].Row, pair[0].Col) - coeffs.At(pair[1].Row, pair[1].Col)
	}
	if diff > 0 {
		return 1
	}
	return 0
}

// Additive moves each configured coefficient onto the bit's side of zero:
// to +Strength for 1 and -Strength for 0. A coefficient that would move by
// less than 0.8×Strength in the bit's direction (it already sits at or
// beyond the target) is pushed a full Strength further out instead. Every
// change is clamped to ±MaxModification, so a large opposing coefficient may
// stay on the wrong side; the detector averages all positions and the
// repetition code absorbs what remains.
type Additive struct {
	Positions       []Position
	Strength        float64
	MaxModification float64
}

func (a *Additive) EmbedBit(coeffs *mat.Dense, bit byte) {
	dir := -1.0
	if bit == 1 {
		dir = 1.0
	}
	for _, p := range a.Positions {
		v := coeffs.At(p.Row, p.Col)
		change := dir*a.Strength - v
		if dir*change < minPushRatio*a.Strength {
			change = dir * a.Strength
		}
		if change > a.MaxModification {
			change = a.MaxModification
		} else if change < -a.MaxModification {
			change = -a.MaxModification
		}
		coeffs.Set(p.Row, p.Col, v+change)
	}
}

// DetectBit averages the configured coefficients. Scores outside the dead
// band decide directly; inside it the sign breaks the tie, so a bit is
// always produced.
func (a *Additive) DetectBit(coeffs mat.Matrix) byte {
	if len(a.Positions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range a.Positions {
		sum += coeffs.At(p.Row, p.Col)
	}
	score := sum / float64(len(a.Positions))
	threshold := a.Strength * detectThresholdRatio
	switch {
	case score > threshold:
		return 1
	case score < -threshold:
		return 0
	case score >= 0:
		return 1
	default:
		return 0
	}
}
