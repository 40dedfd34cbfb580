package watermark

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// Defaults for a round trip on a generated carrier.
const (
	DefaultTestSize    = 256
	DefaultTestPattern = imaging.PatternNatural
	DefaultTestText    = "TEST123"
)

// RoundTripRequest describes an in-memory embed, attack and extract.
//
// When InputPath is empty a carrier is generated from Pattern, Width,
// Height and Seed. Nothing is written to disk.
type RoundTripRequest struct {
	InputPath string
	Pattern   imaging.Pattern
	Width     int
	Height    int
	Seed      int64

	Text    string
	Profile string
	// Attacks are attack specs such as "none", "jpeg:75" or "blur:1".
	// Empty means "none" only.
	Attacks []string
}

// AttackOutcome is the result of extracting after one attack.
type AttackOutcome struct {
	Attack       string                 `json:"attack"`
	Extracted    string                 `json:"extracted"`
	Match        bool                   `json:"match"`
	BytesMatched int                    `json:"bytes_matched"`
	BytesTotal   int                    `json:"bytes_total"`
	Frame        codec.Decoded          `json:"frame"`
	Quality      *imaging.QualityReport `json:"quality"`
}

// RoundTripResult is the outcome of a round-trip test.
type RoundTripResult struct {
	Source       string            `json:"source"`
	Kind         imaging.Kind      `json:"kind"`
	Profile      string            `json:"profile"`
	Text         string            `json:"text"`
	Embed        *codec.EmbedStats `json:"embed"`
	Outcomes     []AttackOutcome   `json:"outcomes"`
	Passed       int               `json:"passed"`
	ProcessingMS int64             `json:"processing_ms"`
}

// RoundTrip embeds req.Text, applies each attack to the rendered output and
// extracts again, reporting how much of the payload survived. Attacks other
// than "none" apply to images only.
func (s *Service) RoundTrip(ctx context.Context, req RoundTripRequest) (*RoundTripResult, error) {
	start := time.Now()
	text := req.Text
	if text == "" {
		text = DefaultTestText
	}
	attacks := make([]imaging.Attack, 0, len(req.Attacks))
	for _, spec := range req.Attacks {
		a, err := imaging.ParseAttack(spec)
		if err != nil {
			return nil, err
		}
		attacks = append(attacks, a)
	}
	if len(attacks) == 0 {
		attacks = append(attacks, imaging.Attack{Kind: imaging.AttackNone})
	}

	src, source, err := s.roundTripSource(req)
	if err != nil {
		return nil, err
	}
	if src.kind == imaging.KindRaster {
		for _, a := range attacks {
			if a.Kind != imaging.AttackNone {
				return nil, fmt.Errorf("attack %s applies to images only", a)
			}
		}
	}

	profile, c, err := s.profileFor(req.Profile, src.kind)
	if err != nil {
		return nil, err
	}
	marked, stats, err := c.Embed(ctx, src.samples, text)
	if err != nil {
		return nil, err
	}
	rendered, err := src.render(marked)
	if err != nil {
		return nil, err
	}

	result := &RoundTripResult{
		Source:  source,
		Kind:    src.kind,
		Profile: profile,
		Text:    text,
		Embed:   stats,
	}
	chars := len([]rune(text))
	for _, a := range attacks {
		attacked, err := a.Apply(rendered)
		if err != nil {
			return nil, err
		}
		outcome, err := s.extractAttacked(ctx, c, src.kind, attacked, text, chars)
		if err != nil {
			return nil, err
		}
		outcome.Attack = a.String()
		if outcome.Quality, err = src.quality(attacked); err != nil {
			return nil, err
		}
		if outcome.Match {
			result.Passed++
		}
		result.Outcomes = append(result.Outcomes, *outcome)
	}
	result.ProcessingMS = time.Since(start).Milliseconds()
	return result, nil
}

func (s *Service) roundTripSource(req RoundTripRequest) (*carrier, string, error) {
	if req.InputPath != "" {
		src, err := s.load(req.InputPath)
		return src, req.InputPath, err
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = DefaultTestPattern
	}
	w, h := req.Width, req.Height
	if w <= 0 {
		w = DefaultTestSize
	}
	if h <= 0 {
		h = DefaultTestSize
	}
	img, err := imaging.GenerateImage(pattern, w, h, req.Seed)
	if err != nil {
		return nil, "", err
	}
	src, err := fromImage(imaging.KindImage, img)
	return src, fmt.Sprintf("generated:%s:%dx%d", pattern, w, h), err
}

func (s *Service) extractAttacked(ctx context.Context, c *codec.Codec, kind imaging.Kind, img image.Image, want string, chars int) (*AttackOutcome, error) {
	back, err := fromImage(kind, img)
	if err != nil {
		return nil, err
	}
	res, err := c.Extract(ctx, back.samples, chars)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("extract after attack: %w", err)
	}
	matched, total := compareBytes(want, res.Text)
	return &AttackOutcome{
		Extracted:    res.Text,
		Match:        res.Text == want,
		BytesMatched: matched,
		BytesTotal:   total,
		Frame:        res.Frame,
	}, nil
}

// compareBytes counts positions where got has the same UTF-8 byte as want.
func compareBytes(want, got string) (matched, total int) {
	w, g := []byte(want), []byte(got)
	for i := range w {
		if i < len(g) && g[i] == w[i] {
			matched++
		}
	}
	return matched, len(w)
}
