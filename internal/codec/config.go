package codec

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// StrategyKind selects how a bit is written into a block's coefficients.
type StrategyKind string

const (
	// StrategyDifferential encodes a bit as the ordering of coefficient pairs.
	StrategyDifferential StrategyKind = "differential"
	// StrategyAdditive pushes every configured coefficient toward the bit's sign.
	StrategyAdditive StrategyKind = "additive"
)

// SelectionPolicy selects which blocks may carry a bit.
type SelectionPolicy string

const (
	// SelectAll treats every complete block as suitable.
	SelectAll SelectionPolicy = "all"
	// SelectAdaptive skips flat blocks at the extremes of the sample range.
	SelectAdaptive SelectionPolicy = "adaptive"
)

// Position indexes a coefficient inside a transformed block.
type Position struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Selection holds the block selection policy and its thresholds.
type Selection struct {
	Policy      SelectionPolicy `yaml:"policy" json:"policy"`
	MinVariance float64         `yaml:"min_variance" json:"min_variance"`
	MinMean     float64         `yaml:"min_mean" json:"min_mean"`
	MaxMean     float64         `yaml:"max_mean" json:"max_mean"`
}

// Config is the complete embedding configuration. Embed and extract must be
// called with identical values for every field that participates in the
// fingerprint; a mismatch produces garbage text rather than an error.
type Config struct {
	BlockSize       int          `yaml:"block_size" json:"block_size"`
	Strength        float64      `yaml:"strength" json:"strength"`
	MaxModification float64      `yaml:"max_modification" json:"max_modification"`
	RepetitionCount int          `yaml:"repetition_count" json:"repetition_count"`
	Positions       []Position   `yaml:"positions" json:"positions"`
	Strategy        StrategyKind `yaml:"strategy" json:"strategy"`
	Selection       Selection    `yaml:"selection" json:"selection"`

	// MaxFrameLength is the sanity ceiling on a decoded length prefix.
	// Longer prefixes are treated as corrupt.
	MaxFrameLength int `yaml:"max_frame_length" json:"max_frame_length"`

	// BytesPerChar converts an expected character count into a byte budget
	// for extraction. UTF-8 text mixes 1-byte and 3-byte characters.
	BytesPerChar float64 `yaml:"bytes_per_char" json:"bytes_per_char"`

	// Workers bounds block-processing parallelism. Zero means runtime.NumCPU().
	Workers int `yaml:"workers" json:"workers"`
}

// Defaults shared by all built-in profiles.
const (
	DefaultBlockSize      = 8
	DefaultMaxFrameLength = 200
	DefaultBytesPerChar   = 2.5
	DefaultMinVariance    = 15.0
	DefaultMinMean        = 20.0
	DefaultMaxMean        = 235.0
)

// DefaultConfig returns the configuration used for 8-bit images: a single
// differential pair in the middle band, seven-fold repetition and adaptive
// block selection.
func DefaultConfig() Config {
	return Config{
		BlockSize:       DefaultBlockSize,
		Strength:        35,
		MaxModification: 40,
		RepetitionCount: 7,
		Positions:       []Position{{Row: 2, Col: 3}, {Row: 3, Col: 2}},
		Strategy:        StrategyDifferential,
		Selection:       DefaultSelection(SelectAdaptive),
		MaxFrameLength:  DefaultMaxFrameLength,
		BytesPerChar:    DefaultBytesPerChar,
	}
}

// DefaultSelection returns the selection thresholds for policy.
func DefaultSelection(policy SelectionPolicy) Selection {
	return Selection{
		Policy:      policy,
		MinVariance: DefaultMinVariance,
		MinMean:     DefaultMinMean,
		MaxMean:     DefaultMaxMean,
	}
}

// Clone returns a copy that does not share the Positions slice.
func (c Config) Clone() Config {
	out := c
	out.Positions = append([]Position(nil), c.Positions...)
	return out
}

// Validate checks the configuration for values the codec cannot honour.
func (c Config) Validate() error {
	if c.BlockSize < 2 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.Strength <= 0 {
		return fmt.Errorf("%w: strength must be positive, got %g", ErrInvalidConfig, c.Strength)
	}
	if c.MaxModification <= 0 {
		return fmt.Errorf("%w: max modification must be positive, got %g", ErrInvalidConfig, c.MaxModification)
	}
	if c.RepetitionCount < 1 || c.RepetitionCount%2 == 0 {
		return fmt.Errorf("%w: repetition count must be odd and positive, got %d", ErrInvalidConfig, c.RepetitionCount)
	}
	if len(c.Positions) == 0 {
		return fmt.Errorf("%w: no coefficient positions", ErrInvalidConfig)
	}
	seen := make(map[Position]bool, len(c.Positions))
	last := c.BlockSize - 1
	for _, p := range c.Positions {
		if p.Row < 0 || p.Col < 0 || p.Row > last || p.Col > last {
			return fmt.Errorf("%w: position %s outside %dx%d block", ErrInvalidConfig, p, c.BlockSize, c.BlockSize)
		}
		if p.Row == 0 && p.Col == 0 {
			return fmt.Errorf("%w: position %s is the DC term", ErrInvalidConfig, p)
		}
		if p.Row == last && p.Col == last {
			return fmt.Errorf("%w: position %s is the highest-frequency corner", ErrInvalidConfig, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate position %s", ErrInvalidConfig, p)
		}
		seen[p] = true
	}
	switch c.Strategy {
	case StrategyDifferential:
		if len(c.Positions)%2 != 0 {
			return fmt.Errorf("%w: differential strategy needs position pairs, got %d positions", ErrInvalidConfig, len(c.Positions))
		}
	case StrategyAdditive:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	switch c.Selection.Policy {
	case SelectAll:
	case SelectAdaptive:
		if c.Selection.MinVariance < 0 {
			return fmt.Errorf("%w: negative variance floor %g", ErrInvalidConfig, c.Selection.MinVariance)
		}
		if c.Selection.MinMean > c.Selection.MaxMean {
			return fmt.Errorf("%w: mean band [%g,%g] is empty", ErrInvalidConfig, c.Selection.MinMean, c.Selection.MaxMean)
		}
	default:
		return fmt.Errorf("%w: unknown selection policy %q", ErrInvalidConfig, c.Selection.Policy)
	}
	if c.MaxFrameLength < 1 || c.MaxFrameLength > maxPayloadBytes {
		return fmt.Errorf("%w: frame length ceiling %d outside 1..%d", ErrInvalidConfig, c.MaxFrameLength, maxPayloadBytes)
	}
	if c.BytesPerChar < 1 {
		return fmt.Errorf("%w: bytes per character %g below 1", ErrInvalidConfig, c.BytesPerChar)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Fingerprint is a short digest of every field that an extractor must match.
// It is reported alongside results so mismatched embed/extract configurations
// can be spotted; it is never written into the carrier.
func (c Config) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "n=%d;s=%g;m=%g;r=%d;st=%s;", c.BlockSize, c.Strength, c.MaxModification, c.RepetitionCount, c.Strategy)
	for _, p := range c.Positions {
		fmt.Fprintf(&b, "p=%d,%d;", p.Row, p.Col)
	}
	fmt.Fprintf(&b, "sel=%s", c.Selection.Policy)
	if c.Selection.Policy == SelectAdaptive {
		fmt.Fprintf(&b, ",%g,%g,%g", c.Selection.MinVariance, c.Selection.MinMean, c.Selection.MaxMean)
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
