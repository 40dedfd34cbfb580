package codec

import (
	"context"
	"runtime"
	"sync"
)

// cancelCheckInterval is how many blocks a worker processes between
// context checks.
const cancelCheckInterval = 64

// Codec embeds and extracts text payloads in single-channel carriers.
// A Codec is immutable and safe for concurrent use; it holds no state
// between calls.
type Codec struct {
	cfg         Config
	fingerprint string
	transform   *Transform
	framer      Framer
	strategy    Strategy
	selector    Selector
	workers     int
}

// New validates cfg and builds a Codec for it.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(cfg)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return &Codec{
		cfg:         cfg.Clone(),
		fingerprint: cfg.Fingerprint(),
		transform:   NewTransform(cfg.BlockSize),
		framer:      NewFramer(cfg),
		strategy:    strategy,
		selector:    NewSelector(cfg.Selection),
		workers:     workers,
	}, nil
}

// Config returns a copy of the codec's configuration.
func (c *Codec) Config() Config {
	return c.cfg.Clone()
}

// Fingerprint returns the configuration fingerprint reported in stats.
func (c *Codec) Fingerprint() string {
	return c.fingerprint
}

// EmbedStats describes a completed or rejected embed.
type EmbedStats struct {
	Grid           BlockGrid `json:"grid"`
	BlocksTotal    int       `json:"blocks_total"`
	BlocksSuitable int       `json:"blocks_suitable"`
	BlocksSkipped  int       `json:"blocks_skipped"`
	BitsRequired   int       `json:"bits_required"`
	BitsEmbedded   int       `json:"bits_embedded"`
	PayloadBytes   int       `json:"payload_bytes"`
	Truncated      bool      `json:"truncated"`
	Fingerprint    string    `json:"fingerprint"`
}

// Embed writes text into a copy of g and returns the copy. The source is
// never modified.
//
// Blocks are visited in row-major order; the i-th suitable block carries
// bit i of the framed stream. If the stream needs more bits than there are
// suitable blocks, Embed returns a *CapacityError before touching any
// sample. Payloads over 255 bytes are truncated (see EmbedStats.Truncated).
func (c *Codec) Embed(ctx context.Context, g Grid, text string) (*Carrier, *EmbedStats, error) {
	if err := validateGrid(g); err != nil {
		return nil, nil, err
	}
	out, err := CarrierFromGrid(g)
	if err != nil {
		return nil, nil, err
	}
	grid := NewBlockGrid(out.width, out.height, c.cfg.BlockSize)

	bits, truncated := c.framer.Encode([]byte(text))
	payloadBytes := len(text)
	if truncated {
		payloadBytes = maxPayloadBytes
	}

	selected, skipped, err := c.selectBlocks(ctx, out, grid)
	if err != nil {
		return nil, nil, err
	}
	stats := &EmbedStats{
		Grid:           grid,
		BlocksTotal:    grid.Total(),
		BlocksSuitable: len(selected),
		BlocksSkipped:  skipped,
		BitsRequired:   len(bits),
		PayloadBytes:   payloadBytes,
		Truncated:      truncated,
		Fingerprint:    c.fingerprint,
	}
	if len(bits) > len(selected) {
		return nil, stats, &CapacityError{Required: len(bits), Available: len(selected)}
	}

	// Bit i goes to selected[i]; the assignment is fixed before dispatch so
	// workers never share a counter and each writes only its own block.
	assigned := selected[:len(bits)]
	err = c.parallel(ctx, len(assigned), func(ws *workspace, i int) {
		x0, y0 := grid.Origin(assigned[i])
		ws.load(out, x0, y0)
		c.transform.forwardInto(ws.coeffs, ws.tmp, ws.samples)
		c.strategy.EmbedBit(ws.coeffs, bits[i])
		c.transform.inverseInto(ws.samples, ws.tmp, ws.coeffs)
		ws.store(out, x0, y0)
	})
	if err != nil {
		return nil, stats, err
	}
	stats.BitsEmbedded = len(bits)
	return out, stats, nil
}

// ExtractStats are the diagnostic counters of an extraction.
type ExtractStats struct {
	Grid           BlockGrid `json:"grid"`
	BlocksTotal    int       `json:"blocks_total"`
	BlocksSuitable int       `json:"blocks_suitable"`
	BlocksSkipped  int       `json:"blocks_skipped"`
	BitBudget      int       `json:"bit_budget"`
	BitsRecovered  int       `json:"bits_recovered"`
	Fingerprint    string    `json:"fingerprint"`
}

// ExtractResult is the recovered text with the frame details and counters.
type ExtractResult struct {
	Text  string       `json:"text"`
	Frame Decoded      `json:"frame"`
	Stats ExtractStats `json:"stats"`
}

// Found reports whether any text was recovered.
func (r *ExtractResult) Found() bool {
	return r.Text != ""
}

// Extract reads a payload back from g. expectedChars is the caller's
// estimate of the payload's character count.
//
// The length prefix is read first. When it is plausible exactly the frame it
// announces is read; otherwise expectedChars bounds the read through
// Framer.EstimateBitBudget, and zero or less reads every suitable block.
//
// A carrier without a readable watermark is not an error: the result simply
// has empty text. Errors are returned only for structurally invalid
// carriers or a cancelled context.
func (c *Codec) Extract(ctx context.Context, g Grid, expectedChars int) (*ExtractResult, error) {
	if err := validateGrid(g); err != nil {
		return nil, err
	}
	grid := NewBlockGrid(g.Width(), g.Height(), c.cfg.BlockSize)
	budget := c.framer.EstimateBitBudget(expectedChars)

	selected, skipped, err := c.selectBlocks(ctx, g, grid)
	if err != nil {
		return nil, err
	}

	bits := make([]byte, len(selected))
	detect := func(lo, hi int) error {
		return c.parallel(ctx, hi-lo, func(ws *workspace, i int) {
			x0, y0 := grid.Origin(selected[lo+i])
			ws.load(g, x0, y0)
			c.transform.forwardInto(ws.coeffs, ws.tmp, ws.samples)
			bits[lo+i] = c.strategy.DetectBit(ws.coeffs)
		})
	}

	header := min(c.framer.FrameBits(0), len(bits))
	if err := detect(0, header); err != nil {
		return nil, err
	}
	need := len(bits)
	if length := int(c.framer.majorityByte(bits, 0)); length >= 1 && length <= c.framer.MaxLength {
		need = c.framer.FrameBits(length)
	} else if budget > 0 {
		need = budget
	}
	need = max(min(need, len(bits)), header)
	if err := detect(header, need); err != nil {
		return nil, err
	}
	bits = bits[:need]

	decoded := c.framer.Decode(bits, expectedChars)
	return &ExtractResult{
		Text:  decoded.Text,
		Frame: decoded,
		Stats: ExtractStats{
			Grid:           grid,
			BlocksTotal:    grid.Total(),
			BlocksSuitable: len(selected),
			BlocksSkipped:  skipped,
			BitBudget:      budget,
			BitsRecovered:  len(bits),
			Fingerprint:    c.fingerprint,
		},
	}, nil
}

// CapacityReport summarises how much payload a carrier can hold.
type CapacityReport struct {
	Grid            BlockGrid `json:"grid"`
	BlocksTotal     int       `json:"blocks_total"`
	BlocksSuitable  int       `json:"blocks_suitable"`
	CapacityBits    int       `json:"capacity_bits"`
	MaxPayloadBytes int       `json:"max_payload_bytes"`
	Fingerprint     string    `json:"fingerprint"`
}

// Capacity counts the suitable blocks of g and converts them to the
// largest payload, in bytes, that would embed.
func (c *Codec) Capacity(ctx context.Context, g Grid) (*CapacityReport, error) {
	if err := validateGrid(g); err != nil {
		return nil, err
	}
	grid := NewBlockGrid(g.Width(), g.Height(), c.cfg.BlockSize)
	selected, _, err := c.selectBlocks(ctx, g, grid)
	if err != nil {
		return nil, err
	}
	maxBytes := len(selected)/(8*c.cfg.RepetitionCount) - 1
	if maxBytes < 0 {
		maxBytes = 0
	}
	if maxBytes > maxPayloadBytes {
		maxBytes = maxPayloadBytes
	}
	return &CapacityReport{
		Grid:            grid,
		BlocksTotal:     grid.Total(),
		BlocksSuitable:  len(selected),
		CapacityBits:    len(selected),
		MaxPayloadBytes: maxBytes,
		Fingerprint:     c.fingerprint,
	}, nil
}

// SelectedBlocks returns the row-major indices of every block the selector
// accepts in g.
func (c *Codec) SelectedBlocks(ctx context.Context, g Grid) ([]int, error) {
	if err := validateGrid(g); err != nil {
		return nil, err
	}
	grid := NewBlockGrid(g.Width(), g.Height(), c.cfg.BlockSize)
	selected, _, err := c.selectBlocks(ctx, g, grid)
	return selected, err
}

// selectBlocks returns the row-major indices of suitable blocks and the
// number the selector rejected.
func (c *Codec) selectBlocks(ctx context.Context, g Grid, grid BlockGrid) (selected []int, skipped int, err error) {
	total := grid.Total()
	if _, all := c.selector.(AllBlocks); all {
		selected = make([]int, total)
		for i := range selected {
			selected[i] = i
		}
		return selected, 0, ctx.Err()
	}

	suitable := make([]bool, total)
	err = c.parallel(ctx, total, func(ws *workspace, i int) {
		x0, y0 := grid.Origin(i)
		ws.load(g, x0, y0)
		suitable[i] = c.selector.Suitable(ws.samples)
	})
	if err != nil {
		return nil, 0, err
	}
	for i, ok := range suitable {
		if ok {
			selected = append(selected, i)
		} else {
			skipped++
		}
	}
	return selected, skipped, nil
}

// parallel runs fn for every index in [0, n), splitting the range into
// contiguous chunks, one per worker. Each worker owns a workspace. The
// context is checked every cancelCheckInterval blocks.
func (c *Codec) parallel(ctx context.Context, n int, fn func(ws *workspace, i int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	workers := c.workers
	if workers > n {
		workers = n
	}
	per := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += per {
		hi := min(lo+per, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			ws := newWorkspace(c.cfg.BlockSize)
			for i := lo; i < hi; i++ {
				if (i-lo)%cancelCheckInterval == 0 && ctx.Err() != nil {
					return
				}
				fn(ws, i)
			}
		}(lo, hi)
	}
	wg.Wait()
	return ctx.Err()
}
