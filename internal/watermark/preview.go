package watermark

import (
	"context"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// BlockMapRequest describes a block usage preview.
type BlockMapRequest struct {
	InputPath string
	Profile   string
	// Text, when set, marks the blocks its frame would occupy as carrying.
	Text      string
	GridColor string
}

// BlockMap renders which blocks of a file the selector accepts and, for
// req.Text, which of them would carry the payload.
func (s *Service) BlockMap(ctx context.Context, req BlockMapRequest) (*imaging.BlockMapResult, error) {
	src, err := s.load(req.InputPath)
	if err != nil {
		return nil, err
	}
	_, c, err := s.profileFor(req.Profile, src.kind)
	if err != nil {
		return nil, err
	}
	selected, err := c.SelectedBlocks(ctx, src.samples)
	if err != nil {
		return nil, err
	}
	carrying := 0
	if req.Text != "" {
		framer := codec.NewFramer(c.Config())
		bits, _ := framer.Encode([]byte(req.Text))
		carrying = len(bits)
	}
	cfg := c.Config()
	grid := codec.NewBlockGrid(src.samples.Width(), src.samples.Height(), cfg.BlockSize)
	return imaging.BlockMap(src.source, grid, selected, carrying, req.GridColor)
}

// DiffMap renders the amplified luma difference between two files.
func (s *Service) DiffMap(originalPath, markedPath string, amplify float64) (*imaging.DiffMapResult, error) {
	a, err := s.load(originalPath)
	if err != nil {
		return nil, err
	}
	b, err := s.load(markedPath)
	if err != nil {
		return nil, err
	}
	return imaging.DiffMap(a.source, b.source, amplify)
}
