package watermark

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// Result is the outcome of an embed or extract on a file.
type Result struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	InputPath    string       `json:"input_path"`
	OutputPath   string       `json:"output_path,omitempty"`
	Kind         imaging.Kind `json:"kind"`
	Profile      string       `json:"profile"`
	Text         string       `json:"text,omitempty"`
	ProcessingMS int64        `json:"processing_ms"`

	Embed   *codec.EmbedStats      `json:"embed,omitempty"`
	Extract *codec.ExtractResult   `json:"extract,omitempty"`
	Quality *imaging.QualityReport `json:"quality,omitempty"`
}

// EmbedRequest describes a file to watermark.
type EmbedRequest struct {
	InputPath string
	// OutputPath defaults to imaging.DefaultOutputPath(InputPath).
	OutputPath string
	Text       string
	// Profile defaults to raster for rasters and the configured default
	// otherwise.
	Profile string
	// JPEGQuality applies to JPEG output only. JPEG recompression usually
	// destroys part of the payload; prefer PNG or TIFF output.
	JPEGQuality int
}

// Embed watermarks req.InputPath and writes the result to the output path.
// The input file is never modified.
func (s *Service) Embed(ctx context.Context, req EmbedRequest) (*Result, error) {
	start := time.Now()
	if req.Text == "" {
		return nil, fmt.Errorf("text must not be empty")
	}
	out := req.OutputPath
	if out == "" {
		out = imaging.DefaultOutputPath(req.InputPath)
	}
	if samePath(out, req.InputPath) {
		return nil, fmt.Errorf("%w: %s", ErrSamePath, out)
	}
	if check := imaging.CheckFormat(out); !check.Supported {
		return nil, fmt.Errorf("%w: cannot write %s", imaging.ErrUnsupportedFormat, out)
	}

	src, err := s.load(req.InputPath)
	if err != nil {
		return nil, err
	}
	profile, c, err := s.profileFor(req.Profile, src.kind)
	if err != nil {
		return nil, err
	}

	marked, stats, err := c.Embed(ctx, src.samples, req.Text)
	if err != nil {
		s.debugf("embed %s with profile %s failed: %v", req.InputPath, profile, err)
		return nil, err
	}
	rendered, err := src.render(marked)
	if err != nil {
		return nil, err
	}
	if err := imaging.SaveImage(rendered, out, req.JPEGQuality); err != nil {
		return nil, err
	}
	s.cache.Evict(out)

	quality, err := src.quality(rendered)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("embedded %d bytes in %d of %d blocks", stats.PayloadBytes, stats.BitsEmbedded, stats.BlocksTotal)
	if stats.Truncated {
		msg += " (payload truncated to 255 bytes)"
	}
	return &Result{
		Success:      true,
		Message:      msg,
		InputPath:    req.InputPath,
		OutputPath:   out,
		Kind:         src.kind,
		Profile:      profile,
		ProcessingMS: time.Since(start).Milliseconds(),
		Embed:        stats,
		Quality:      quality,
	}, nil
}

// ExtractRequest describes a file to read a watermark from.
type ExtractRequest struct {
	InputPath string
	// ExpectedChars is the approximate payload length in characters. Zero
	// scans the whole file when the length prefix is unreadable.
	ExpectedChars int
	Profile       string
}

// Extract reads the watermark from req.InputPath. A file without a readable
// watermark is not an error; the result then has Success false.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (*Result, error) {
	start := time.Now()
	src, err := s.load(req.InputPath)
	if err != nil {
		return nil, err
	}
	profile, c, err := s.profileFor(req.Profile, src.kind)
	if err != nil {
		return nil, err
	}

	res, err := c.Extract(ctx, src.samples, req.ExpectedChars)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Success:      res.Found(),
		InputPath:    req.InputPath,
		Kind:         src.kind,
		Profile:      profile,
		Text:         res.Text,
		ProcessingMS: time.Since(start).Milliseconds(),
		Extract:      res,
	}
	switch {
	case !res.Found():
		result.Message = "no watermark recovered"
		s.debugf("extract %s with profile %s: nothing recovered (header length %d, %d bits read)",
			req.InputPath, profile, res.Frame.HeaderLength, res.Stats.BitsRecovered)
	case res.Frame.LengthEstimated || !res.Frame.ValidUTF8:
		result.Message = fmt.Sprintf("recovered %d bytes from a damaged frame", res.Frame.Length)
		s.debugf("extract %s with profile %s: degraded decode %+v", req.InputPath, profile, res.Frame)
	default:
		result.Message = fmt.Sprintf("recovered %d bytes", res.Frame.Length)
	}
	return result, nil
}

func samePath(a, b string) bool {
	ca, errA := filepath.Abs(a)
	cb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return ca == cb
}
