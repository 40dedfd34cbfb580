package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
	"github.com/ironsheep/watermark-tools-mcp/internal/watermark"
)

// errMissingArgument marks a call that lacks a required argument.
var errMissingArgument = errors.New("missing required argument")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "watermark_embed").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed parameters and missing arguments return -32602. Tool execution
// errors return -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if s.debug {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.Is(err, errMissingArgument) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Embedding and extraction
	case "watermark_embed":
		return s.handleEmbed(ctx, args)
	case "watermark_extract":
		return s.handleExtract(ctx, args)

	// Carrier inspection
	case "watermark_info":
		return s.handleInfo(ctx, args)
	case "watermark_capacity":
		return s.handleCapacity(ctx, args)
	case "watermark_check_format":
		return s.handleCheckFormat(args)
	case "watermark_formats":
		return imaging.DescribeFormats(), nil
	case "watermark_profiles":
		return s.profileSummaries(), nil
	case "image_info":
		return s.handleImageInfo(args)

	// Evaluation
	case "watermark_quality":
		return s.handleQuality(args)
	case "watermark_test":
		return s.handleRoundTrip(ctx, args)
	case "watermark_generate_test_data":
		return s.handleGenerate(args)

	// Previews
	case "watermark_block_map":
		return s.handleBlockMap(ctx, args)
	case "watermark_diff_map":
		return s.handleDiffMap(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func require(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", errMissingArgument, name)
	}
	return nil
}

// === Embedding Handlers ===

type embedArgs struct {
	InputPath   string `json:"input_path"`
	OutputPath  string `json:"output_path"`
	Text        string `json:"text"`
	Profile     string `json:"profile"`
	JPEGQuality int    `json:"jpeg_quality"`
}

func (s *Server) handleEmbed(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a embedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := require("input_path", a.InputPath); err != nil {
		return nil, err
	}
	if err := require("text", a.Text); err != nil {
		return nil, err
	}
	if a.JPEGQuality == 0 {
		a.JPEGQuality = imaging.DefaultJPEGQuality
	}
	return s.service.Embed(ctx, watermark.EmbedRequest{
		InputPath:   a.InputPath,
		OutputPath:  a.OutputPath,
		Text:        a.Text,
		Profile:     a.Profile,
		JPEGQuality: a.JPEGQuality,
	})
}

type extractArgs struct {
	InputPath     string `json:"input_path"`
	ExpectedChars int    `json:"expected_chars"`
	Profile       string `json:"profile"`
}

func (s *Server) handleExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := require("input_path", a.InputPath); err != nil {
		return nil, err
	}
	return s.service.Extract(ctx, watermark.ExtractRequest{
		InputPath:     a.InputPath,
		ExpectedChars: a.ExpectedChars,
		Profile:       a.Profile,
	})
}

// === Inspection Handlers ===

type pathArgs struct {
	Path    string `json:"path"`
	Profile string `json:"profile"`
}

func (s *Server) decodePath(args json.RawMessage) (pathArgs, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return a, err
	}
	return a, require("path", a.Path)
}

func (s *Server) handleInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := s.decodePath(args)
	if err != nil {
		return nil, err
	}
	return s.service.Info(ctx, a.Path)
}

func (s *Server) handleCapacity(ctx context.Context, args json.RawMessage) (interface{}, error) {
	a, err := s.decodePath(args)
	if err != nil {
		return nil, err
	}
	return s.service.Capacity(ctx, a.Path, a.Profile)
}

func (s *Server) handleCheckFormat(args json.RawMessage) (interface{}, error) {
	a, err := s.decodePath(args)
	if err != nil {
		return nil, err
	}
	return imaging.CheckFormat(a.Path), nil
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	a, err := s.decodePath(args)
	if err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// profileSummary describes one configured profile.
type profileSummary struct {
	Name        string       `json:"name"`
	Default     bool         `json:"default"`
	Fingerprint string       `json:"fingerprint"`
	Config      codec.Config `json:"config"`
}

func (s *Server) profileSummaries() []profileSummary {
	profiles := s.service.Profiles()
	var out []profileSummary
	for _, name := range profiles.Names() {
		cfg, err := profiles.Get(name)
		if err != nil {
			continue
		}
		out = append(out, profileSummary{
			Name:        name,
			Default:     name == profiles.DefaultName(),
			Fingerprint: cfg.Fingerprint(),
			Config:      cfg,
		})
	}
	return out
}

// === Evaluation Handlers ===

type qualityArgs struct {
	OriginalPath    string `json:"original_path"`
	WatermarkedPath string `json:"watermarked_path"`
}

func (s *Server) handleQuality(args json.RawMessage) (interface{}, error) {
	var a qualityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := require("original_path", a.OriginalPath); err != nil {
		return nil, err
	}
	if err := require("watermarked_path", a.WatermarkedPath); err != nil {
		return nil, err
	}
	return s.service.Quality(a.OriginalPath, a.WatermarkedPath)
}

type roundTripArgs struct {
	InputPath string   `json:"input_path"`
	Pattern   string   `json:"pattern"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Seed      int64    `json:"seed"`
	Text      string   `json:"text"`
	Profile   string   `json:"profile"`
	Attacks   []string `json:"attacks"`
}

func (s *Server) handleRoundTrip(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a roundTripArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.service.RoundTrip(ctx, watermark.RoundTripRequest{
		InputPath: a.InputPath,
		Pattern:   imaging.Pattern(a.Pattern),
		Width:     a.Width,
		Height:    a.Height,
		Seed:      a.Seed,
		Text:      a.Text,
		Profile:   a.Profile,
		Attacks:   a.Attacks,
	})
}

type generateArgs struct {
	OutputPath string `json:"output_path"`
	Pattern    string `json:"pattern"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Seed       int64  `json:"seed"`
	Depth      int    `json:"depth"`
}

func (s *Server) handleGenerate(args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := require("output_path", a.OutputPath); err != nil {
		return nil, err
	}
	return s.service.Generate(watermark.GenerateRequest{
		OutputPath: a.OutputPath,
		Pattern:    imaging.Pattern(a.Pattern),
		Width:      a.Width,
		Height:     a.Height,
		Seed:       a.Seed,
		Depth:      a.Depth,
	})
}

// === Preview Handlers ===

type blockMapArgs struct {
	Path      string `json:"path"`
	Profile   string `json:"profile"`
	Text      string `json:"text"`
	GridColor string `json:"grid_color"`
}

func (s *Server) handleBlockMap(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a blockMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := require("path", a.Path); err != nil {
		return nil, err
	}
	if a.GridColor == "" {
		a.GridColor = "#FFFF00A0"
	}
	return s.service.BlockMap(ctx, watermark.BlockMapRequest{
		InputPath: a.Path,
		Profile:   a.Profile,
		Text:      a.Text,
		GridColor: a.GridColor,
	})
}

type diffMapArgs struct {
	OriginalPath    string  `json:"original_path"`
	WatermarkedPath string  `json:"watermarked_path"`
	Amplify         float64 `json:"amplify"`
}

func (s *Server) handleDiffMap(args json.RawMessage) (interface{}, error) {
	var a diffMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := require("original_path", a.OriginalPath); err != nil {
		return nil, err
	}
	if err := require("watermarked_path", a.WatermarkedPath); err != nil {
		return nil, err
	}
	return s.service.DiffMap(a.OriginalPath, a.WatermarkedPath, a.Amplify)
}
