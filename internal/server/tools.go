package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func intProp(description string, def int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description, "default": def}
}

func profileProp() map[string]interface{} {
	return stringProp("Profile name (image, raster, robust or one defined in the config file). Defaults to raster for TIFF files and the configured default otherwise.")
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Embedding and extraction
		{
			Name:        "watermark_embed",
			Description: "Hide a text watermark in an image or single-band raster and write the watermarked copy. The input file is never modified. Returns codec statistics and PSNR/colour-difference quality figures.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_path":   stringProp("Absolute path to the carrier file"),
					"output_path":  stringProp("Where to write the watermarked file. Defaults to <input>_watermarked with PNG output for JPEG and GIF inputs"),
					"text":         stringProp("UTF-8 text to hide. Payloads over 255 bytes are truncated"),
					"profile":      profileProp(),
					"jpeg_quality": intProp("JPEG quality (1-100) when the output is JPEG. Lossy output usually damages the watermark", 95),
				},
				"required": []string{"input_path", "text"},
			},
		},
		{
			Name:        "watermark_extract",
			Description: "Recover a text watermark from a file. Use the same profile that embedded it. A file with no readable watermark returns success=false rather than an error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_path":     stringProp("Absolute path to the watermarked file"),
					"expected_chars": intProp("Approximate watermark length in characters, used only when the length prefix is damaged. 0 scans the whole file", 0),
					"profile":        profileProp(),
				},
				"required": []string{"input_path"},
			},
		},

		// Carrier inspection
		{
			Name:        "watermark_info",
			Description: "Report dimensions, kind, format, block grid and the capacity of every profile for a carrier file, with a recommended profile.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the carrier file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "watermark_capacity",
			Description: "Report how many payload bytes a carrier can hold under one profile.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    stringProp("Absolute path to the carrier file"),
					"profile": profileProp(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "watermark_check_format",
			Description: "Check whether a path's extension is a supported image or raster format, without reading the file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("File path or name to check"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "watermark_formats",
			Description: "List the supported image and raster extensions and the recognised raster formats that cannot be decoded.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "watermark_profiles",
			Description: "List the configured watermark profiles with their parameters and fingerprints. Embed and extract must use profiles with the same fingerprint.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "image_info",
			Description: "Load a file and return its dimensions, format, colour model and size on disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": stringProp("Absolute path to the file"),
				},
				"required": []string{"path"},
			},
		},

		// Evaluation
		{
			Name:        "watermark_quality",
			Description: "Compare an original with its watermarked copy: PSNR, MSE, maximum change, changed samples and CIEDE2000 colour difference.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"original_path":    stringProp("Absolute path to the original file"),
					"watermarked_path": stringProp("Absolute path to the watermarked file"),
				},
				"required": []string{"original_path", "watermarked_path"},
			},
		},
		{
			Name:        "watermark_test",
			Description: "Embed a text in memory, apply attacks, extract it again and report how many payload bytes survived each attack. Uses a generated carrier when input_path is omitted. Nothing is written to disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"input_path": stringProp("Optional carrier file"),
					"pattern": map[string]interface{}{
						"type":        "string",
						"description": "Generated carrier pattern when input_path is omitted",
						"enum":        []string{"gradient", "checkerboard", "noise", "natural"},
						"default":     "natural",
					},
					"width":   intProp("Generated carrier width", 256),
					"height":  intProp("Generated carrier height", 256),
					"seed":    intProp("Seed for the natural pattern", 0),
					"text":    stringProp("Text to embed. Defaults to TEST123"),
					"profile": profileProp(),
					"attacks": map[string]interface{}{
						"type":        "array",
						"description": "Attacks to apply before extraction: none, jpeg[:quality] or blur[:radius]. Images only except none",
						"items":       map[string]interface{}{"type": "string"},
						"default":     []string{"none"},
					},
				},
			},
		},
		{
			Name:        "watermark_generate_test_data",
			Description: "Write a synthetic carrier. TIFF output produces a single-band raster, other extensions a grayscale image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output_path": stringProp("Where to write the generated file"),
					"pattern": map[string]interface{}{
						"type":    "string",
						"enum":    []string{"gradient", "checkerboard", "noise", "natural"},
						"default": "natural",
					},
					"width":  intProp("Width in pixels", 256),
					"height": intProp("Height in pixels", 256),
					"seed":   intProp("Seed for the natural pattern", 0),
					"depth":  intProp("Raster bit depth, 8 or 16", 8),
				},
				"required": []string{"output_path"},
			},
		},

		// Previews
		{
			Name:        "watermark_block_map",
			Description: "Render the block grid over a carrier as base64 PNG: green blocks would carry the given text, blue blocks are suitable but spare, red blocks are skipped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       stringProp("Absolute path to the carrier file"),
					"profile":    profileProp(),
					"text":       stringProp("Optional text whose frame is marked as carrying"),
					"grid_color": stringProp("Grid line colour as hex, e.g. #FFFF00A0"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "watermark_diff_map",
			Description: "Render the amplified luma difference between an original and its watermarked copy as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"original_path":    stringProp("Absolute path to the original file"),
					"watermarked_path": stringProp("Absolute path to the watermarked file"),
					"amplify": map[string]interface{}{
						"type":        "number",
						"description": "Difference multiplier",
						"default":     10.0,
					},
				},
				"required": []string{"original_path", "watermarked_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
