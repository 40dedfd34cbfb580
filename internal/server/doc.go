// Package server implements the MCP (Model Context Protocol) server for the
// watermark tools.
//
// The server speaks JSON-RPC 2.0 over stdio: one request per line on stdin,
// one response per line on stdout. Supported methods are initialize,
// tools/list, tools/call and ping.
//
// # Tools
//
// Embedding and extraction:
//   - watermark_embed: hide text in an image or raster and save a copy
//   - watermark_extract: recover hidden text
//
// Carrier inspection:
//   - watermark_info: metadata, block grid and per-profile capacity
//   - watermark_capacity: capacity under one profile
//   - watermark_check_format: classify a path by extension
//   - watermark_formats: list supported formats
//   - watermark_profiles: list profiles and their fingerprints
//   - image_info: file metadata only
//
// Evaluation:
//   - watermark_quality: PSNR and colour difference between two files
//   - watermark_test: in-memory embed, attack and extract
//   - watermark_generate_test_data: write a synthetic carrier
//
// Previews:
//   - watermark_block_map: which blocks are skipped, spare or carrying
//   - watermark_diff_map: amplified luma difference
//
// # Error Handling
//
// Malformed parameters and missing or mistyped arguments return code
// -32602. Failures while running a tool, such as an unreadable file or a
// payload that does not fit, return -32000 with the Go error string in
// data. A file without a watermark is not an error: watermark_extract
// reports success=false.
//
// # Usage
//
//	profiles, err := config.Load(os.Getenv("WATERMARK_MCP_CONFIG"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(profiles, false).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
