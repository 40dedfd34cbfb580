package server

import (
	"context"
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"watermark_embed",
		"watermark_extract",
		"watermark_info",
		"watermark_capacity",
		"watermark_check_format",
		"watermark_formats",
		"watermark_profiles",
		"image_info",
		"watermark_quality",
		"watermark_test",
		"watermark_generate_test_data",
		"watermark_block_map",
		"watermark_diff_map",
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want object", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required property %s is not defined", name)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := map[string][]string{
		"watermark_embed":              {"input_path", "text"},
		"watermark_extract":            {"input_path"},
		"watermark_quality":            {"original_path", "watermarked_path"},
		"watermark_generate_test_data": {"output_path"},
		"watermark_block_map":          {"path"},
	}

	tools := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		tools[tool.Name] = tool
	}
	for name, want := range tests {
		required, _ := tools[name].InputSchema["required"].([]string)
		if len(required) != len(want) {
			t.Errorf("%s required: got %v, want %v", name, required, want)
			continue
		}
		for i := range want {
			if required[i] != want[i] {
				t.Errorf("%s required: got %v, want %v", name, required, want)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(nil, false)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 9, Method: "tools/list"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("tools/list failed: %+v", resp)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	var decoded struct {
		Result struct {
			Tools []struct {
				Name        string                 `json:"name"`
				InputSchema map[string]interface{} `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(decoded.Result.Tools) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools on the wire, want %d", len(decoded.Result.Tools), len(GetToolDefinitions()))
	}
	for _, tool := range decoded.Result.Tools {
		if tool.InputSchema == nil {
			t.Errorf("%s: inputSchema missing", tool.Name)
		}
	}
}
