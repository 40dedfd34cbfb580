package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the command line and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("watermark %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestEmbedExtractWorkflow(t *testing.T) {
	dir := t.TempDir()
	carrier := filepath.Join(dir, "carrier.png")
	marked := filepath.Join(dir, "marked.png")

	mustRun(t, "generate", "--pattern", "natural", "--seed", "5", carrier)

	var embedded struct {
		Success bool   `json:"success"`
		Profile string `json:"profile"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "embed", "-o", marked, carrier, "CLI-42")), &embedded); err != nil {
		t.Fatalf("embed output: %v", err)
	}
	if !embedded.Success || embedded.Profile != "image" {
		t.Errorf("embed: got %+v", embedded)
	}

	if got := strings.TrimSpace(mustRun(t, "extract", "--text", "-n", "6", marked)); got != "CLI-42" {
		t.Errorf("extract: got %q, want CLI-42", got)
	}

	var quality struct {
		Quality struct {
			PSNR float64 `json:"psnr_db"`
		} `json:"quality"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "quality", carrier, marked)), &quality); err != nil {
		t.Fatalf("quality output: %v", err)
	}
	if quality.Quality.PSNR <= 0 || quality.Quality.PSNR >= 100 {
		t.Errorf("PSNR: got %v", quality.Quality.PSNR)
	}

	var info struct {
		Profiles []struct {
			Profile string `json:"profile"`
		} `json:"profiles"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, "capacity", carrier)), &info); err != nil {
		t.Fatalf("capacity output: %v", err)
	}
	if len(info.Profiles) != 3 {
		t.Errorf("capacity profiles: got %d, want 3", len(info.Profiles))
	}
}

func TestExtractTextOnlyFailsWithoutWatermark(t *testing.T) {
	carrier := filepath.Join(t.TempDir(), "plain.png")
	mustRun(t, "generate", "--pattern", "gradient", "-W", "64", "-H", "64", carrier)
	if _, err := runCLI(t, "extract", "--text", "-n", "4", carrier); err == nil {
		t.Error("expected error for an unmarked file")
	}
}

func TestRoundTripCommand(t *testing.T) {
	var res struct {
		Passed   int `json:"passed"`
		Outcomes []struct {
			Attack string `json:"attack"`
		} `json:"outcomes"`
	}
	out := mustRun(t, "test", "--size", "192", "-a", "none", "-a", "jpeg:95", "-t", "Q")
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("test output: %v", err)
	}
	if len(res.Outcomes) != 2 || res.Outcomes[1].Attack != "jpeg:95" {
		t.Errorf("outcomes: got %+v", res.Outcomes)
	}
	if res.Passed < 1 {
		t.Errorf("passed: got %d", res.Passed)
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "profiles.yaml")
	yaml := "default: archive\nprofiles:\n  archive:\n    base: robust\n    repetition_count: 11\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var rows []profileRow
	if err := json.Unmarshal([]byte(mustRun(t, "profiles", "--config", cfgPath)), &rows); err != nil {
		t.Fatalf("profiles output: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("profiles: got %d, want 4", len(rows))
	}
	for _, r := range rows {
		if r.Default != (r.Name == "archive") {
			t.Errorf("profile %s default = %v", r.Name, r.Default)
		}
	}

	if _, err := runCLI(t, "profiles", "--config", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"no command", nil, true},
		{"unknown command", []string{"stamp"}, true},
		{"embed missing text", []string{"embed", "a.png"}, false},
		{"bad flag", []string{"extract", "--frobnicate", "a.png"}, false},
		{"config without value", []string{"profiles", "--config"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, errUsage) != tt.usage {
				t.Errorf("errUsage = %v, want %v (%v)", errors.Is(err, errUsage), tt.usage, err)
			}
		})
	}

	if out := mustRun(t, "--version"); !strings.HasPrefix(out, "watermark ") {
		t.Errorf("--version: got %q", out)
	}
}

func TestSplitConfig(t *testing.T) {
	tests := []struct {
		args     []string
		wantRest []string
		wantPath string
	}{
		{[]string{"a.png"}, []string{"a.png"}, ""},
		{[]string{"--config", "p.yaml", "a.png"}, []string{"a.png"}, "p.yaml"},
		{[]string{"a.png", "--config=q.yaml", "-n", "3"}, []string{"a.png", "-n", "3"}, "q.yaml"},
		{[]string{"a.png", "--", "--config"}, []string{"a.png", "--", "--config"}, ""},
	}
	for _, tt := range tests {
		rest, path, err := splitConfig(tt.args)
		if err != nil {
			t.Fatalf("splitConfig(%v): %v", tt.args, err)
		}
		if path != tt.wantPath || strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
			t.Errorf("splitConfig(%v) = %v, %q; want %v, %q", tt.args, rest, path, tt.wantRest, tt.wantPath)
		}
	}
}
