package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"alttext/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if cfg.Generate.MaxChars != 300 {
		t.Fatalf("default max_chars = %d", cfg.Generate.MaxChars)
	}
	if cfg.LLM.Model != "anthropic/claude-sonnet-4" {
		t.Fatalf("default model = %q", cfg.LLM.Model)
	}
	if cfg.Generate.UndoDepth != 64 {
		t.Fatalf("default undo_depth = %d", cfg.Generate.UndoDepth)
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alttext.toml")
	content := `
[paths]
root_dir = "` + dir + `"
state_dir = "` + dir + `"

[generate]
max_chars = 120
concurrency = 4

[scan]
ignore_dirs = ["vendor", "  "]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolution wrong: (%q, %t)", resolved, exists)
	}
	if cfg.Generate.MaxChars != 120 || cfg.Generate.Concurrency != 4 {
		t.Fatalf("overrides not applied: %+v", cfg.Generate)
	}
	if len(cfg.Scan.IgnoreDirs) != 1 || cfg.Scan.IgnoreDirs[0] != "vendor" {
		t.Fatalf("ignore dirs not normalized: %v", cfg.Scan.IgnoreDirs)
	}
	if cfg.Paths.RootDir != dir {
		t.Fatalf("root dir not expanded: %q", cfg.Paths.RootDir)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alttext.toml")
	content := `
[llm]
api_key = "from-file"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ALTTEXT_LLM_API_KEY", "from-env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "from-env" {
		t.Fatalf("environment must win, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"non-positive max chars", "[generate]\nmax_chars = 0\n", "max_chars"},
		{"non-positive concurrency", "[generate]\nconcurrency = -1\n", "concurrency"},
		{"bad log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "alttext.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestStateFilePaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = "/tmp/state"
	if cfg.QueueFile() != filepath.Join("/tmp/state", "asset_queue.json") {
		t.Fatalf("queue file %q", cfg.QueueFile())
	}
	if cfg.SuggestionsFile() != filepath.Join("/tmp/state", "suggested_alts.json") {
		t.Fatalf("suggestions file %q", cfg.SuggestionsFile())
	}
	if cfg.CaptionsFile() != filepath.Join("/tmp/state", "asset_captions.json") {
		t.Fatalf("captions file %q", cfg.CaptionsFile())
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	if cfg.Generate.MaxChars <= 0 {
		t.Fatalf("sample config invalid: %+v", cfg.Generate)
	}
}
