package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"alttext/internal/store"
)

func writeTestConfig(t *testing.T, root string) string {
	t.Helper()
	base := t.TempDir()
	stateDir := filepath.Join(base, "state")
	path := filepath.Join(base, "config.toml")
	content := `
[paths]
root_dir = "` + root + `"
state_dir = "` + stateDir + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[render]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestScanCommandWritesQueue(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "doc.md")
	if err := os.WriteFile(doc, []byte("![](missing-alt.png)\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	cfgPath := writeTestConfig(t, root)

	out, err := runCommand(t, "--config", cfgPath, "scan")
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queue written to") {
		t.Fatalf("missing confirmation: %s", out)
	}

	queuePath := filepath.Join(filepath.Dir(cfgPath), "state", "asset_queue.json")
	entries, err := store.LoadQueue(queuePath)
	if err != nil {
		t.Fatalf("LoadQueue: %v", err)
	}
	if len(entries) != 1 || entries[0].Locator != "missing-alt.png" {
		t.Fatalf("unexpected queue: %+v", entries)
	}
}

func TestScanCommandEmptyTreeSucceeds(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root)

	if _, err := runCommand(t, "--config", cfgPath, "scan"); err != nil {
		t.Fatalf("empty tree must exit zero: %v", err)
	}
}

func TestScanCommandUnreadableRootFails(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root)

	if _, err := runCommand(t, "--config", cfgPath, "scan", "--root", filepath.Join(root, "absent")); err == nil {
		t.Fatal("unreadable root must fail")
	}
}

func TestGenerateCommandUnknownModelFails(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root)

	_, err := runCommand(t, "--config", cfgPath, "generate", "--model", "unknown/model", "--estimate-only")
	if err == nil {
		t.Fatal("unknown model must fail")
	}
	if !strings.Contains(err.Error(), "unknown/model") {
		t.Fatalf("error should name the model: %v", err)
	}
}
