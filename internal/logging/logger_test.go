package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"alttext/internal/logging"
	"alttext/internal/testsupport"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("queue written", "stage", "scan", "queued", 7, "path", "/state/asset queue.json")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO scan: queue written") {
		t.Fatalf("unexpected line: %s", line)
	}
	if !strings.Contains(line, "queued=7") {
		t.Fatalf("attr missing: %s", line)
	}
	if !strings.Contains(line, `path="/state/asset queue.json"`) {
		t.Fatalf("value with spaces must be quoted: %s", line)
	}
}

func TestJSONHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Warn("asset failed", "stage", "generate")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, buf.String())
	}
	if record["level"] != "warn" {
		t.Fatalf("level not lowercased: %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("timestamp key missing: %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info leaked past warn level: %s", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Fatalf("warn missing: %s", out)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("session started", "stage", "scan")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "alttext.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "session started") {
		t.Fatalf("log file missing record:\n%s", data)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
