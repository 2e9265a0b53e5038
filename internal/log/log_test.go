package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Info("server started", "addr", ":8000")

	out := buf.String()
	if !strings.Contains(out, "server started") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, "addr=:8000") {
		t.Errorf("output missing attribute: %s", out)
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("index built", "chunks", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "index built" {
		t.Errorf("msg = %v, want %q", entry["msg"], "index built")
	}
	if entry["chunks"] != float64(42) {
		t.Errorf("chunks = %v, want 42", entry["chunks"])
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Info("filtered out")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "filtered out") {
		t.Errorf("info record passed a warn-level filter: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNewNop_DiscardsOutput(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	// Must not panic and must accept any level.
	logger.Debug("ignored")
	logger.Error("ignored too")
}
