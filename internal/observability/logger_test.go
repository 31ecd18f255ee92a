package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/fieldsim/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatal(err)
	}

	l.Info("run started", zap.Int("steps", 10))
	l.Debug("hidden")
	Sync(l)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "run started" || entry["level"] != "INFO" || entry["logger"] != "fieldsim" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["steps"] != float64(10) {
		t.Errorf("expected steps field, got %v", entry["steps"])
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(config.LoggerConfig{Level: "debug", Format: "console"}, zapcore.AddSync(&buf))
	if err != nil {
		t.Fatal(err)
	}

	l.Debug("body on source center")
	out := buf.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "body on source center") {
		t.Errorf("unexpected console output: %q", out)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldsim.log")
	l, err := New(config.LoggerConfig{Level: "warn", File: path}, nil)
	if err != nil {
		t.Fatal(err)
	}

	l.Info("dropped")
	l.Warn("state diverged")
	Sync(l)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), `"msg":"state diverged"`) {
		t.Errorf("expected JSON entry in file, got %q", data)
	}
}

func TestNew_NoSinks(t *testing.T) {
	l, err := New(config.LoggerConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected a no-op logger")
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(config.LoggerConfig{Level: "loud"}, zapcore.AddSync(&bytes.Buffer{})); err == nil {
		t.Error("expected error for unknown level")
	}
}
