package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.With("component", "export").Info("workspace exported", "workspace", "ws", "bytes", 812, "took", 3*time.Millisecond, "error", errors.New("no space"))
	logger.Debug("hidden")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record must be filtered: %q", line)
	}
	for _, want := range []string{" INFO export: workspace exported", "workspace=ws", "bytes=812", "took=3ms", `error="no space"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "JSON", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.WithGroup("catalog").Debug("record saved", "name", "ws")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["level"] != "debug" || entry["msg"] != "record saved" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if src, _ := entry["source"].(string); !strings.HasPrefix(src, "logger_test.go:") {
		t.Fatalf("expected compact source at debug level, got %v", entry["source"])
	}
	group, _ := entry["catalog"].(map[string]any)
	if group["name"] != "ws" {
		t.Fatalf("expected grouped attr, got %v", entry)
	}
}

func TestAutoFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "auto", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("non-terminal output must be json, got %q", buf.String())
	}
	if IsTerminal(&buf) {
		t.Fatalf("buffer is not a terminal")
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
}

func TestConsoleGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{Output: &buf})
	logger.WithGroup("blob").With("driver", "s3").Warn("retrying", "key", "a b")
	line := buf.String()
	if !strings.Contains(line, "blob.driver=s3") || !strings.Contains(line, `blob.key="a b"`) {
		t.Fatalf("unexpected line %q", line)
	}
	Discard().Error("dropped")
}
