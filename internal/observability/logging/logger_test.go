package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "worker", "info", "json")
	logger.Debug("hidden")
	logger.Info("document_processed", "document_id", "doc-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug line to be filtered, got %d lines", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "worker" || entry["msg"] != "document_processed" || entry["document_id"] != "doc-1" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "doctype", "debug", "text").Debug("classified", "category", "receipt")
	if !strings.Contains(buf.String(), "service=doctype") || !strings.Contains(buf.String(), "category=receipt") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}
