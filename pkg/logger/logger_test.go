package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.Info("analyzed",
		String("symbol", "NABIL"),
		Int("samples", 5),
		Int64("volume", 45000),
		Float64("ratio", 3.5),
		Bool("suspicious", true),
		Duration("took_ms", 1500*time.Millisecond),
		Strings("explanation", []string{"a", "b"}),
		Error(errors.New("boom")),
	)

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if m["message"] != "analyzed" || m["symbol"] != "NABIL" || m["ratio"] != 3.5 {
		t.Fatalf("unexpected line %v", m)
	}
	if m["took_ms"] != float64(1500) || m["explanation"] != "a, b" || m["error"] != "boom" {
		t.Fatalf("unexpected line %v", m)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for bad level")
	}
}

func TestNewFileOutputRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pumpscan.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hello")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Contains(b, []byte("hello")) {
		t.Fatalf("log file missing message: %q", b)
	}
}
