package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-courseform/internal/logging"
)

func TestNewWriter_Keys(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, "warn")
	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected one entry at warn level, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if diff := cmp.Diff("WARN", entry["severity"]); diff != "" {
		t.Fatalf("severity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("kept", entry["message"]); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp key in %v", entry)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []logging.Format{"", logging.FormatJSON, logging.FormatConsole} {
		logger, err := logging.New("bogus", format)
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("format %q: expected info level fallback", format)
		}
	}
	if _, err := logging.New("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
