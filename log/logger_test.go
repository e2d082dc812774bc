package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLogger_JSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zapcore.DebugLevel).With(map[string]any{"endpoint": "csvtest", "date": "080725"})
	l.Info("artifact written", map[string]any{"records": 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "artifact written" || entry["level"] != "info" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["endpoint"] != "csvtest" || entry["date"] != "080725" {
		t.Errorf("context fields missing: %v", entry)
	}
	fields, _ := entry["fields"].(map[string]any)
	if fields["records"] != float64(3) {
		t.Errorf("fields = %v", entry["fields"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zapcore.WarnLevel)
	l.Info("hidden", nil)
	l.Debug("hidden", nil)
	l.Warn("shown", nil)
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected 1 line, got %d: %s", got, buf.String())
	}
}

func TestLogger_WithOutputKeepsLevel(t *testing.T) {
	var first, second bytes.Buffer
	l := New(&first, zapcore.ErrorLevel).WithOutput(&second)
	l.Warn("dropped", nil)
	l.Error("kept", nil)
	if first.Len() != 0 {
		t.Errorf("original writer received output: %s", first.String())
	}
	if !strings.Contains(second.String(), "kept") || strings.Contains(second.String(), "dropped") {
		t.Errorf("unexpected output: %s", second.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"": zapcore.InfoLevel, "DEBUG": zapcore.DebugLevel, "warning": zapcore.WarnLevel, "error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing", map[string]any{"x": 1})
	l.Sugar().Infof("nothing %d", 1)
}
