package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"json lowercase", "json", FormatJSON, false},
		{"json uppercase", "JSON", FormatJSON, false},
		{"table", "table", FormatTable, false},
		{"yaml", "yaml", FormatYAML, false},
		{"empty", "", "", false},
		{"invalid", "xml", "", true},
		{"artifact encoding is not an output format", "csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderer_JSONAndYAML(t *testing.T) {
	data := map[string]string{"endpoint": "csvtest"}

	var j bytes.Buffer
	if err := NewRendererWithWriter(FormatJSON, false, &j).Render(data); err != nil {
		t.Fatal(err)
	}
	if j.String() != "{\n  \"endpoint\": \"csvtest\"\n}\n" {
		t.Errorf("JSON = %q", j.String())
	}

	var y bytes.Buffer
	if err := NewRendererWithWriter(FormatYAML, false, &y).Render(data); err != nil {
		t.Fatal(err)
	}
	if y.String() != "endpoint: csvtest\n" {
		t.Errorf("YAML = %q", y.String())
	}
}

func TestRenderer_TableStruct(t *testing.T) {
	type report struct {
		Endpoint string    `json:"endpoint"`
		Records  int       `json:"records_processed"`
		Columns  []string  `json:"columns"`
		At       time.Time `json:"processed_at"`
		hidden   string
	}
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	data := &report{
		Endpoint: "debitcardtxn",
		Records:  2,
		Columns:  []string{"a", "b"},
		At:       time.Date(2025, 7, 8, 10, 30, 0, 0, time.UTC),
		hidden:   "x",
	}
	if err := r.Render(data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{"endpoint:", "debitcardtxn", "records_processed:", "[2 items]", "2025-07-08T10:30:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("unexported field rendered:\n%s", got)
	}
}

func TestRenderer_TableMapIsSorted(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render(map[string]int{"b": 2, "a": 1, "c": 3}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "a:") || !strings.HasPrefix(lines[2], "c:") {
		t.Errorf("unexpected order:\n%s", buf.String())
	}
}

func TestRenderer_TableSlice(t *testing.T) {
	type row struct {
		Endpoint string `json:"endpoint"`
		Format   string `json:"format"`
	}
	var buf bytes.Buffer
	r := NewRendererWithWriter(FormatTable, true, &buf)
	if err := r.Render([]row{{"csvtest", "csv"}, {"pdftest", "pdf"}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "endpoint") || !strings.Contains(lines[2], "pdftest") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
}

func TestRenderer_TableEmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRendererWithWriter(FormatTable, true, &buf).Render([]string{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("empty slice output = %q", buf.String())
	}
}

func TestRenderer_NoColorDoesNotAffectJSON(t *testing.T) {
	var color, plain bytes.Buffer
	data := map[string]string{"key": "value"}
	if err := NewRendererWithWriter(FormatJSON, false, &color).Render(data); err != nil {
		t.Fatal(err)
	}
	if err := NewRendererWithWriter(FormatJSON, true, &plain).Render(data); err != nil {
		t.Fatal(err)
	}
	if color.String() != plain.String() {
		t.Error("--no-color should not affect JSON output")
	}
}

func TestRenderTUI_Unsupported(t *testing.T) {
	r := NewRendererWithWriter(FormatJSON, false, &bytes.Buffer{})
	if err := r.RenderTUI("contracts", nil); err == nil {
		t.Error("expected error for unsupported TUI view")
	}
}
