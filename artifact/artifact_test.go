package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
	"github.com/justapithecus/filebridge/storage"
)

var now = time.Date(2025, 7, 8, 9, 0, 0, 0, time.UTC)

func contractFor(t *testing.T, endpoint string) contract.Contract {
	t.Helper()
	c, err := contract.Default().Lookup(endpoint)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestWrite_Table(t *testing.T) {
	ctx := context.Background()
	dir := storage.NewMemory("b")
	w := NewWriter(dir, clock.Fixed{T: now})

	tbl := result.NewTable([]string{"id", "name"}, [][]string{{"1", "Alice"}, {"2", "Bob"}})
	meta, err := w.Write(ctx, contractFor(t, "csvtest"), "080725", tbl)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := &Meta{
		Endpoint:    "csvtest",
		File:        "csv_output_080725.csv",
		Path:        "mem://b/csv_output_080725.csv",
		SizeBytes:   int64(len("id,name\n1,Alice\n2,Bob\n")),
		Records:     2,
		Encoding:    result.EncodingCSV,
		GeneratedAt: now,
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}

	content, size, err := Read(ctx, dir, meta.File)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if size != meta.SizeBytes || content.Format != "csv" || *content.Shape != [2]int{2, 2} {
		t.Errorf("unexpected content %+v (size %d)", content, size)
	}
	if content.Records[1]["name"] != "Bob" {
		t.Errorf("records = %v", content.Records)
	}
}

func TestWrite_StructuredOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := storage.NewMemory("b")
	w := NewWriter(dir, clock.Fixed{T: now})
	c := contractFor(t, "txttest")

	first := &result.Structured{Value: []map[string]any{{"line_number": 1}, {"line_number": 2}}}
	if _, err := w.Write(ctx, c, "080725", first); err != nil {
		t.Fatal(err)
	}
	second := &result.Structured{Value: []map[string]any{{"line_number": 1}}}
	meta, err := w.Write(ctx, c, "080725", second)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Records != 1 || meta.Encoding != result.EncodingJSON {
		t.Errorf("meta = %+v", meta)
	}

	files, err := dir.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one artifact, got %+v", files)
	}

	content, _, err := Read(ctx, dir, "text_processed_080725.json")
	if err != nil {
		t.Fatal(err)
	}
	if content.Format != "json" || len(content.Data.([]any)) != 1 {
		t.Errorf("content = %+v", content)
	}
}

func TestWrite_YAMLAndMsgpackOutputs(t *testing.T) {
	ctx := context.Background()
	dir := storage.NewMemory("b")
	w := NewWriter(dir, clock.Fixed{T: now})
	value := &result.Structured{Value: map[string]any{"total_lines": 2}}

	for _, out := range []string{"notes_{date}.yaml", "notes_{date}.msgpack"} {
		c := contractFor(t, "ebbsreport")
		c.OutputTemplate = out

		meta, err := w.Write(ctx, c, "080725", value)
		if err != nil {
			t.Fatalf("Write %s: %v", out, err)
		}
		content, _, err := Read(ctx, dir, meta.File)
		if err != nil {
			t.Fatalf("Read %s: %v", meta.File, err)
		}
		if content.Format != string(meta.Encoding) {
			t.Errorf("%s: format %q, encoding %q", meta.File, content.Format, meta.Encoding)
		}
		m, ok := content.Data.(map[string]any)
		if !ok || m["total_lines"] == nil {
			t.Errorf("%s: data = %#v", meta.File, content.Data)
		}
	}
}

func TestDecode_TextFallback(t *testing.T) {
	c, err := Decode("report.txt", []byte("plain words"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Format != "text" || c.Text != "plain words" {
		t.Errorf("content = %+v", c)
	}
}

func TestRead_Missing(t *testing.T) {
	_, _, err := Read(context.Background(), storage.NewMemory("b"), "missing.csv")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSizeKB(t *testing.T) {
	tests := map[int64]float64{0: 0, 512: 0.5, 1024: 1, 1536: 1.5, 1000: 0.98}
	for in, want := range tests {
		if got := SizeKB(in); got != want {
			t.Errorf("SizeKB(%d) = %v, want %v", in, got, want)
		}
	}
}
