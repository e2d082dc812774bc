// Package artifact serializes transformation results into the target
// directory and decodes them back for retrieval.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
	"github.com/justapithecus/filebridge/storage"
)

// Meta describes a written artifact.
type Meta struct {
	Endpoint    string          `json:"endpoint"`
	File        string          `json:"file"`
	Path        string          `json:"path"`
	SizeBytes   int64           `json:"size_bytes"`
	Records     int             `json:"records"`
	Encoding    result.Encoding `json:"encoding"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// SizeKB returns the size in kilobytes rounded to two decimals.
func (m *Meta) SizeKB() float64 { return SizeKB(m.SizeBytes) }

// SizeKB converts bytes to kilobytes rounded to two decimals.
func SizeKB(n int64) float64 {
	return math.Round(float64(n)/1024*100) / 100
}

// Writer persists results into a target directory.
type Writer struct {
	Dir   *storage.Dir
	Clock clock.Clock
}

// NewWriter returns a writer over dir.
func NewWriter(dir *storage.Dir, clk clock.Clock) *Writer {
	return &Writer{Dir: dir, Clock: clk}
}

// Write serializes res under the contract's output name for token, replacing
// any existing artifact for that date.
func (w *Writer) Write(ctx context.Context, c contract.Contract, token string, res result.Result) (*Meta, error) {
	name := c.OutputName(token)
	enc := result.EncodingFor(res.Kind(), name)

	var buf bytes.Buffer
	if err := result.Encode(&buf, res, enc); err != nil {
		return nil, fmt.Errorf("encode %s as %s: %w", name, enc, err)
	}
	if err := w.Dir.Write(ctx, name, buf.Bytes()); err != nil {
		return nil, err
	}

	return &Meta{
		Endpoint:    c.Endpoint,
		File:        name,
		Path:        w.Dir.Path(name),
		SizeBytes:   int64(buf.Len()),
		Records:     res.RecordCount(),
		Encoding:    enc,
		GeneratedAt: w.Clock.Now(),
	}, nil
}

// Content is a decoded artifact.
type Content struct {
	Format  string              `json:"format"`
	Records []map[string]string `json:"records,omitempty"`
	Shape   *[2]int             `json:"shape,omitempty"`
	Columns []string            `json:"columns,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Text    string              `json:"content,omitempty"`
}

// Read loads and decodes an artifact by extension. Files that are neither
// CSV, YAML nor MessagePack are decoded as JSON when possible and returned
// as text otherwise.
func Read(ctx context.Context, dir *storage.Dir, name string) (*Content, int64, error) {
	data, err := dir.Read(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	c, err := Decode(name, data)
	if err != nil {
		return nil, 0, err
	}
	return c, int64(len(data)), nil
}

// Decode decodes artifact bytes named name.
func Decode(name string, data []byte) (*Content, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		t, err := result.ParseCSV(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		shape := [2]int{len(t.Rows), len(t.Columns)}
		return &Content{Format: "csv", Records: t.Records(-1), Shape: &shape, Columns: t.Columns}, nil
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return &Content{Format: "yaml", Data: v}, nil
	case ".msgpack", ".mpk":
		var v any
		if err := msgpack.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return &Content{Format: "msgpack", Data: v}, nil
	default:
		var v any
		if json.Unmarshal(data, &v) == nil {
			return &Content{Format: "json", Data: v}, nil
		}
		return &Content{Format: "text", Text: string(data)}, nil
	}
}
