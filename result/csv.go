package result

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header row followed by data rows. Short rows are padded
// with empty cells; a row wider than the header is an error. A leading UTF-8
// byte order mark is ignored.
func ParseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(rec))
		}
		rows = append(rows, rec)
	}
	return NewTable(UniqueColumns(header), rows), nil
}

// UniqueColumns names blank headers column_N (1-based position) and suffixes
// repeated names with .1, .2, ... so every column keeps its own key.
func UniqueColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		out[i] = name
	}
	taken := make(map[string]bool, len(out))
	for _, name := range out {
		taken[name] = true
	}
	for i, name := range out {
		k, dup := seen[name]
		if !dup {
			seen[name] = 1
			continue
		}
		for taken[fmt.Sprintf("%s.%d", name, k)] {
			k++
		}
		out[i] = fmt.Sprintf("%s.%d", name, k)
		taken[out[i]] = true
		seen[name] = k + 1
	}
	return out
}
