// Package result defines the two shapes a transformation can produce.
//
// A Result is either a *Table (ordered columns, uniformly keyed rows) or a
// *Structured value (nested maps, sequences and primitives). The artifact
// writer consumes both through the Result interface.
package result

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"slices"
)

// Kind discriminates the result union.
type Kind string

// Result kinds.
const (
	KindTabular    Kind = "tabular"
	KindStructured Kind = "structured"
)

// Result is the output of a transformer.
type Result interface {
	Kind() Kind
	// RecordCount is the row count for tables; for structured values it is
	// the length of an outermost sequence, otherwise 1.
	RecordCount() int
	// Sample returns a small preview suitable for API responses.
	Sample(n int) any
}

// Table is a tabular result. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table, padding short rows and truncating long ones to the
// header width.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{Columns: slices.Clone(columns), Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, fit(r, len(columns)))
	}
	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Kind implements Result.
func (t *Table) Kind() Kind { return KindTabular }

// RecordCount implements Result.
func (t *Table) RecordCount() int { return len(t.Rows) }

// Sample implements Result. Returns the first n rows as records.
func (t *Table) Sample(n int) any {
	return t.Records(n)
}

// ColumnIndex returns the index of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// SetColumn sets every row's value for name, appending the column if missing.
func (t *Table) SetColumn(name, value string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		t.Columns = append(t.Columns, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], value)
		}
		return
	}
	for i := range t.Rows {
		t.Rows[i][idx] = value
	}
}

// MapColumn rewrites every value of a column. No-op when the column is absent.
func (t *Table) MapColumn(name string, fn func(string) string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return
	}
	for i := range t.Rows {
		t.Rows[i][idx] = fn(t.Rows[i][idx])
	}
}

// FilterRows keeps the rows for which keep returns true.
func (t *Table) FilterRows(keep func(row []string) bool) {
	t.Rows = slices.DeleteFunc(t.Rows, func(r []string) bool { return !keep(r) })
}

// Records returns up to n rows as column -> value maps. n < 0 returns all rows.
func (t *Table) Records(n int) []map[string]string {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]map[string]string, 0, n)
	for _, row := range t.Rows[:n] {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// WriteCSV serializes the table as delimited rows with a header.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Structured is an arbitrarily nested value of maps, sequences and primitives.
type Structured struct {
	Value any
}

// Kind implements Result.
func (s *Structured) Kind() Kind { return KindStructured }

// RecordCount implements Result.
func (s *Structured) RecordCount() int {
	v := reflect.ValueOf(s.Value)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len()
	}
	return 1
}

// Sample implements Result. Structured values are returned whole; callers
// truncate their string form.
func (s *Structured) Sample(int) any {
	return s.Value
}

// Verify implementations.
var (
	_ Result = (*Table)(nil)
	_ Result = (*Structured)(nil)
)
