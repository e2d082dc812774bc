package transform

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/iox"
	"github.com/justapithecus/filebridge/result"
)

// Excel reads every sheet of an OOXML workbook. The first row of each sheet
// is its header.
type Excel struct {
	Clock clock.Clock
}

// sheet is one worksheet's header and data rows.
type sheet struct {
	name    string
	columns []string
	rows    [][]string
}

// SheetData is the structured form of one sheet when workbooks are not
// flattened.
type SheetData struct {
	Data    []map[string]string `json:"data" yaml:"data" msgpack:"data"`
	Shape   [2]int              `json:"shape" yaml:"shape" msgpack:"shape"`
	Columns []string            `json:"columns" yaml:"columns" msgpack:"columns"`
}

// WorkbookMetadata is the "metadata" entry of a structured workbook.
type WorkbookMetadata struct {
	SheetCount  int    `json:"sheet_count" yaml:"sheet_count" msgpack:"sheet_count"`
	ProcessedAt string `json:"processed_at" yaml:"processed_at" msgpack:"processed_at"`
	SourceFile  string `json:"source_file" yaml:"source_file" msgpack:"source_file"`
}

// Transform implements Transformer.
func (x *Excel) Transform(ctx context.Context, in Input, c contract.Contract) (result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var preserve, flatten bool
	if s := c.Rules.Spreadsheet; s != nil {
		preserve, flatten = s.PreserveFormulas, s.Flatten
	}

	sheets, err := readWorkbook(in.Data, preserve)
	if err != nil {
		return nil, err
	}
	processedAt := clock.Timestamp(x.Clock.Now())

	if !flatten {
		out := make(map[string]any, len(sheets)+1)
		for _, s := range sheets {
			t := result.NewTable(s.columns, s.rows)
			out[s.name] = SheetData{
				Data:    t.Records(-1),
				Shape:   [2]int{len(t.Rows), len(t.Columns)},
				Columns: t.Columns,
			}
		}
		out["metadata"] = WorkbookMetadata{
			SheetCount:  len(sheets),
			ProcessedAt: processedAt,
			SourceFile:  in.Name,
		}
		return &result.Structured{Value: out}, nil
	}

	table := flattenSheets(sheets)
	table.SetColumn(ColumnProcessedAt, processedAt)

	env := tabularEnv{source: in.Name, token: in.Token, processedAt: processedAt}
	if err := applyTabular(table, c.Rules.Tabular, c.ExpectedColumns, env); err != nil {
		return nil, err
	}
	return table, nil
}

func readWorkbook(data []byte, preserveFormulas bool) ([]sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer iox.DiscardClose(f)

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheets := make([]sheet, 0, len(names))
	for _, name := range names {
		grid, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if preserveFormulas {
			if err := substituteFormulas(f, name, grid); err != nil {
				return nil, err
			}
		}

		s := sheet{name: name}
		if len(grid) > 0 {
			s.columns = headerNames(grid)
			s.rows = grid[1:]
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// substituteFormulas replaces cached values with "=FORMULA" text for every
// formula cell in grid.
func substituteFormulas(f *excelize.File, name string, grid [][]string) error {
	for r, row := range grid {
		for c := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			formula, err := f.GetCellFormula(name, cell)
			if err != nil {
				return fmt.Errorf("sheet %q cell %s: %w", name, cell, err)
			}
			if formula != "" {
				row[c] = "=" + strings.TrimPrefix(formula, "=")
			}
		}
	}
	return nil
}

// headerNames widens the header row to the widest row of the sheet and makes
// every name unique, so no cell is dropped or overwritten.
func headerNames(grid [][]string) []string {
	width := 0
	for _, row := range grid {
		width = max(width, len(row))
	}
	header := make([]string, width)
	copy(header, grid[0])
	return result.UniqueColumns(header)
}

// flattenSheets concatenates sheets into one table. Columns are the union of
// every sheet's header in order of first appearance, followed by source_sheet.
func flattenSheets(sheets []sheet) *result.Table {
	var columns []string
	index := map[string]int{}
	for _, s := range sheets {
		for _, col := range s.columns {
			if _, ok := index[col]; !ok {
				index[col] = len(columns)
				columns = append(columns, col)
			}
		}
	}
	if _, ok := index[ColumnSourceSheet]; !ok {
		index[ColumnSourceSheet] = len(columns)
		columns = append(columns, ColumnSourceSheet)
	}

	var rows [][]string
	for _, s := range sheets {
		for _, src := range s.rows {
			row := make([]string, len(columns))
			for i, v := range src {
				if i < len(s.columns) {
					row[index[s.columns[i]]] = v
				}
			}
			row[index[ColumnSourceSheet]] = s.name
			rows = append(rows, row)
		}
	}
	return result.NewTable(columns, rows)
}
