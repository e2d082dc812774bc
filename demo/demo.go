// Package demo seeds the source directory with today's sample inputs so every
// built-in contract except pdftest can be exercised end to end.
package demo

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/iox"
	"github.com/justapithecus/filebridge/storage"
)

const debitCardCSV = `card_number,amount,merchant,timestamp
1234567890123456,150.5,Amazon,2025-07-08T10:30:00
2345678901234567,250.75,Walmart,2025-07-08T11:45:00
3456789012345678,89.99,Starbucks,2025-07-08T12:15:00
`

const ebbsReport = `EBBS Report Summary
Transaction Count: 1,250
Total Amount: $125,750.50
Failed Transactions: 5
Success Rate: 99.6%
Report Generated: 2025-07-08T10:00:00`

const genericCSV = `id,name,value,category
1,Alice,100,A
2,Bob,200,B
3,Charlie,150,A
4,Diana,300,C
5,Eve,175,B
`

const textInput = `Line 1: Important banking data
Line 2: Customer ID 12345
Line 3: Balance: $50,000
Line 4: Account Type: Premium
Line 5: Last Activity: 2025-07-08`

// Result describes a seeding run.
type Result struct {
	Status       string   `json:"status"`
	Date         string   `json:"today_date"`
	Created      []string `json:"created_files"`
	Path         string   `json:"system_a_path"`
	NextSteps    []string `json:"next_steps"`
	TestDownload []string `json:"test_download"`
}

type sample struct {
	endpoint string
	build    func() ([]byte, error)
}

func samples() []sample {
	return []sample{
		{"debitcardtxn", static(debitCardCSV)},
		{"ebbsreport", static(ebbsReport)},
		{"csvtest", static(genericCSV)},
		{"txttest", static(textInput)},
		{"exceltest", Workbook},
	}
}

func static(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

// Seed writes today's sample inputs into dir for every demo endpoint the
// registry knows. Existing files are overwritten.
func Seed(ctx context.Context, dir *storage.Dir, reg *contract.Registry, token string) (*Result, error) {
	res := &Result{
		Status:  "demo_files_created",
		Date:    token,
		Created: []string{},
		Path:    dir.Root(),
	}
	for _, s := range samples() {
		c, err := reg.Lookup(s.endpoint)
		if err != nil {
			continue
		}
		data, err := s.build()
		if err != nil {
			return nil, fmt.Errorf("build %s sample: %w", s.endpoint, err)
		}
		name := c.InputName(token)
		if err := dir.Write(ctx, name, data); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		res.Created = append(res.Created, name)
		res.NextSteps = append(res.NextSteps, "POST /api/v1/upload/"+s.endpoint)
		res.TestDownload = append(res.TestDownload, "GET /api/v1/download/"+s.endpoint)
	}
	return res, nil
}

// Workbook builds a two-sheet sample spreadsheet.
func Workbook() ([]byte, error) {
	f := excelize.NewFile()
	defer iox.DiscardClose(f)

	if err := f.SetSheetName("Sheet1", "Accounts"); err != nil {
		return nil, err
	}
	accounts := [][]any{
		{"account_id", "holder", "balance"},
		{"AC-1001", "Alice", 5200.75},
		{"AC-1002", "Bob", 310.00},
		{"AC-1003", "Charlie", 12999.99},
	}
	if err := writeRows(f, "Accounts", accounts); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Branches"); err != nil {
		return nil, err
	}
	branches := [][]any{
		{"account_id", "branch"},
		{"AC-1001", "Central"},
		{"AC-1004", "Harbour"},
	}
	if err := writeRows(f, "Branches", branches); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
