package contract

// DefaultContracts returns the built-in contracts of the A -> B bridge.
func DefaultContracts() []Contract {
	return []Contract{
		{
			Endpoint:        "debitcardtxn",
			InputTemplate:   "debitcard_input_{date}.csv",
			OutputTemplate:  "debitcard_processed_{date}.csv",
			Format:          FormatCSV,
			Description:     "Debit card transaction processing",
			ExpectedColumns: []string{"card_number", "amount", "merchant", "timestamp"},
			Rules: Rules{Tabular: &TabularRules{
				MaskColumn:             "card_number",
				AddProcessingTimestamp: true,
				ValidateNumericColumn:  "amount",
			}},
		},
		{
			Endpoint:       "ebbsreport",
			InputTemplate:  "ebbs_report_{date}.txt",
			OutputTemplate: "ebbs_processed_{date}.txt",
			Format:         FormatText,
			Description:    "EBBS system report processing",
			Rules:          Rules{Text: &TextRules{Mode: TextModeStructured, AddSummary: true}},
		},
		{
			Endpoint:       "pdftest",
			InputTemplate:  "test_document_{date}.pdf",
			OutputTemplate: "pdf_extracted_{date}.txt",
			Format:         FormatPDF,
			Description:    "PDF text extraction and processing",
			Rules:          Rules{Document: &DocumentRules{Summary: true}},
		},
		{
			Endpoint:       "csvtest",
			InputTemplate:  "csv_input_{date}.csv",
			OutputTemplate: "csv_output_{date}.csv",
			Format:         FormatCSV,
			Description:    "Generic CSV processing",
			Rules:          Rules{Tabular: &TabularRules{AddMetadata: true}},
		},
		{
			Endpoint:       "exceltest",
			InputTemplate:  "excel_input_{date}.xlsx",
			OutputTemplate: "excel_output_{date}.csv",
			Format:         FormatExcel,
			Description:    "Excel to CSV conversion",
			Rules:          Rules{Spreadsheet: &SpreadsheetRules{Flatten: true}},
		},
		{
			Endpoint:       "txttest",
			InputTemplate:  "text_input_{date}.txt",
			OutputTemplate: "text_processed_{date}.json",
			Format:         FormatText,
			Description:    "Text file processing to JSON",
			Rules:          Rules{Text: &TextRules{Mode: TextModeLines}},
		},
	}
}

// Default returns a registry of DefaultContracts.
func Default() *Registry {
	return MustNewRegistry(DefaultContracts()...)
}
