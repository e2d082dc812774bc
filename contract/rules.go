package contract

import (
	"errors"
	"fmt"
)

// Rules is a tagged rule configuration: at most the variants understood by the
// contract's format may be set. Absence of a variant means "no rules".
type Rules struct {
	Tabular     *TabularRules     `json:"tabular,omitempty" yaml:"tabular,omitempty"`
	Spreadsheet *SpreadsheetRules `json:"spreadsheet,omitempty" yaml:"spreadsheet,omitempty"`
	Text        *TextRules        `json:"text,omitempty" yaml:"text,omitempty"`
	Document    *DocumentRules    `json:"document,omitempty" yaml:"document,omitempty"`
}

// TabularRules configure row-level processing of tabular data. Rules run in a
// fixed order: mask, timestamp, numeric validation, metadata.
type TabularRules struct {
	// MaskColumn names a 16-digit numeric-string column to mask. Empty disables masking.
	MaskColumn string `json:"mask_column,omitempty" yaml:"mask_column,omitempty"`
	// AddProcessingTimestamp appends a processed_at column.
	AddProcessingTimestamp bool `json:"add_processing_timestamp,omitempty" yaml:"add_processing_timestamp,omitempty"`
	// ValidateNumericColumn names a column whose non-numeric rows are dropped.
	ValidateNumericColumn string `json:"validate_numeric_column,omitempty" yaml:"validate_numeric_column,omitempty"`
	// AddMetadata appends file_source and processing_date columns.
	AddMetadata bool `json:"add_metadata,omitempty" yaml:"add_metadata,omitempty"`
	// ValidateHeaders fails the transform when an expected column is missing.
	ValidateHeaders bool `json:"validate_headers,omitempty" yaml:"validate_headers,omitempty"`
}

// SpreadsheetRules configure workbook handling.
type SpreadsheetRules struct {
	// Flatten combines every sheet into one table tagged with source_sheet.
	Flatten bool `json:"flatten,omitempty" yaml:"flatten,omitempty"`
	// PreserveFormulas emits formula text instead of cached values.
	PreserveFormulas bool `json:"preserve_formulas,omitempty" yaml:"preserve_formulas,omitempty"`
}

// TextMode selects exactly one line-text transformation.
type TextMode string

// Text modes.
const (
	TextModeRaw        TextMode = "raw"
	TextModeStructured TextMode = "structured"
	TextModeLines      TextMode = "lines"
)

// TextRules configure line-text processing.
type TextRules struct {
	Mode TextMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// AddSummary adds line/word/character counts in structured mode.
	AddSummary bool `json:"add_summary,omitempty" yaml:"add_summary,omitempty"`
}

// EffectiveMode returns the configured mode, defaulting to raw passthrough.
func (r *TextRules) EffectiveMode() TextMode {
	if r == nil || r.Mode == "" {
		return TextModeRaw
	}
	return r.Mode
}

// DocumentRules configure document text extraction.
type DocumentRules struct {
	// Summary appends word/character/line counts over the extracted text.
	Summary bool `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func (r Rules) clone() Rules {
	if r.Tabular != nil {
		t := *r.Tabular
		r.Tabular = &t
	}
	if r.Spreadsheet != nil {
		s := *r.Spreadsheet
		r.Spreadsheet = &s
	}
	if r.Text != nil {
		t := *r.Text
		r.Text = &t
	}
	if r.Document != nil {
		d := *r.Document
		r.Document = &d
	}
	return r
}

// validateFor rejects rule variants the format's transformer does not understand.
func (r Rules) validateFor(f Format) error {
	var errs []error
	reject := func(variant string) {
		errs = append(errs, fmt.Errorf("%s rules are not valid for format %s", variant, f))
	}

	switch f {
	case FormatCSV:
		if r.Spreadsheet != nil {
			reject("spreadsheet")
		}
		if r.Text != nil {
			reject("text")
		}
		if r.Document != nil {
			reject("document")
		}
	case FormatExcel:
		if r.Text != nil {
			reject("text")
		}
		if r.Document != nil {
			reject("document")
		}
		if r.Tabular != nil && (r.Spreadsheet == nil || !r.Spreadsheet.Flatten) {
			errs = append(errs, errors.New("tabular rules on an excel contract require spreadsheet.flatten"))
		}
	case FormatText:
		if r.Tabular != nil {
			reject("tabular")
		}
		if r.Spreadsheet != nil {
			reject("spreadsheet")
		}
		if r.Document != nil {
			reject("document")
		}
		if r.Text != nil {
			switch r.Text.Mode {
			case "", TextModeRaw, TextModeStructured, TextModeLines:
			default:
				errs = append(errs, fmt.Errorf("unknown text mode %q (must be raw, structured or lines)", r.Text.Mode))
			}
		}
	case FormatPDF:
		if r.Tabular != nil {
			reject("tabular")
		}
		if r.Spreadsheet != nil {
			reject("spreadsheet")
		}
		if r.Text != nil {
			reject("text")
		}
	}
	return errors.Join(errs...)
}
