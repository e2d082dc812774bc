package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
)

// Columns appended by tabular rules.
const (
	ColumnProcessedAt    = "processed_at"
	ColumnFileSource     = "file_source"
	ColumnProcessingDate = "processing_date"
	ColumnSourceSheet    = "source_sheet"
)

var cardNumber = regexp.MustCompile(`^(\d{4})\d{8}(\d{4})$`)

// MaskCardNumber replaces the middle eight digits of a 16-digit value with
// "****". Any other value is returned unchanged.
func MaskCardNumber(v string) string {
	return cardNumber.ReplaceAllString(v, "$1****$2")
}

// IsNumeric reports whether v parses as a finite number.
func IsNumeric(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// tabularEnv is the per-invocation context the rules stamp into rows.
type tabularEnv struct {
	source      string
	token       string
	processedAt string
}

// applyTabular runs the tabular rules in their fixed order: mask, timestamp,
// numeric validation, metadata. A nil rule set is a no-op.
func applyTabular(t *result.Table, rules *contract.TabularRules, expected []string, env tabularEnv) error {
	if rules == nil {
		return nil
	}
	if rules.ValidateHeaders {
		var missing []string
		for _, col := range expected {
			if !t.HasColumn(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing expected columns: %s", strings.Join(missing, ", "))
		}
	}
	if rules.MaskColumn != "" {
		t.MapColumn(rules.MaskColumn, MaskCardNumber)
	}
	if rules.AddProcessingTimestamp {
		t.SetColumn(ColumnProcessedAt, env.processedAt)
	}
	if col := rules.ValidateNumericColumn; col != "" {
		if idx := t.ColumnIndex(col); idx >= 0 {
			t.FilterRows(func(row []string) bool { return IsNumeric(row[idx]) })
		}
	}
	if rules.AddMetadata {
		t.SetColumn(ColumnFileSource, env.source)
		t.SetColumn(ColumnProcessingDate, env.token)
	}
	return nil
}
