package transform

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
)

// PDF extracts the text of every page of a document.
type PDF struct {
	Clock clock.Clock
}

// DocumentText is the document transformer's record.
type DocumentText struct {
	ExtractedText string       `json:"extracted_text" yaml:"extracted_text" msgpack:"extracted_text"`
	PageCount     int          `json:"page_count" yaml:"page_count" msgpack:"page_count"`
	ProcessedAt   string       `json:"processed_at" yaml:"processed_at" msgpack:"processed_at"`
	SourceFile    string       `json:"source_file" yaml:"source_file" msgpack:"source_file"`
	Summary       *TextSummary `json:"summary,omitempty" yaml:"summary,omitempty" msgpack:"summary,omitempty"`
}

// Transform implements Transformer.
func (x *PDF) Transform(ctx context.Context, in Input, c contract.Contract) (result.Result, error) {
	text, pages, err := ExtractText(ctx, in.Data)
	if err != nil {
		return nil, err
	}

	doc := DocumentText{
		ExtractedText: text,
		PageCount:     pages,
		ProcessedAt:   clock.Timestamp(x.Clock.Now()),
		SourceFile:    in.Name,
	}
	if c.Rules.Document != nil && c.Rules.Document.Summary {
		doc.Summary = &TextSummary{
			WordCount: len(strings.Fields(text)),
			CharCount: utf8.RuneCountInString(text),
			LineCount: strings.Count(text, "\n") + 1,
		}
	}
	return &result.Structured{Value: doc}, nil
}

// ExtractText returns the text of every page in page order, each followed by
// a newline, and the page count. Any page failure aborts the extraction.
func ExtractText(ctx context.Context, data []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open document: %w", err)
	}

	n := r.NumPage()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			return "", 0, fmt.Errorf("page %d: missing page object", i)
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), n, nil
}
