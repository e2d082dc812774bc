package transform

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
)

// Text transforms whole-file UTF-8 text in exactly one mode.
type Text struct {
	Clock clock.Clock
}

// TextSummary counts lines, words and characters.
type TextSummary struct {
	LineCount int `json:"line_count" yaml:"line_count" msgpack:"line_count"`
	WordCount int `json:"word_count" yaml:"word_count" msgpack:"word_count"`
	CharCount int `json:"char_count" yaml:"char_count" msgpack:"char_count"`
}

// TextDocument is the structured-mode record.
type TextDocument struct {
	TotalLines  int          `json:"total_lines" yaml:"total_lines" msgpack:"total_lines"`
	Content     []string     `json:"content" yaml:"content" msgpack:"content"`
	ProcessedAt string       `json:"processed_at" yaml:"processed_at" msgpack:"processed_at"`
	SourceFile  string       `json:"source_file" yaml:"source_file" msgpack:"source_file"`
	Summary     *TextSummary `json:"summary,omitempty" yaml:"summary,omitempty" msgpack:"summary,omitempty"`
}

// TextLine is one per-line-mode record.
type TextLine struct {
	LineNumber int    `json:"line_number" yaml:"line_number" msgpack:"line_number"`
	Content    string `json:"content" yaml:"content" msgpack:"content"`
	Length     int    `json:"length" yaml:"length" msgpack:"length"`
}

// RawText is the passthrough record used when no mode is configured.
type RawText struct {
	RawContent  string `json:"raw_content" yaml:"raw_content" msgpack:"raw_content"`
	ProcessedAt string `json:"processed_at" yaml:"processed_at" msgpack:"processed_at"`
}

// Transform implements Transformer.
func (x *Text) Transform(ctx context.Context, in Input, c contract.Contract) (result.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utf8.Valid(in.Data) {
		return nil, errors.New("input is not valid UTF-8")
	}
	content := string(in.Data)
	processedAt := clock.Timestamp(x.Clock.Now())

	switch c.Rules.Text.EffectiveMode() {
	case contract.TextModeStructured:
		lines := SplitLines(content)
		doc := TextDocument{
			TotalLines:  len(lines),
			Content:     lines,
			ProcessedAt: processedAt,
			SourceFile:  in.Name,
		}
		if c.Rules.Text.AddSummary {
			doc.Summary = &TextSummary{
				LineCount: len(lines),
				WordCount: len(strings.Fields(content)),
				CharCount: utf8.RuneCountInString(content),
			}
		}
		return &result.Structured{Value: doc}, nil

	case contract.TextModeLines:
		lines := SplitLines(content)
		records := make([]TextLine, 0, len(lines))
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			records = append(records, TextLine{
				LineNumber: i + 1,
				Content:    trimmed,
				Length:     utf8.RuneCountInString(trimmed),
			})
		}
		return &result.Structured{Value: records}, nil

	default:
		return &result.Structured{Value: RawText{RawContent: content, ProcessedAt: processedAt}}, nil
	}
}

// SplitLines trims surrounding whitespace from the whole text and splits it
// on newlines. Empty text has no lines.
func SplitLines(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return []string{}
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
