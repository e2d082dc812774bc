// Package transform implements the format-specific transformations.
//
// A transformer is selected by the contract's declared format only. Every
// failure (including panics raised inside parser libraries) surfaces as an
// *Error wrapping ErrProcessing; nothing escapes the transformer boundary.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justapithecus/filebridge/clock"
	"github.com/justapithecus/filebridge/contract"
	"github.com/justapithecus/filebridge/result"
)

// ErrProcessing classifies parse and transform failures.
var ErrProcessing = errors.New("processing failed")

// Error is a transform failure with a human-readable cause.
type Error struct {
	Format contract.Format
	File   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s processing error: %v", formatLabel(e.Format), e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrProcessing.
func (e *Error) Is(target error) bool { return target == ErrProcessing }

func formatLabel(f contract.Format) string {
	switch f {
	case contract.FormatExcel:
		return "Excel"
	case contract.FormatText:
		return "TXT"
	default:
		return strings.ToUpper(string(f))
	}
}

// Input is a fully materialized source file.
type Input struct {
	// Name is the source filename (no directory).
	Name string
	// Token is the date token the file was resolved for.
	Token string
	Data  []byte
}

// Transformer converts one raw input according to a contract.
type Transformer interface {
	Transform(ctx context.Context, in Input, c contract.Contract) (result.Result, error)
}

// Set dispatches to the transformer registered for a format.
type Set struct {
	byFormat map[contract.Format]Transformer
}

// NewSet returns the standard transformers, stamping generation times from clk.
func NewSet(clk clock.Clock) *Set {
	return &Set{byFormat: map[contract.Format]Transformer{
		contract.FormatCSV:   &CSV{Clock: clk},
		contract.FormatExcel: &Excel{Clock: clk},
		contract.FormatText:  &Text{Clock: clk},
		contract.FormatPDF:   &PDF{Clock: clk},
	}}
}

// With returns a copy of the set with t registered for f.
func (s *Set) With(f contract.Format, t Transformer) *Set {
	m := make(map[contract.Format]Transformer, len(s.byFormat)+1)
	for k, v := range s.byFormat {
		m[k] = v
	}
	m[f] = t
	return &Set{byFormat: m}
}

// For returns the transformer for a format.
func (s *Set) For(f contract.Format) (Transformer, error) {
	t, ok := s.byFormat[f]
	if !ok {
		return nil, &Error{Format: f, Err: fmt.Errorf("unsupported format: %s", f)}
	}
	return t, nil
}

// Run selects the contract's transformer and runs it, converting every
// failure into an *Error.
func (s *Set) Run(ctx context.Context, in Input, c contract.Contract) (res result.Result, err error) {
	t, err := s.For(c.Format)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &Error{Format: c.Format, File: in.Name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	res, err = t.Transform(ctx, in, c)
	if err != nil {
		var te *Error
		if !errors.As(err, &te) {
			err = &Error{Format: c.Format, File: in.Name, Err: err}
		}
		return nil, err
	}
	return res, nil
}
