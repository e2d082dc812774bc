// Package contract defines the immutable processing contracts of the bridge.
//
// A contract binds an endpoint id to an input filename template, an output
// filename template, a declared format and a typed rule set. Contracts are
// validated when the registry is built and never change afterwards.
package contract

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DatePlaceholder is the single placeholder every filename template carries.
const DatePlaceholder = "{date}"

// Format is the declared input format of a contract.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatText  Format = "txt"
	FormatPDF   Format = "pdf"
)

// Kind groups formats by the shape of transformation they undergo.
type Kind string

// Transformation kinds.
const (
	KindTabular  Kind = "tabular"
	KindLineText Kind = "line-text"
	KindDocument Kind = "document"
)

// ParseFormat parses a format name. "text" and "xlsx" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "txt", "text":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be csv, excel, txt or pdf)", s)
	}
}

// Kind returns the transformation kind of the format.
func (f Format) Kind() Kind {
	switch f {
	case FormatCSV, FormatExcel:
		return KindTabular
	case FormatText:
		return KindLineText
	case FormatPDF:
		return KindDocument
	default:
		return ""
	}
}

// Contract is the definition of how one endpoint's files are named and
// transformed.
type Contract struct {
	Endpoint        string   `json:"endpoint" yaml:"-"`
	InputTemplate   string   `json:"input_template" yaml:"input"`
	OutputTemplate  string   `json:"output_template" yaml:"output"`
	Format          Format   `json:"format" yaml:"format"`
	Description     string   `json:"description" yaml:"description"`
	ExpectedColumns []string `json:"expected_columns,omitempty" yaml:"expected_columns,omitempty"`
	Rules           Rules    `json:"rules" yaml:"rules"`
}

// InputName instantiates the input template for a date token.
func (c Contract) InputName(token string) string {
	return Instantiate(c.InputTemplate, token)
}

// OutputName instantiates the output template for a date token.
func (c Contract) OutputName(token string) string {
	return Instantiate(c.OutputTemplate, token)
}

// Instantiate substitutes the date token into a template.
func Instantiate(template, token string) string {
	return strings.Replace(template, DatePlaceholder, token, 1)
}

// clone returns a deep copy so callers can never mutate registry state.
func (c Contract) clone() Contract {
	c.ExpectedColumns = slices.Clone(c.ExpectedColumns)
	c.Rules = c.Rules.clone()
	return c
}

// Validate checks the contract's templates, format and rule variant.
func (c Contract) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if err := validateTemplate("input", c.InputTemplate); err != nil {
		errs = append(errs, err)
	}
	if err := validateTemplate("output", c.OutputTemplate); err != nil {
		errs = append(errs, err)
	}
	if c.Format.Kind() == "" {
		errs = append(errs, fmt.Errorf("unsupported format %q", c.Format))
	} else if err := c.Rules.validateFor(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Rules.Tabular != nil && c.Rules.Tabular.ValidateHeaders && len(c.ExpectedColumns) == 0 {
		errs = append(errs, errors.New("validate_headers requires expected_columns"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("contract %q: %w", c.Endpoint, err)
	}
	return nil
}

func validateTemplate(name, tmpl string) error {
	switch n := strings.Count(tmpl, DatePlaceholder); {
	case tmpl == "":
		return fmt.Errorf("%s template is required", name)
	case n != 1:
		return fmt.Errorf("%s template %q must contain exactly one %s placeholder, found %d", name, tmpl, DatePlaceholder, n)
	case strings.ContainsAny(tmpl, `/\`) || strings.Contains(tmpl, ".."):
		return fmt.Errorf("%s template %q must be a flat filename", name, tmpl)
	}
	return nil
}
