// Package locale decodes Brazilian-formatted numbers ("1.234,56", "12,34%").
package locale

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is the root cause of every ParseError
var ErrInvalidNumber = errors.New("invalid locale number")

// layoutRegex accepts "." only as a thousands separator in groups of three,
// before at most one decimal ","
var layoutRegex = regexp.MustCompile(`^[+-]?(\d{1,3}(\.\d{3})+|\d*)(,\d*)?$`)

// numericRegex matches the residual after separators are normalized
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseError reports a cell that could not be converted
type ParseError struct {
	Input  string
	Symbol string // row key, empty when parsing outside a table
	Column string // source header, empty when parsing outside a table
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Symbol != "" && e.Column != "":
		return fmt.Sprintf("parse %s/%s %q: %v", e.Symbol, e.Column, e.Input, e.Err)
	case e.Column != "":
		return fmt.Sprintf("parse %s %q: %v", e.Column, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse converts a locale-formatted string into a decimal.
// A trailing "%" is stripped and the value stays a percentage number:
// "12,34%" yields 12.34, not 0.1234.
func Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	return parse(s, trimmed)
}

// ParsePlain is Parse without the percentage suffix; "12,34%" fails.
// Acquisition uses it to decide which cells are plain numerics.
func ParsePlain(s string) (decimal.Decimal, error) {
	return parse(s, strings.TrimSpace(s))
}

func parse(input, trimmed string) (decimal.Decimal, error) {
	if !layoutRegex.MatchString(trimmed) {
		return decimal.Zero, &ParseError{Input: input, Err: ErrInvalidNumber}
	}

	normalized := strings.ReplaceAll(trimmed, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)

	if !numericRegex.MatchString(normalized) {
		return decimal.Zero, &ParseError{Input: input, Err: ErrInvalidNumber}
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &ParseError{Input: input, Err: fmt.Errorf("%w: %v", ErrInvalidNumber, err)}
	}

	return d, nil
}
