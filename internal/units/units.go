// Package units parses measurement inputs with optional length-unit
// suffixes and converts them to micrometers.
package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorCode identifies the reason a parse failed.
type ErrorCode string

const (
	InvalidNumber ErrorCode = "INVALID_NUMBER"
	InvalidUnit   ErrorCode = "INVALID_UNIT"
)

// ParseError reports a rejected input along with the original text,
// so the UI can echo it back in a validation message.
type ParseError struct {
	Code  ErrorCode
	Input string
}

func (e *ParseError) Error() string {
	switch e.Code {
	case InvalidUnit:
		return fmt.Sprintf("unrecognized unit in %q (use um, mm, or pm)", e.Input)
	default:
		return fmt.Sprintf("invalid number %q", e.Input)
	}
}

// Is reports whether err is a ParseError carrying the given code.
func Is(err error, code ErrorCode) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Code == code
}

// Conversion factors to micrometers. "pm" has always meant a
// thousandth of a micrometer in saved workspaces; changing the factor
// would silently rescale old measurements on load.
var factors = map[string]float64{
	"um": 1,
	"u":  1,
	"mm": 1000,
	"pm": 0.001,
}

// Parse converts text like "12.5um", "1.5 mm", "200µm" or a bare
// number (treated as micrometers) into a value in micrometers.
//
// Normalization lowercases the input, strips all spaces, and maps the
// micro sign and Greek mu onto "u". The numeric literal is the maximal
// leading run of digits containing at most one decimal point; whatever
// follows must be a known unit suffix.
func Parse(text string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "µ", "u") // micro sign
	s = strings.ReplaceAll(s, "μ", "u") // greek small mu

	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, &ParseError{Code: InvalidNumber, Input: text}
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, &ParseError{Code: InvalidNumber, Input: text}
	}

	suffix := s[end:]
	if suffix == "" {
		// Bare numbers are already micrometers.
		return value, nil
	}
	factor, ok := factors[suffix]
	if !ok {
		return 0, &ParseError{Code: InvalidUnit, Input: text}
	}
	return value * factor, nil
}

// FormatMicrometers renders a value the way the height field echoes it
// back after a successful commit.
func FormatMicrometers(v float64) string {
	return fmt.Sprintf("%.2f µm", v)
}
