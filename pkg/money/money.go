// Package money parses currency-formatted strings from statement text into
// normalized amounts. It uses shopspring/decimal for the intermediate
// arithmetic so that "1,234.56" never picks up float noise before the final
// conversion.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount indicates the input contained no numeric content.
var ErrEmptyAmount = errors.New("empty amount")

// ParseAmount converts a currency-formatted string into a signed float.
// Accepted inputs include "$1,234.56", "1234.56", "-150.00" and the
// accounting convention "(150.00)" for negative values.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmptyAmount
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	if s == "" {
		return 0, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if negative {
		d = d.Neg()
	}

	return d.InexactFloat64(), nil
}

// ParseOptionalAmount is ParseAmount for fields that may legitimately be
// absent. It returns nil when the input is blank and an error only for
// malformed non-blank input.
func ParseOptionalAmount(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
