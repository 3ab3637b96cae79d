package parsers

import (
	"github.com/FACorreiaa/loan-ledger/pkg/money"
)

// MohelaParser reads MOHELA billing statements. These statements carry no
// payment-history table, only statement-level summary figures, so the parser
// extracts each labeled field independently and never returns transactions.
// A missing field leaves its summary slot nil rather than failing the parse.
type MohelaParser struct{}

// NewMohelaParser creates a MOHELA statement parser.
func NewMohelaParser() *MohelaParser {
	return &MohelaParser{}
}

// summaryFields maps the labels printed on MOHELA statements to summary
// slots. Each label is tried independently; the order is the order they
// appear in on the printed statement.
var mohelaSummaryFields = []struct {
	label  string
	assign func(s *Summary, v *float64)
}{
	{"Unpaid Principal", func(s *Summary, v *float64) { s.UnpaidPrincipal = v }},
	{"Payments Since Last Bill", func(s *Summary, v *float64) { s.PaymentsSinceLastBill = v }},
	{"Past Due Amount", func(s *Summary, v *float64) { s.PastDueAmount = v }},
	{"Current Amount Due", func(s *Summary, v *float64) { s.CurrentAmountDue = v }},
	{"Unpaid Fees", func(s *Summary, v *float64) { s.UnpaidFees = v }},
}

// Parse extracts the statement date and summary figures. It does not error
// on missing fields; a MOHELA statement with metadata only is a valid parse
// with zero transactions.
func (p *MohelaParser) Parse(text string) (*ParseResult, error) {
	result := &ParseResult{}

	if raw := labeledField(text, "Statement Date"); raw != "" {
		if iso, err := NormalizeDate(firstToken(raw)); err == nil {
			result.StatementDate = iso
		}
	}

	for _, field := range mohelaSummaryFields {
		raw := labeledField(text, field.label)
		if raw == "" {
			continue
		}
		v, err := money.ParseAmount(firstToken(raw))
		if err != nil {
			continue
		}
		field.assign(&result.Summary, &v)
	}

	return result, nil
}

// firstToken trims a labeled value down to its leading token, dropping any
// trailing prose on the same line ("$12,345.67 as of 3/15" -> "$12,345.67").
func firstToken(s string) string {
	for i, r := range s {
		if r == ' ' || r == '\t' {
			return s[:i]
		}
	}
	return s
}
