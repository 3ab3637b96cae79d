package parsers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/FACorreiaa/loan-ledger/pkg/money"
)

// ErrNoPaymentHistory indicates a Navient statement without any parseable
// payment-history rows. The format mandates at least one row, so this is a
// parse failure rather than an empty result.
var ErrNoPaymentHistory = errors.New("no payment history rows found")

// NavientParser reads Navient loan statements. It locates the payment
// history table and extracts one transaction per row, trying a strict
// column-oriented pattern first and a looser date/amount/description/balance
// pattern when the layout drifts.
type NavientParser struct {
	rules []rowRule
}

// NewNavientParser creates a Navient statement parser.
func NewNavientParser() *NavientParser {
	strict := regexp.MustCompile(`(?m)^\s*(` + datePattern + `)\s+(` + moneyPattern + `)\s+(` + moneyPattern + `)\s+(` + moneyPattern + `)\s+(` + moneyPattern + `)\s+(` + moneyPattern + `)\s+(` + moneyPattern + `)(?:\s+(\S[^\n]*))?\s*$`)
	loose := regexp.MustCompile(`(?m)^\s*(` + datePattern + `)\s+(` + moneyPattern + `)\s+(\S.*?\S)\s+(` + moneyPattern + `)\s*$`)

	return &NavientParser{
		rules: []rowRule{
			{name: "strict-columns", pattern: strict, build: buildNavientStrictRow},
			{name: "date-amount-description", pattern: loose, build: buildNavientLooseRow},
		},
	}
}

// Parse extracts the payment history. It fails with ErrNoPaymentHistory when
// neither row pattern matches anything, since a Navient statement always
// carries at least one history row.
func (p *NavientParser) Parse(text string) (*ParseResult, error) {
	result := &ParseResult{}

	if raw := labeledField(text, "Statement Date"); raw != "" {
		if iso, err := NormalizeDate(firstToken(raw)); err == nil {
			result.StatementDate = iso
		}
	}

	section, ok := sliceSection(text, "Payment History")
	if !ok {
		// Some layouts run the table straight after the account block with
		// no heading; fall back to scanning the whole text.
		section = text
	}

	rows, _ := applyRules(section, p.rules)
	if len(rows) == 0 {
		return nil, ErrNoPaymentHistory
	}

	result.Transactions = rows
	return result, nil
}

// buildNavientStrictRow maps the full seven-column layout: date, amount,
// principal, interest, capitalized interest, late fees, balance, optional
// comment.
func buildNavientStrictRow(m []string) (*Transaction, error) {
	date, err := NormalizeDate(m[1])
	if err != nil {
		return nil, err
	}

	amounts := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := money.ParseAmount(m[i+2])
		if err != nil {
			return nil, err
		}
		amounts[i] = v
	}

	balance := amounts[5]
	return &Transaction{
		Date:                date,
		Description:         "Payment",
		Amount:              amounts[0],
		Principal:           amounts[1],
		Interest:            amounts[2],
		CapitalizedInterest: amounts[3],
		LateFees:            amounts[4],
		Balance:             &balance,
		Comment:             strings.TrimSpace(m[8]),
	}, nil
}

// buildNavientLooseRow maps the fallback layout: date, amount, free-text
// description, balance.
func buildNavientLooseRow(m []string) (*Transaction, error) {
	date, err := NormalizeDate(m[1])
	if err != nil {
		return nil, err
	}
	amount, err := money.ParseAmount(m[2])
	if err != nil {
		return nil, err
	}
	balance, err := money.ParseAmount(m[4])
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Date:        date,
		Description: strings.TrimSpace(m[3]),
		Amount:      amount,
		Balance:     &balance,
	}, nil
}
