package parsers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/FACorreiaa/loan-ledger/pkg/money"
)

// ErrNoBankSections indicates a bank statement where neither the checks
// section nor the withdrawals section produced any rows.
var ErrNoBankSections = errors.New("no check or withdrawal rows found")

// bankParser handles checking-account statements that list loan payments
// among ordinary activity. The statement has two distinct subsections --
// paper checks and other withdrawals/debits -- each with its own row shape.
// All rows are extracted first, then narrowed to loan activity by keyword.
//
// KeyBank and Truist statements share this structure and differ only in the
// section headings they print.
type bankParser struct {
	institution     ParserType
	checkHeaders    []string
	debitHeaders    []string
	checkRules      []rowRule
	withdrawalRules []rowRule
}

// NewKeyBankParser creates a parser for KeyBank checking statements.
func NewKeyBankParser() *bankParser {
	return newBankParser(TypeKeyBank,
		[]string{"Paper Checks", "Checks"},
		[]string{"Other Withdrawals", "Withdrawals"},
	)
}

// NewTruistParser creates a parser for Truist checking statements.
func NewTruistParser() *bankParser {
	return newBankParser(TypeTruist,
		[]string{"Checks"},
		[]string{"Other withdrawals, debits and service charges", "Other Debits", "Debits"},
	)
}

func newBankParser(institution ParserType, checkHeaders, debitHeaders []string) *bankParser {
	// Check rows: date, check number (sometimes starred for out-of-sequence),
	// amount, optional payee text.
	checkRow := regexp.MustCompile(`(?m)^\s*(` + datePattern + `)\s+(\d{2,6})\*?\s+(` + moneyPattern + `)(?:\s+(\S[^\n]*))?\s*$`)

	// Withdrawal rows: date, amount, description. Fallback flips the column
	// order to description-first, which some statement years use.
	withdrawalRow := regexp.MustCompile(`(?m)^\s*(` + datePattern + `)\s+(` + moneyPattern + `)\s+(\S.*?)\s*$`)
	withdrawalRowAlt := regexp.MustCompile(`(?m)^\s*(` + datePattern + `)\s+(\S.*?\S)\s+(` + moneyPattern + `)\s*$`)

	return &bankParser{
		institution:  institution,
		checkHeaders: checkHeaders,
		debitHeaders: debitHeaders,
		checkRules: []rowRule{
			{name: "check-row", pattern: checkRow, build: buildCheckRow},
		},
		withdrawalRules: []rowRule{
			{name: "date-amount-description", pattern: withdrawalRow, build: buildWithdrawalRow},
			{name: "date-description-amount", pattern: withdrawalRowAlt, build: buildWithdrawalRowAlt},
		},
	}
}

// Parse extracts check and withdrawal rows, then keeps only loan-related
// activity. Zero rows after filtering is a legitimate outcome (a month with
// no loan payment); zero rows before filtering means the statement had no
// recognizable sections and is a parse failure.
func (p *bankParser) Parse(text string) (*ParseResult, error) {
	result := &ParseResult{}

	if raw := labeledField(text, "Statement Date"); raw != "" {
		if iso, err := NormalizeDate(firstToken(raw)); err == nil {
			result.StatementDate = iso
		}
	}

	var all []Transaction

	if section, ok := firstSection(text, p.checkHeaders); ok {
		rows, _ := applyRules(section, p.checkRules)
		all = append(all, rows...)
	}
	if section, ok := firstSection(text, p.debitHeaders); ok {
		rows, _ := applyRules(section, p.withdrawalRules)
		all = append(all, rows...)
	}

	if len(all) == 0 {
		return nil, ErrNoBankSections
	}

	result.Transactions = filterLoanRows(all)
	return result, nil
}

// firstSection tries each candidate heading in order and returns the first
// section found.
func firstSection(text string, headers []string) (string, bool) {
	for _, h := range headers {
		if section, ok := sliceSection(text, h); ok {
			return section, true
		}
	}
	return "", false
}

func buildCheckRow(m []string) (*Transaction, error) {
	date, err := NormalizeDate(m[1])
	if err != nil {
		return nil, err
	}
	amount, err := money.ParseAmount(m[3])
	if err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(m[4])
	if desc == "" {
		desc = "Check #" + m[2]
	}

	return &Transaction{
		Date:        date,
		Description: desc,
		CheckNumber: m[2],
		Amount:      amount,
	}, nil
}

func buildWithdrawalRow(m []string) (*Transaction, error) {
	date, err := NormalizeDate(m[1])
	if err != nil {
		return nil, err
	}
	amount, err := money.ParseAmount(m[2])
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Date:        date,
		Description: strings.TrimSpace(m[3]),
		Amount:      amount,
	}, nil
}

func buildWithdrawalRowAlt(m []string) (*Transaction, error) {
	date, err := NormalizeDate(m[1])
	if err != nil {
		return nil, err
	}
	amount, err := money.ParseAmount(m[3])
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Date:        date,
		Description: strings.TrimSpace(m[2]),
		Amount:      amount,
	}, nil
}
