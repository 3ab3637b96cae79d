package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/loan-ledger/pkg/money"
)

// ErrNoTabularRows indicates a QuickBooks export with no data rows at all.
var ErrNoTabularRows = errors.New("no tabular rows found")

// quickBooksRow is one raw row of a QuickBooks transaction export. The tags
// cover the column names QuickBooks uses across export variants; gocsv
// matches them by header.
type quickBooksRow struct {
	Date        string `csv:"Date"`
	TxnDate     string `csv:"Transaction date"`
	Type        string `csv:"Transaction type"`
	Num         string `csv:"Num"`
	Contact     string `csv:"Contact"`
	Name        string `csv:"Name"`
	Memo        string `csv:"Memo/Description"`
	Description string `csv:"Description"`
	Account     string `csv:"Account"`
	Split       string `csv:"Split"`
	TotalAmount string `csv:"Total amount"`
	Amount      string `csv:"Amount"`
}

// QuickBooksParser reads QuickBooks transaction exports. The input is
// already tabular, so parsing is row mapping rather than pattern matching:
// unmarshal every row, keep rows whose contact or memo mentions loan
// activity, and normalize dates and accounting-style negative amounts.
type QuickBooksParser struct{}

// NewQuickBooksParser creates a QuickBooks export parser.
func NewQuickBooksParser() *QuickBooksParser {
	return &QuickBooksParser{}
}

// Parse maps export rows to transactions. An export that parses but holds
// no loan-related rows yields an empty transaction list, not an error.
func (p *QuickBooksParser) Parse(text string) (*ParseResult, error) {
	// The reader is built per call so concurrent Parse calls never touch
	// gocsv's package-level reader hook.
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var rows []quickBooksRow
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal export rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTabularRows
	}

	result := &ParseResult{}
	for _, row := range rows {
		contact := coalesce(row.Contact, row.Name)
		memo := coalesce(row.Memo, row.Description, row.Split)

		if !isLoanRelated(contact, memo, row.Account) {
			continue
		}

		dateStr := coalesce(row.Date, row.TxnDate)
		date, err := NormalizeDate(dateStr)
		if err != nil {
			continue
		}

		amount, err := money.ParseAmount(coalesce(row.TotalAmount, row.Amount))
		if err != nil {
			continue
		}

		desc := contact
		if desc == "" {
			desc = memo
		}

		result.Transactions = append(result.Transactions, Transaction{
			Date:        date,
			Description: desc,
			CheckNumber: strings.TrimSpace(row.Num),
			Amount:      amount,
			Comment:     memo,
		})
	}

	return result, nil
}

// coalesce returns the first non-blank value.
func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
