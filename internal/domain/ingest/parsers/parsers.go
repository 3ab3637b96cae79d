// Package parsers converts extracted statement text into normalized loan
// transactions. Each supported institution or export format has its own
// parser behind a common Parse contract; a registry maps format tags to
// implementations so the orchestrator never switches on strings.
package parsers

import (
	"errors"
	"fmt"
	"regexp"
)

// ParserType tags the institution or export format a document was parsed as.
// It is a closed set; the registry is validated against it at startup.
type ParserType string

const (
	TypeMohela     ParserType = "mohela"
	TypeNavient    ParserType = "navient"
	TypeKeyBank    ParserType = "keybank"
	TypeTruist     ParserType = "truist"
	TypeQuickBooks ParserType = "quickbooks"
	TypeUnknown    ParserType = "unknown"
)

// KnownTypes lists every format the system can parse, in registry order.
func KnownTypes() []ParserType {
	return []ParserType{TypeMohela, TypeNavient, TypeKeyBank, TypeTruist, TypeQuickBooks}
}

// Transaction is one normalized financial event extracted from a statement,
// before persistence. Dates are ISO YYYY-MM-DD; money fields are signed
// floats in the statement's currency.
type Transaction struct {
	Date                string
	Description         string
	CheckNumber         string
	Amount              float64
	Principal           float64
	Interest            float64
	CapitalizedInterest float64
	LateFees            float64
	Balance             *float64
	Comment             string
}

// Summary holds statement-level figures some formats report instead of (or
// alongside) a transaction table. A nil field means the statement did not
// carry that figure.
type Summary struct {
	UnpaidPrincipal       *float64
	PaymentsSinceLastBill *float64
	PastDueAmount         *float64
	CurrentAmountDue      *float64
	UnpaidFees            *float64
}

// ParseResult is the output of one parser run.
type ParseResult struct {
	StatementDate string // YYYY-MM-DD, empty when the statement carries none
	Transactions  []Transaction
	Summary       Summary
}

// Parser converts extracted statement text into a ParseResult. Parse is a
// pure function of the text; it performs no I/O.
type Parser interface {
	Parse(text string) (*ParseResult, error)
}

// ErrUnknownParserType indicates a lookup for a type the registry does not
// hold.
var ErrUnknownParserType = errors.New("unknown parser type")

// Registry maps parser types to implementations.
type Registry struct {
	parsers map[ParserType]Parser
}

// NewRegistry builds the registry with every known format wired in. It
// fails if any type from KnownTypes is missing an implementation, so a gap
// is caught at startup rather than mid-ingestion.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		parsers: map[ParserType]Parser{
			TypeMohela:     NewMohelaParser(),
			TypeNavient:    NewNavientParser(),
			TypeKeyBank:    NewKeyBankParser(),
			TypeTruist:     NewTruistParser(),
			TypeQuickBooks: NewQuickBooksParser(),
		},
	}

	for _, t := range KnownTypes() {
		if _, ok := r.parsers[t]; !ok {
			return nil, fmt.Errorf("registry missing parser for type %q", t)
		}
	}

	return r, nil
}

// Get returns the parser for the given type.
func (r *Registry) Get(t ParserType) (Parser, error) {
	p, ok := r.parsers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParserType, t)
	}
	return p, nil
}

// rowRule is one named extraction pattern for transaction rows. Parsers hold
// an ordered list of rules and try them in sequence; the first rule that
// matches any rows wins. This keeps the strict-then-loose fallback behavior
// explicit and testable per rule.
type rowRule struct {
	name    string
	pattern *regexp.Regexp
	build   func(match []string) (*Transaction, error)
}

// applyRules runs each rule against the section in order and returns the
// rows from the first rule that produced any, along with that rule's name.
// Rows whose build func errors are skipped rather than failing the rule.
func applyRules(section string, rules []rowRule) ([]Transaction, string) {
	for _, rule := range rules {
		matches := rule.pattern.FindAllStringSubmatch(section, -1)
		if len(matches) == 0 {
			continue
		}

		rows := make([]Transaction, 0, len(matches))
		for _, m := range matches {
			tx, err := rule.build(m)
			if err != nil || tx == nil {
				continue
			}
			rows = append(rows, *tx)
		}
		if len(rows) > 0 {
			return rows, rule.name
		}
	}
	return nil, ""
}
