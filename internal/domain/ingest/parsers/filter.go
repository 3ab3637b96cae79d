package parsers

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// loanKeywords narrows generic bank/bookkeeping exports down to loan
// activity. Servicer names plus the generic loan vocabulary.
var loanKeywords = []string{
	"mohela",
	"navient",
	"nelnet",
	"aidvantage",
	"great lakes",
	"sallie mae",
	"loan",
	"consolidation",
	"student ln",
	"dept of ed",
	"dept education",
}

// loanMatcher does a single multi-pattern scan per candidate string.
var loanMatcher = ahocorasick.NewStringMatcher(loanKeywords)

// isLoanRelated reports whether any of the given free-text fields mention a
// loan servicer or loan vocabulary. Matching is case-insensitive.
func isLoanRelated(fields ...string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		if loanMatcher.Contains([]byte(strings.ToLower(f))) {
			return true
		}
	}
	return false
}

// filterLoanRows keeps only transactions whose description, comment or check
// payee mention loan activity. Bank-statement and bookkeeping parsers run
// this after row extraction.
func filterLoanRows(rows []Transaction) []Transaction {
	kept := rows[:0]
	for _, tx := range rows {
		if isLoanRelated(tx.Description, tx.Comment) {
			kept = append(kept, tx)
		}
	}
	return kept
}
