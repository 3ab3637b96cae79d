// Package classifier decides which statement format a document belongs to.
// Detection is two-tier: the filename is checked first because it is cheap
// and reliable, then the extracted text. First match wins.
package classifier

import (
	"strings"

	"github.com/FACorreiaa/loan-ledger/internal/domain/ingest/parsers"
)

// signature maps an institution marker substring to its parser type. Order
// matters: earlier entries win when a document mentions several
// institutions.
type signature struct {
	marker string
	typ    parsers.ParserType
}

// signatures lists the markers for every known institution/export format.
// Markers are matched case-insensitively as substrings.
var signatures = []signature{
	{"mohela", parsers.TypeMohela},
	{"navient", parsers.TypeNavient},
	{"keybank", parsers.TypeKeyBank},
	{"key bank", parsers.TypeKeyBank},
	{"truist", parsers.TypeTruist},
	{"quickbooks", parsers.TypeQuickBooks},
	{"intuit qb", parsers.TypeQuickBooks},
}

// Classify returns the parser type for a document given its extracted text
// and original filename. A filename match always beats a content match. When
// neither matches, TypeUnknown is returned; that is a terminal outcome the
// caller records, not an error.
func Classify(text, fileName string) parsers.ParserType {
	name := strings.ToLower(fileName)
	for _, sig := range signatures {
		if strings.Contains(name, sig.marker) {
			return sig.typ
		}
	}

	body := strings.ToLower(text)
	for _, sig := range signatures {
		if strings.Contains(body, sig.marker) {
			return sig.typ
		}
	}

	return parsers.TypeUnknown
}
