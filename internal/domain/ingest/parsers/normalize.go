package parsers

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// isoDate is the only date shape allowed past the parse boundary.
const isoDate = "2006-01-02"

var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// yearlessLayouts cover sources that omit the year entirely; the current
// year is assumed for those.
var yearlessLayouts = []string{
	"1/2",
	"Jan 2",
	"January 2",
}

// NormalizeDate converts a statement date string to YYYY-MM-DD. It accepts
// 1-2 digit month/day, 2- or 4-digit years, month-name forms, and dates with
// no year at all (defaulted to the current year).
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), nil
		}
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(time.Now().Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return t.Format(isoDate), nil
		}
	}

	return "", fmt.Errorf("unrecognized date format: %q", s)
}

// sectionHeader matches lines that look like statement section headings, so
// a located section can be sliced up to the next heading.
var sectionHeader = regexp.MustCompile(`(?mi)^\s*[A-Z][A-Za-z /&]{2,40}:?\s*$`)

// sliceSection returns the text between the first occurrence of header and
// the next recognizable section heading (or end of text). The match on
// header is case-insensitive and ignores surrounding whitespace.
func sliceSection(text, header string) (string, bool) {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(header))
	if idx < 0 {
		return "", false
	}

	start := idx + len(header)
	rest := text[start:]

	// Skip to the end of the header line before scanning for the next one.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}

	if loc := sectionHeader.FindStringIndex(rest); loc != nil {
		return rest[:loc[0]], true
	}
	return rest, true
}

// labeledField extracts the value following "Label:" (colon optional) on a
// single line. Returns "" when the label is absent.
func labeledField(text, label string) string {
	re := regexp.MustCompile(`(?mi)` + regexp.QuoteMeta(label) + `\s*:?\s+(\S[^\n]*)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// moneyPattern is the sub-expression shared by the row rules: an optionally
// parenthesized, optionally $-prefixed amount with optional thousands
// separators.
const moneyPattern = `\(?-?\$?[0-9][0-9,]*(?:\.[0-9]{1,2})?\)?`

// datePattern matches the numeric date shapes found in statement rows.
const datePattern = `[0-9]{1,2}/[0-9]{1,2}(?:/[0-9]{2,4})?`
