package extractor

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// CleanOCRText normalizes recognized text before parsing: whitespace runs
// collapse to single spaces (newlines are preserved so row patterns still
// line up), full-width digits become ASCII, and the classic OCR confusions
// O-for-0 and l-for-1 are corrected when they sit next to digits.
func CleanOCRText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = spaceRuns.ReplaceAllString(line, " ")
		line = normalizeDigits(line)
		lines[i] = strings.TrimRight(line, " ")
	}

	out := strings.Join(lines, "\n")
	out = newlineRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// normalizeDigits converts full-width digits to ASCII and fixes O/0 and l/1
// confusions adjacent to digits.
func normalizeDigits(line string) string {
	runes := []rune(line)

	for i, r := range runes {
		if r >= '０' && r <= '９' {
			runes[i] = '0' + (r - '０')
		}
	}

	for i, r := range runes {
		if r != 'O' && r != 'o' && r != 'l' {
			continue
		}
		prevDigit := i > 0 && isASCIIDigit(runes[i-1])
		nextDigit := i < len(runes)-1 && isASCIIDigit(runes[i+1])
		if !prevDigit && !nextDigit {
			continue
		}
		if r == 'l' {
			runes[i] = '1'
		} else {
			runes[i] = '0'
		}
	}

	return string(runes)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
