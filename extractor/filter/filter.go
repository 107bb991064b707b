// Package filter decides which statement lines look like transaction rows.
package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aqlanhadi/baldigest/extractor/dates"
)

var whitespaceRun = regexp.MustCompile(dates.SpaceClass + `{2,}`)

// Normalize trims the line and collapses runs of two or more whitespace
// characters into a single space.
func Normalize(line string) string {
	return whitespaceRun.ReplaceAllString(trim(line), " ")
}

// IsTransactionLine reports whether the normalized line starts with a date.
func IsTransactionLine(line string) bool {
	return dates.Anchored.MatchString(Normalize(line))
}

// Candidates keeps the transaction-like lines, trimmed, in their original order.
// A nil result means no line qualified.
func Candidates(lines []string) []string {
	var kept []string
	for _, line := range lines {
		if IsTransactionLine(line) {
			kept = append(kept, trim(line))
		}
	}
	return kept
}

func trim(line string) string {
	return strings.TrimFunc(line, dates.IsSpace)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// SplitLines splits text into lines. \r\n counts as one break; \r, \v, \f,
// the \x1c-\x1e separators, NEL and the Unicode line and paragraph
// separators each end a line too. A trailing break does not add an empty line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
