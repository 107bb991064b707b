package dates

import (
	"regexp"
	"strings"
	"unicode"
)

// SpaceClass matches a single whitespace character. Unlike \s it also
// covers \v, NBSP and the other Unicode spaces PDF text tends to carry.
const SpaceClass = `[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]`

// IsSpace is the rune form of SpaceClass.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

const (
	monthPrefix = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`
	spacedMonth = `\d{1,2}` + SpaceClass + `+` + monthPrefix + `[,]?` + SpaceClass + `+\d{2,4}`
)

// Shapes lists the supported date shapes in priority order.
// At any position in a line the first shape that matches wins.
var Shapes = []string{
	`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`,           // 1/1/2024, 01-01-24
	`\d{1,2}[.]\d{1,2}[.]\d{2,4}`,             // 01.01.2024
	spacedMonth,                               // 01 Jan 2024, 1 Jan, 24
	`\d{1,2}[-]` + monthPrefix + `[-]\d{2,4}`, // 01-Jan-24
	`\d{4}[-/]\d{2}[-/]\d{2}`,                 // 2024-01-01
}

// Match is a date-shaped substring of a line.
type Match struct {
	Text   string
	Offset int
}

// Matcher finds date-shaped substrings in a line.
type Matcher struct {
	re *regexp.Regexp
}

var (
	// Anywhere returns the leftmost date anywhere in the line.
	Anywhere = newMatcher(false)
	// Anchored only accepts a date at the very start of the line.
	Anchored = newMatcher(true)
)

func newMatcher(anchored bool) *Matcher {
	alts := make([]string, len(Shapes))
	for i, s := range Shapes {
		if anchored {
			s = "^" + s
		}
		alts[i] = "(?:" + s + ")"
	}
	return &Matcher{re: regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))}
}

// Find returns the first date-shaped substring of line.
func (m *Matcher) Find(line string) (Match, bool) {
	loc := m.re.FindStringIndex(line)
	if loc == nil {
		return Match{}, false
	}
	return Match{Text: line[loc[0]:loc[1]], Offset: loc[0]}, true
}

// MatchString reports whether line contains a date shape.
func (m *Matcher) MatchString(line string) bool {
	return m.re.MatchString(line)
}
