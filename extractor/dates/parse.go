package dates

import (
	"strings"
	"time"
)

// ParseFunc turns a date-shaped string into a calendar date.
type ParseFunc func(string) (time.Time, bool)

// Layouts are tried in order; the first one that yields a valid date wins.
var Layouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-06",
	"2/1/06",
	"2.1.06",
	"2-Jan-2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-1-2",
	"2-Jan-06",
	"2 Jan 06",
}

// Layout returns a ParseFunc for a single time layout. The whole value has to
// match the layout and describe a real day between years 1 and 9999.
// Two-digit years follow the time package rule: 69-99 is 19xx, 00-68 is 20xx.
func Layout(layout string) ParseFunc {
	return func(value string) (time.Time, bool) {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err != nil || t.Year() < 1 || t.Year() > 9999 {
			return time.Time{}, false
		}
		return t, true
	}
}

// FirstOf combines parsers so the first success wins.
func FirstOf(parsers ...ParseFunc) ParseFunc {
	return func(value string) (time.Time, bool) {
		for _, p := range parsers {
			if t, ok := p(value); ok {
				return t, true
			}
		}
		return time.Time{}, false
	}
}

var defaultParser = func() ParseFunc {
	parsers := make([]ParseFunc, len(Layouts))
	for i, l := range Layouts {
		parsers[i] = Layout(l)
	}
	return FirstOf(parsers...)
}()

// Parse converts a matched date string into a date at midnight UTC.
// Any run of whitespace inside the value counts as a single space.
func Parse(value string) (time.Time, bool) {
	return defaultParser(strings.Join(strings.FieldsFunc(value, IsSpace), " "))
}

// FindDate scans line for the leftmost date shape and parses it.
func FindDate(line string) (time.Time, bool) {
	m, ok := Anywhere.Find(line)
	if !ok {
		return time.Time{}, false
	}
	return Parse(m.Text)
}
