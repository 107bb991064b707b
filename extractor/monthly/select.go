// Package monthly picks one representative transaction line per calendar month.
//
// Every line is re-scanned for a date anywhere in it, the dated lines are
// grouped by (year, month), and for each of the earliest months the latest
// entry on or before the target day is kept. Lines without a usable date,
// months where the target day does not exist, and months with nothing on or
// before the target day are skipped silently.
package monthly

import (
	"slices"
	"time"

	"github.com/aqlanhadi/baldigest/extractor/dates"
	"github.com/aqlanhadi/baldigest/extractor/filter"
)

const (
	DefaultTargetDay = 5
	DefaultMaxMonths = 6
)

type Options struct {
	TargetDay int
	MaxMonths int
}

func DefaultOptions() Options {
	return Options{TargetDay: DefaultTargetDay, MaxMonths: DefaultMaxMonths}
}

// MonthKey identifies a calendar month bucket.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) Compare(o MonthKey) int {
	if k.Year != o.Year {
		return k.Year - o.Year
	}
	return int(k.Month) - int(o.Month)
}

// Reference returns the cutoff date for the month, or false when the day
// does not exist in it (e.g. 30 February).
func (k MonthKey) Reference(day int) (time.Time, bool) {
	if day < 1 {
		return time.Time{}, false
	}
	ref := time.Date(k.Year, k.Month, day, 0, 0, 0, 0, time.UTC)
	if ref.Year() != k.Year || ref.Month() != k.Month {
		return time.Time{}, false
	}
	return ref, true
}

// Entry is a normalized line together with the date parsed from it.
type Entry struct {
	Date time.Time
	Line string
}

// Group is one month of entries in encounter order.
type Group struct {
	Key     MonthKey
	Entries []Entry
}

// GroupLines parses every line and buckets the dated ones by month.
// Groups come back sorted by month ascending.
func GroupLines(lines []string) []Group {
	index := map[MonthKey]int{}
	var groups []Group

	for _, raw := range lines {
		line := filter.Normalize(raw)
		date, ok := dates.FindDate(line)
		if !ok {
			continue
		}

		key := MonthKey{Year: date.Year(), Month: date.Month()}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Entries = append(groups[i].Entries, Entry{Date: date, Line: line})
	}

	slices.SortFunc(groups, func(a, b Group) int { return a.Key.Compare(b.Key) })
	return groups
}

// Pick returns the latest entry dated on or before ref. Among entries sharing
// that date the one encountered last wins.
func (g Group) Pick(ref time.Time) (Entry, bool) {
	var eligible []Entry
	for _, e := range g.Entries {
		if !e.Date.After(ref) {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		return Entry{}, false
	}

	slices.SortStableFunc(eligible, func(a, b Entry) int { return a.Date.Compare(b.Date) })
	return eligible[len(eligible)-1], true
}

// Select returns one line per month for the first MaxMonths months found,
// in ascending month order. A MaxMonths below 1 falls back to the default.
func Select(lines []string, opts Options) []string {
	if opts.MaxMonths < 1 {
		opts.MaxMonths = DefaultMaxMonths
	}

	groups := GroupLines(lines)
	if len(groups) > opts.MaxMonths {
		groups = groups[:opts.MaxMonths]
	}

	selected := []string{}
	for _, g := range groups {
		ref, ok := g.Key.Reference(opts.TargetDay)
		if !ok {
			continue
		}
		if e, ok := g.Pick(ref); ok {
			selected = append(selected, e.Line)
		}
	}
	return selected
}
