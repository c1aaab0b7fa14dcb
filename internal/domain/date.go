package domain

import (
	"math"
	"strings"
	"time"
)

// dayFirstLayouts are the date layouts UNGRD spreadsheets have been seen to
// use. All ambiguous forms are read day-first; ISO is accepted as a
// fallback, as are the datetime renderings spreadsheet cells produce.
var dayFirstLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDayFirst parses a day-first date string to a UTC midnight time.
// Returns nil when no layout matches; an unparseable date is a data-quality
// issue to be counted by the caller, not an error.
func ParseDayFirst(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dayFirstLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}

// DateFromYMD builds a UTC midnight date from year/month/day columns. Any
// nil part yields nil. Out-of-range parts also yield nil rather than
// letting time.Date normalize them into a neighboring month.
func DateFromYMD(year, month, day *int) *time.Time {
	if year == nil || month == nil || day == nil {
		return nil
	}
	if *month < 1 || *month > 12 || *day < 1 || *day > 31 {
		return nil
	}
	t := time.Date(*year, time.Month(*month), *day, 0, 0, 0, 0, time.UTC)
	if t.Day() != *day || int(t.Month()) != *month {
		return nil
	}
	return &t
}

// DayDiff returns the signed whole-day difference a−b, floored. For the
// midnight-aligned dates the loaders produce this is exact.
func DayDiff(a, b time.Time) int {
	return int(math.Floor(a.Sub(b).Hours() / 24))
}
