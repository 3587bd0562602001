package summary

import (
	"fmt"
	"time"
)

// Named periods accepted by PeriodRange.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodWeek      = "week"
	PeriodLastWeek  = "last-week"
	PeriodMonth     = "month"
	PeriodLastMonth = "last-month"
	PeriodAll       = "all"
)

var ValidPeriods = map[string]bool{
	PeriodToday: true, PeriodYesterday: true, PeriodWeek: true, PeriodLastWeek: true,
	PeriodMonth: true, PeriodLastMonth: true, PeriodAll: true,
}

// PeriodRange resolves a named period to a half-open local range around now.
// Weeks start on Monday.
func PeriodRange(name string, now time.Time, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	l := now.In(loc)
	today := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -MondayIndex(today.Weekday()))
	monthStart := time.Date(l.Year(), l.Month(), 1, 0, 0, 0, 0, loc)

	span := func(start, end time.Time) Range { return Range{Start: &start, End: &end} }

	switch name {
	case PeriodToday:
		return span(today, today.AddDate(0, 0, 1)), nil
	case PeriodYesterday:
		return span(today.AddDate(0, 0, -1), today), nil
	case PeriodWeek:
		return span(weekStart, weekStart.AddDate(0, 0, 7)), nil
	case PeriodLastWeek:
		return span(weekStart.AddDate(0, 0, -7), weekStart), nil
	case PeriodMonth:
		return span(monthStart, monthStart.AddDate(0, 1, 0)), nil
	case PeriodLastMonth:
		return span(monthStart.AddDate(0, -1, 0), monthStart), nil
	case PeriodAll:
		return Range{}, nil
	default:
		return Range{}, fmt.Errorf("unknown period %q", name)
	}
}

// DayRange covers whole local days: from midnight of from to the midnight
// after to. Either bound may be zero for an open end.
func DayRange(from, to time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	var r Range
	if !from.IsZero() {
		f := from.In(loc)
		start := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc)
		r.Start = &start
	}
	if !to.IsZero() {
		t := to.In(loc)
		end := time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
		r.End = &end
	}
	return r
}
