package summary

import (
	"fmt"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

const (
	weeklyBuckets  = 7
	monthlyBuckets = 6

	// monthlySpan is the number of days in every monthly period but the last.
	monthlySpan = 5
)

var weekdayLabels = [weeklyBuckets]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// bucketCount is the number of accumulators a row needs. A summary without
// granularity still uses one bucket so totals follow the same floor rule.
func bucketCount(g domain.Granularity) int {
	switch g {
	case domain.GranularityWeekly:
		return weeklyBuckets
	case domain.GranularityMonthly:
		return monthlyBuckets
	default:
		return 1
	}
}

// bucketIndex maps a local day to its bucket.
func bucketIndex(g domain.Granularity, day time.Time) int {
	switch g {
	case domain.GranularityWeekly:
		return MondayIndex(day.Weekday())
	case domain.GranularityMonthly:
		return MonthPeriod(day.Day())
	default:
		return 0
	}
}

// MondayIndex returns 0 for Monday through 6 for Sunday.
func MondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// MonthPeriod returns the 0-based five-day period for a day of month. The
// sixth period absorbs days 26 through the end of the month.
func MonthPeriod(dayOfMonth int) int {
	return min((dayOfMonth-1)/monthlySpan, monthlyBuckets-1)
}

// PeriodLabels returns column headers for the granularity. start, when set,
// anchors weekday dates and the length of the last monthly period.
func PeriodLabels(g domain.Granularity, start *time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	switch g {
	case domain.GranularityWeekly:
		labels := make([]string, weeklyBuckets)
		var monday time.Time
		if start != nil {
			s := start.In(loc)
			monday = time.Date(s.Year(), s.Month(), s.Day()-MondayIndex(s.Weekday()), 0, 0, 0, 0, loc)
		}
		for i := range labels {
			labels[i] = weekdayLabels[i]
			if start != nil {
				labels[i] = fmt.Sprintf("%s %02d", weekdayLabels[i], monday.AddDate(0, 0, i).Day())
			}
		}
		return labels
	case domain.GranularityMonthly:
		last := 31
		if start != nil {
			s := start.In(loc)
			last = daysIn(s.Year(), s.Month(), loc)
		}
		labels := make([]string, monthlyBuckets)
		for i := range labels {
			from := i*monthlySpan + 1
			to := from + monthlySpan - 1
			if i == monthlyBuckets-1 {
				to = last
			}
			labels[i] = fmt.Sprintf("%d-%d", from, to)
		}
		return labels
	default:
		return nil
	}
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// nextMidnight returns the start of the local day after t.
func nextMidnight(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day()+1, 0, 0, 0, 0, loc)
}

// splitByDay cuts iv at local midnights and calls fn with each day segment.
func splitByDay(iv domain.Interval, loc *time.Location, fn func(day time.Time, d time.Duration)) {
	cursor := iv.Start
	for cursor.Before(iv.End) {
		boundary := nextMidnight(cursor, loc)
		end := iv.End
		if boundary.Before(end) {
			end = boundary
		}
		fn(cursor.In(loc), end.Sub(cursor))
		cursor = end
	}
}
