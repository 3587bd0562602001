package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ZeroShort is rendered by FormatShort for zero durations.
const ZeroShort = "-"

var (
	hoursPattern   = regexp.MustCompile(`(\d+)h`)
	minutesPattern = regexp.MustCompile(`(\d+)m`)
	barePattern    = regexp.MustCompile(`^\d+$`)
)

// ParseDuration parses "1h30m", "1h 30m", "2h", "45m" or a bare number of
// minutes such as "90".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty duration: %w", ErrInvalidDuration)
	}

	var hours, minutes int64
	var err error
	hm := hoursPattern.FindStringSubmatch(s)
	mm := minutesPattern.FindStringSubmatch(s)
	switch {
	case hm != nil || mm != nil:
		if hm != nil {
			if hours, err = parseUnit(hm[1], time.Hour); err != nil {
				return 0, fmt.Errorf("duration %q: %w", s, err)
			}
		}
		if mm != nil {
			if minutes, err = parseUnit(mm[1], time.Minute); err != nil {
				return 0, fmt.Errorf("duration %q: %w", s, err)
			}
		}
	case barePattern.MatchString(s):
		if minutes, err = parseUnit(s, time.Minute); err != nil {
			return 0, fmt.Errorf("duration %q: %w", s, err)
		}
	default:
		return 0, fmt.Errorf("cannot parse duration %q: %w", s, ErrInvalidDuration)
	}

	if hours > (math.MaxInt64-minutes*int64(time.Minute))/int64(time.Hour) {
		return 0, fmt.Errorf("duration %q is too long: %w", s, ErrInvalidDuration)
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive: %w", s, ErrInvalidDuration)
	}
	return d, nil
}

// parseUnit parses a count of unit, rejecting counts whose duration would
// overflow time.Duration.
func parseUnit(digits string, unit time.Duration) (int64, error) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%s exceeds the longest duration: %w", digits, ErrInvalidDuration)
	}
	return n, nil
}

// FormatShort renders whole seconds as "H:MM". Zero renders as ZeroShort.
func FormatShort(seconds int64) string {
	if seconds <= 0 {
		return ZeroShort
	}
	return fmt.Sprintf("%d:%02d", seconds/3600, (seconds%3600)/60)
}

// FormatLong renders whole seconds as "Hh MMm SSs".
func FormatLong(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %02dm %02ds", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatClock renders whole seconds as "H:MM:SS".
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatHuman renders whole seconds as "1h 23m" or "5m".
func FormatHuman(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// DecimalHours converts seconds to hours rounded to two decimal places.
func DecimalHours(seconds int64) float64 {
	return math.Round(float64(seconds)/3600*100) / 100
}
