package summary

import (
	"fmt"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

// Range bounds a summary. Nil ends are unbounded. End is exclusive.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Validate rejects ranges whose start is after their end.
func (r Range) Validate() error {
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return fmt.Errorf("start %s after end %s: %w",
			r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339), domain.ErrInvalidRange)
	}
	return nil
}

// Options selects what the engine aggregates and how rows are laid out.
type Options struct {
	Range          Range
	Classification domain.Classification
	SortBy         domain.SortKey
	Group          bool
	Granularity    domain.Granularity

	// Location sets day boundaries for midnight splits and buckets.
	// Defaults to time.Local.
	Location *time.Location

	// Now closes open sessions. Defaults to time.Now().
	Now time.Time
}

// withDefaults fills zero values and validates enum strings.
func (o Options) withDefaults() (Options, error) {
	if o.Classification == "" {
		o.Classification = domain.ClassAll
	}
	if o.SortBy == "" {
		o.SortBy = domain.SortByPriority
	}
	if o.Granularity == "" {
		o.Granularity = domain.GranularityNone
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}

	if !domain.ValidClassifications[string(o.Classification)] {
		return o, fmt.Errorf("unknown classification %q", o.Classification)
	}
	if !domain.ValidSortKeys[string(o.SortBy)] {
		return o, fmt.Errorf("unknown sort key %q", o.SortBy)
	}
	if !domain.ValidGranularities[string(o.Granularity)] {
		return o, fmt.Errorf("unknown granularity %q", o.Granularity)
	}
	if err := o.Range.Validate(); err != nil {
		return o, err
	}
	return o, o.checkGranularity()
}

// checkGranularity requires weekly buckets to cover exactly one Monday to
// Monday week and monthly buckets exactly one calendar month, so every
// column holds a single date span.
func (o Options) checkGranularity() error {
	var unit string
	switch o.Granularity {
	case domain.GranularityWeekly:
		unit = "one Monday-to-Sunday week"
	case domain.GranularityMonthly:
		unit = "one calendar month"
	default:
		return nil
	}
	if o.Range.Start == nil || o.Range.End == nil {
		return fmt.Errorf("%s granularity needs %s: %w", o.Granularity, unit, domain.ErrInvalidRange)
	}

	s := o.Range.Start.In(o.Location)
	start := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, o.Location)
	var end time.Time
	aligned := s.Equal(start)
	if o.Granularity == domain.GranularityWeekly {
		aligned = aligned && start.Weekday() == time.Monday
		end = start.AddDate(0, 0, weeklyBuckets)
	} else {
		aligned = aligned && start.Day() == 1
		end = start.AddDate(0, 1, 0)
	}
	if !aligned || !o.Range.End.Equal(end) {
		return fmt.Errorf("%s granularity needs %s, got %s to %s: %w",
			o.Granularity, unit, s.Format("2006-01-02"), o.Range.End.In(o.Location).Format("2006-01-02"),
			domain.ErrInvalidRange)
	}
	return nil
}

func (o Options) includesProjects() bool {
	return o.Classification == domain.ClassAll || o.Classification == domain.ClassProjects
}

func (o Options) includesBackground() bool {
	return o.Classification == domain.ClassAll || o.Classification == domain.ClassBackground
}
