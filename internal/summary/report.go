package summary

import "github.com/alexanderramin/derby/internal/domain"

// Row is one line of a summary section: a project, a priority level or a tag.
type Row struct {
	Label string

	// Project is empty for grouped rows.
	Project  string
	Priority int
	Tags     []string

	// Group is the priority label or tag the row is listed under.
	Group string

	// Periods holds per-bucket seconds; nil without granularity.
	Periods      []int64
	Total        int64
	DecimalHours float64

	// MultiTagged marks a project repeated under more than one tag.
	MultiTagged bool

	// Orphaned marks sessions whose project row no longer exists.
	Orphaned bool

	// SeparatorBefore marks the first row of a new priority tier or tag.
	SeparatorBefore bool
}

// Section holds the rows of one classification. Totals count every project
// once even when tag rows repeat it.
type Section struct {
	Kind         domain.Classification
	Rows         []Row
	Periods      []int64
	Total        int64
	DecimalHours float64
}

// Report is the output of Build.
type Report struct {
	Options      Options
	PeriodLabels []string

	// Projects and Background are nil when the classification excludes them.
	Projects   *Section
	Background *Section

	CombinedPeriods []int64
	CombinedTotal   int64
	CombinedHours   float64
}

// IsEmpty reports whether no section has rows.
func (r *Report) IsEmpty() bool {
	return (r.Projects == nil || len(r.Projects.Rows) == 0) &&
		(r.Background == nil || len(r.Background.Rows) == 0)
}
