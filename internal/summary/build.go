package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

// Input is everything the engine needs. Projects must be in store order
// (creation time, then insertion); sessions may be in any order.
type Input struct {
	Projects []*domain.Project
	Sessions []*domain.Session
	Options  Options
}

// tally is the per-project accumulator.
type tally struct {
	project  *domain.Project
	orphaned bool
	order    int
	buckets  []time.Duration
}

func (t *tally) periods() []int64 {
	out := make([]int64, len(t.buckets))
	for i, b := range t.buckets {
		out[i] = int64(b / time.Second)
	}
	return out
}

// Build aggregates sessions into a Report. It fails only on invalid options,
// before producing any output.
func Build(in Input) (*Report, error) {
	opts, err := in.Options.withDefaults()
	if err != nil {
		return nil, err
	}

	regular, background := accumulate(in, opts)

	report := &Report{
		Options:      opts,
		PeriodLabels: PeriodLabels(opts.Granularity, opts.Range.Start, opts.Location),
	}
	n := bucketCount(opts.Granularity)
	report.CombinedPeriods = make([]int64, n)

	if opts.includesProjects() {
		var rows []Row
		switch opts.SortBy {
		case domain.SortByTag:
			rows = tagRows(regular, opts.Group, n)
		default:
			rows = priorityRows(regular, opts.Group, n)
		}
		report.Projects = newSection(domain.ClassProjects, rows, regular, n)
	}
	if opts.includesBackground() {
		report.Background = newSection(domain.ClassBackground, flatRows(background), background, n)
	}

	for _, s := range []*Section{report.Projects, report.Background} {
		if s == nil {
			continue
		}
		report.CombinedTotal += s.Total
		for i, v := range s.Periods {
			report.CombinedPeriods[i] += v
		}
	}
	report.CombinedHours = domain.DecimalHours(report.CombinedTotal)
	if opts.Granularity == domain.GranularityNone {
		report.CombinedPeriods = nil
	}
	return report, nil
}

// accumulate clips every session to the range, splits it at local midnight
// and adds each day segment to its project's bucket. It returns regular and
// background tallies in display order.
func accumulate(in Input, opts Options) (regular, background []*tally) {
	n := bucketCount(opts.Granularity)
	byName := make(map[string]*domain.Project, len(in.Projects))
	order := make(map[string]int, len(in.Projects))
	for i, p := range in.Projects {
		byName[p.Name] = p
		order[p.Name] = i
	}

	tallies := make(map[string]*tally)
	var orphans []*tally

	for _, s := range sessionsByStart(in.Sessions) {
		span := domain.Interval{Start: s.StartTime, End: s.StartTime}
		if s.EndTime != nil {
			span.End = *s.EndTime
		} else {
			span.End = opts.Now
		}
		if _, ok := span.Clip(opts.Range.Start, opts.Range.End); !ok {
			continue
		}

		t, ok := tallies[s.ProjectName]
		if !ok {
			p, known := byName[s.ProjectName]
			t = &tally{project: p, order: order[s.ProjectName], buckets: make([]time.Duration, n)}
			if !known {
				t.project = &domain.Project{Name: s.ProjectName, Priority: domain.DefaultPriority}
				t.orphaned = true
				t.order = len(in.Projects) + len(orphans)
				orphans = append(orphans, t)
			}
			tallies[s.ProjectName] = t
		}

		for _, iv := range s.WorkingIntervals(opts.Now) {
			clipped, ok := iv.Clip(opts.Range.Start, opts.Range.End)
			if !ok {
				continue
			}
			splitByDay(clipped, opts.Location, func(day time.Time, d time.Duration) {
				t.buckets[bucketIndex(opts.Granularity, day)] += d
			})
		}
	}

	for _, t := range tallies {
		if t.project.IsBackground {
			background = append(background, t)
		} else {
			regular = append(regular, t)
		}
	}
	byOrder := func(list []*tally) {
		sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	}
	byOrder(regular)
	byOrder(background)
	return regular, background
}

// sessionsByStart returns a copy ordered by start time so that orphaned
// projects are listed in order of first appearance.
func sessionsByStart(sessions []*domain.Session) []*domain.Session {
	out := make([]*domain.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func newSection(kind domain.Classification, rows []Row, tallies []*tally, n int) *Section {
	s := &Section{Kind: kind, Rows: rows, Periods: make([]int64, n)}
	for _, t := range tallies {
		for i, v := range t.periods() {
			s.Periods[i] += v
			s.Total += v
		}
	}
	s.DecimalHours = domain.DecimalHours(s.Total)
	if n == 1 {
		s.Periods = nil
	}
	if s.Rows == nil {
		s.Rows = []Row{}
	}
	return s
}

func projectRow(t *tally, group string) Row {
	periods := t.periods()
	var total int64
	for _, v := range periods {
		total += v
	}
	r := Row{
		Label:        t.project.Name,
		Project:      t.project.Name,
		Priority:     t.project.Priority,
		Tags:         t.project.Tags,
		Group:        group,
		Total:        total,
		DecimalHours: domain.DecimalHours(total),
		Orphaned:     t.orphaned,
		MultiTagged:  len(t.project.Tags) > 1,
	}
	if len(periods) > 1 {
		r.Periods = periods
	}
	return r
}

func groupRow(label string, members []*tally, n int) Row {
	periods := make([]int64, n)
	var total int64
	for _, t := range members {
		for i, v := range t.periods() {
			periods[i] += v
			total += v
		}
	}
	r := Row{Label: label, Group: label, Total: total, DecimalHours: domain.DecimalHours(total)}
	if n > 1 {
		r.Periods = periods
	}
	return r
}

// byPriority orders tallies by ascending priority, keeping store order within
// a tier.
func byPriority(tallies []*tally) []*tally {
	out := make([]*tally, len(tallies))
	copy(out, tallies)
	sort.SliceStable(out, func(i, j int) bool { return out[i].project.Priority < out[j].project.Priority })
	return out
}

func priorityRows(tallies []*tally, group bool, n int) []Row {
	sorted := byPriority(tallies)
	var rows []Row

	if group {
		for start := 0; start < len(sorted); {
			end := start
			for end < len(sorted) && sorted[end].project.Priority == sorted[start].project.Priority {
				end++
			}
			r := groupRow(domain.PriorityLabel(sorted[start].project.Priority), sorted[start:end], n)
			r.Priority = sorted[start].project.Priority
			rows = append(rows, r)
			start = end
		}
		return rows
	}

	for i, t := range sorted {
		r := projectRow(t, domain.PriorityLabel(t.project.Priority))
		r.SeparatorBefore = i > 0 && t.project.Priority != sorted[i-1].project.Priority
		rows = append(rows, r)
	}
	return rows
}

type tagGroup struct {
	label   string
	members []*tally
}

// tagGroups returns one group per tag, sorted case-insensitively, followed by
// an UntaggedLabel group for projects without tags. Members keep priority
// then store order.
func tagGroups(tallies []*tally) []tagGroup {
	index := make(map[string]int)
	var groups []tagGroup
	var untagged []*tally

	for _, t := range byPriority(tallies) {
		if len(t.project.Tags) == 0 {
			untagged = append(untagged, t)
			continue
		}
		for _, tag := range t.project.Tags {
			key := strings.ToLower(tag)
			i, ok := index[key]
			if !ok {
				i = len(groups)
				index[key] = i
				groups = append(groups, tagGroup{label: tag})
			}
			groups[i].members = append(groups[i].members, t)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].label) < strings.ToLower(groups[j].label)
	})
	if len(untagged) > 0 {
		groups = append(groups, tagGroup{label: domain.UntaggedLabel, members: untagged})
	}
	return groups
}

func tagRows(tallies []*tally, group bool, n int) []Row {
	var rows []Row
	for i, g := range tagGroups(tallies) {
		if group {
			rows = append(rows, groupRow(g.label, g.members, n))
			continue
		}
		for j, t := range g.members {
			r := projectRow(t, g.label)
			r.SeparatorBefore = i > 0 && j == 0
			rows = append(rows, r)
		}
	}
	return rows
}

// flatRows lists background tasks in store order.
func flatRows(tallies []*tally) []Row {
	rows := make([]Row, 0, len(tallies))
	for _, t := range tallies {
		r := projectRow(t, "")
		r.Priority = 0
		r.MultiTagged = false
		rows = append(rows, r)
	}
	return rows
}
