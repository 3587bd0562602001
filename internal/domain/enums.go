package domain

// Classification selects which kind of project a summary section covers.
type Classification string

const (
	ClassAll        Classification = "all"
	ClassProjects   Classification = "projects"
	ClassBackground Classification = "background"
)

// ValidClassifications is the canonical set of accepted classification strings.
var ValidClassifications = map[string]bool{
	"all": true, "projects": true, "background": true,
}

// SortKey is the primary grouping key for regular projects.
type SortKey string

const (
	SortByPriority SortKey = "priority"
	SortByTag      SortKey = "tag"
)

var ValidSortKeys = map[string]bool{
	"priority": true, "tag": true,
}

// Granularity is the bucket size used to sub-divide a summary row.
type Granularity string

const (
	GranularityNone    Granularity = "none"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

var ValidGranularities = map[string]bool{
	"none": true, "weekly": true, "monthly": true,
}

// UntaggedLabel groups projects that carry no tags.
const UntaggedLabel = "Untagged"
