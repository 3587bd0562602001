package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3

	// BackgroundPriority is stored for background tasks, which have no priority.
	BackgroundPriority = 0
)

// PriorityLabels maps priority levels to their display names.
var PriorityLabels = map[int]string{
	1: "Critical",
	2: "High",
	3: "Medium",
	4: "Low",
	5: "Very Low",
}

// PriorityLabel returns a label such as "2 (High)".
func PriorityLabel(priority int) string {
	name, ok := PriorityLabels[priority]
	if !ok {
		name = "Unknown"
	}
	return fmt.Sprintf("%d (%s)", priority, name)
}

// Project is a named bucket that sessions are tracked against. Background
// tasks are projects without priority or tags, summarized separately.
type Project struct {
	ID           string
	Name         string
	Priority     int
	Tags         []string
	IsBackground bool
	CreatedAt    time.Time
}

// Validate checks the name, priority and background invariants.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	if p.IsBackground {
		if len(p.Tags) > 0 {
			return fmt.Errorf("background task %q cannot carry tags: %w", p.Name, ErrBackgroundTask)
		}
		return nil
	}
	return ValidatePriority(p.Priority)
}

// ValidatePriority reports whether priority is within 1..5.
func ValidatePriority(priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return fmt.Errorf("priority %d must be between %d and %d: %w", priority, MinPriority, MaxPriority, ErrInvalidPriority)
	}
	return nil
}

// HasTag reports whether the project carries the named tag.
func (p *Project) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tag is a free-text label attached to regular projects.
type Tag struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	ProjectCount int
}
