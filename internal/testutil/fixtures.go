package testutil

import (
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

// Project options
type ProjectOption func(*domain.Project)

func WithPriority(p int) ProjectOption {
	return func(pr *domain.Project) {
		pr.Priority = p
	}
}

func WithTags(tags ...string) ProjectOption {
	return func(pr *domain.Project) {
		pr.Tags = tags
	}
}

func AsBackground() ProjectOption {
	return func(pr *domain.Project) {
		pr.IsBackground = true
		pr.Priority = domain.BackgroundPriority
		pr.Tags = nil
	}
}

func WithCreatedAt(t time.Time) ProjectOption {
	return func(pr *domain.Project) {
		pr.CreatedAt = t
	}
}

// NewTestProject returns an unsaved regular project with the default priority.
// The repository assigns the ID on Create.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	p := &domain.Project{
		Name:      name,
		Priority:  domain.DefaultPriority,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session options
type SessionOption func(*domain.Session)

func WithEnd(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.EndTime = &t
	}
}

// WithDuration stops the session d after its start.
func WithDuration(d time.Duration) SessionOption {
	return func(s *domain.Session) {
		end := s.StartTime.Add(d)
		s.EndTime = &end
	}
}

func WithNotes(n string) SessionOption {
	return func(s *domain.Session) {
		s.Notes = n
	}
}

// WithPause appends a pause. A zero resumedAt leaves the pause open and marks
// the session paused.
func WithPause(pausedAt, resumedAt time.Time) SessionOption {
	return func(s *domain.Session) {
		p := domain.PauseInterval{PausedAt: pausedAt}
		if resumedAt.IsZero() {
			s.IsPaused = true
		} else {
			p.ResumedAt = &resumedAt
			s.PausedSeconds += int64(resumedAt.Sub(pausedAt) / time.Second)
		}
		s.Pauses = append(s.Pauses, p)
	}
}

// NewTestSession returns an unsaved session. Without options it is active.
func NewTestSession(project string, start time.Time, opts ...SessionOption) *domain.Session {
	s := &domain.Session{
		ProjectName: project,
		StartTime:   start,
		CreatedAt:   start,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
