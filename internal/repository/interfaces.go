package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

// ProjectFilter narrows List. Nil Background returns both kinds; an empty Tag
// matches every project.
type ProjectFilter struct {
	Background *bool
	Tag        string
}

// SessionQuery selects sessions overlapping [Start, End). Nil bounds are
// unbounded. Active sessions overlap every range that starts before now.
type SessionQuery struct {
	Project    string
	Start      *time.Time
	End        *time.Time
	Background *bool
	ClosedOnly bool

	// Newest orders by start time descending, which combined with Limit
	// returns the most recent sessions.
	Newest bool
	Limit  int
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	Rename(ctx context.Context, oldName, newName string) error
	UpdatePriority(ctx context.Context, name string, priority int) error
	Delete(ctx context.Context, name string) error
	AddTag(ctx context.Context, projectName, tag string) error
	RemoveTag(ctx context.Context, projectName, tag string) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.Session) error
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Query(ctx context.Context, q SessionQuery) ([]*domain.Session, error)
	GetActiveByProject(ctx context.Context, projectName string) (*domain.Session, error)
	ListActive(ctx context.Context) ([]*domain.Session, error)
	RenameProject(ctx context.Context, oldName, newName string) (int64, error)
	DeleteByProject(ctx context.Context, projectName string) (int64, error)
	AddPause(ctx context.Context, sessionID string, pausedAt time.Time) (*domain.PauseInterval, error)
	ClosePause(ctx context.Context, sessionID string, resumedAt time.Time) error
}

type SettingsRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) (map[string]string, error)
}
