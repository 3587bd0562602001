package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/summary"
)

// TimerService owns the per-project tracking slot: at most one session per
// project may be active at a time.
type TimerService interface {
	Start(ctx context.Context, projectName string) (*domain.Session, error)
	Pause(ctx context.Context, sessionID string) (*domain.Session, error)
	Resume(ctx context.Context, sessionID string) (*domain.Session, error)
	Stop(ctx context.Context, sessionID, notes string) (*domain.Session, error)
	StopProject(ctx context.Context, projectName, notes string) (*domain.Session, error)
	StopLatest(ctx context.Context, notes string) (*domain.Session, error)
	LogManual(ctx context.Context, entry ManualEntry) (*domain.Session, error)
	StopAll(ctx context.Context, notes string) ([]*domain.Session, error)
	Switch(ctx context.Context, toProject, fromProject string) (*SwitchResult, error)
	Cancel(ctx context.Context, projectName string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	Active(ctx context.Context) ([]*domain.Session, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	ListRecent(ctx context.Context, filter SessionFilter) ([]*domain.Session, error)
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context, filter repository.ProjectFilter) ([]*domain.Project, error)
	Rename(ctx context.Context, oldName, newName string) (int64, error)
	SetPriority(ctx context.Context, name string, priority int) error
	Delete(ctx context.Context, name string, deleteSessions bool) (int64, error)
	AddTag(ctx context.Context, name, tag string) error
	RemoveTag(ctx context.Context, name, tag string) error
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

type SummaryService interface {
	Summarize(ctx context.Context, req SummaryRequest) (*summary.Report, error)
}

type ExportService interface {
	ExportCSV(ctx context.Context, w io.Writer, req ExportRequest) (int, error)
}

type SettingsService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) (map[string]string, error)
}

// ManualEntry is a backdated session. A zero Date ends the entry at now.
type ManualEntry struct {
	Project  string
	Duration time.Duration
	Notes    string
	Date     time.Time
}

// SwitchResult reports both halves of a switch. Stopped is nil when nothing
// was running.
type SwitchResult struct {
	Stopped *domain.Session
	Started *domain.Session
}

// SessionFilter narrows ListRecent. Zero values mean no restriction.
type SessionFilter struct {
	Project string
	Since   *time.Time
	Limit   int
}

// SummaryRequest mirrors summary.Options without the clock, which the
// service supplies.
type SummaryRequest struct {
	Range          summary.Range
	Classification domain.Classification
	SortBy         domain.SortKey
	Group          bool
	Granularity    domain.Granularity
	Location       *time.Location
}

// ExportRequest selects completed sessions for export.
type ExportRequest struct {
	Range    summary.Range
	Project  string
	Location *time.Location
}
