package service

import (
	"context"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/summary"
)

type summaryService struct {
	sessions repository.SessionRepo
	projects repository.ProjectRepo
	now      Clock
	observer UseCaseObserver
}

func NewSummaryService(sessions repository.SessionRepo, projects repository.ProjectRepo, clock Clock, observers ...UseCaseObserver) SummaryService {
	return &summaryService{
		sessions: sessions,
		projects: projects,
		now:      clockOrDefault(clock),
		observer: useCaseObserverOrNoop(observers),
	}
}

// Summarize loads the projects and the sessions overlapping the range, then
// aggregates them. An invalid range fails before any read.
func (s *summaryService) Summarize(ctx context.Context, req SummaryRequest) (report *summary.Report, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"classification": string(req.Classification),
		"sort":           string(req.SortBy),
		"granularity":    string(req.Granularity),
		"group":          req.Group,
	}
	defer func() { observe(ctx, s.observer, "summary.build", startedAt, fields, err) }()

	if err := req.Range.Validate(); err != nil {
		return nil, err
	}

	projects, err := s.projects.List(ctx, repository.ProjectFilter{})
	if err != nil {
		return nil, err
	}

	query := repository.SessionQuery{Start: req.Range.Start, End: req.Range.End}
	switch req.Classification {
	case domain.ClassProjects:
		query.Background = boolPtr(false)
	case domain.ClassBackground:
		query.Background = boolPtr(true)
	}
	sessions, err := s.sessions.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	fields["sessions"] = len(sessions)

	return summary.Build(summary.Input{
		Projects: projects,
		Sessions: sessions,
		Options: summary.Options{
			Range:          req.Range,
			Classification: req.Classification,
			SortBy:         req.SortBy,
			Group:          req.Group,
			Granularity:    req.Granularity,
			Location:       req.Location,
			Now:            s.now(),
		},
	})
}

func boolPtr(b bool) *bool { return &b }
