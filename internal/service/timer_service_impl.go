package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/derby/internal/db"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
)

// timerService serializes every mutation behind mu and runs it in one
// transaction, so each is a single read-check-write sequence.
type timerService struct {
	mu       sync.Mutex
	sessions repository.SessionRepo
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	now      Clock
	observer UseCaseObserver
}

func NewTimerService(
	sessions repository.SessionRepo,
	projects repository.ProjectRepo,
	uow db.UnitOfWork,
	clock Clock,
	observers ...UseCaseObserver,
) TimerService {
	return &timerService{
		sessions: sessions,
		projects: projects,
		uow:      uow,
		now:      clockOrDefault(clock),
		observer: useCaseObserverOrNoop(observers),
	}
}

// txRepos are the repositories bound to one transaction.
type txRepos struct {
	sessions repository.SessionRepo
	projects repository.ProjectRepo
}

func (s *timerService) withinTx(ctx context.Context, fn func(ctx context.Context, r txRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, txRepos{
			sessions: repository.NewSQLiteSessionRepo(tx),
			projects: repository.NewSQLiteProjectRepo(tx),
		})
	})
}

func (s *timerService) Start(ctx context.Context, projectName string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": projectName}
	defer func() { observe(ctx, s.observer, "timer.start", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		session, err = startSession(ctx, r, projectName, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["session_id"] = session.ID
	return session, nil
}

func startSession(ctx context.Context, r txRepos, projectName string, now time.Time) (*domain.Session, error) {
	if _, err := r.projects.GetByName(ctx, projectName); err != nil {
		return nil, unknownProject(err, projectName)
	}

	_, err := r.sessions.GetActiveByProject(ctx, projectName)
	switch {
	case err == nil:
		return nil, fmt.Errorf("project %q: %w", projectName, domain.ErrAlreadyActive)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	session := &domain.Session{
		ProjectName: projectName,
		StartTime:   now,
		CreatedAt:   now,
	}
	if err := r.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Pause opens a pause interval. Unknown, stopped and already paused sessions
// all report ErrNotActive.
func (s *timerService) Pause(ctx context.Context, sessionID string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session_id": sessionID}
	defer func() { observe(ctx, s.observer, "timer.pause", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		session, err = r.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return mapNotFound(err, domain.ErrNotActive, "session %s", sessionID)
		}
		if !session.IsActive() || session.IsPaused {
			return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotActive)
		}

		pause, err := r.sessions.AddPause(ctx, sessionID, s.now().UTC())
		if err != nil {
			return err
		}
		session.Pauses = append(session.Pauses, *pause)
		session.IsPaused = true
		return r.sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Resume closes the open pause interval and refreshes the paused-seconds cache.
func (s *timerService) Resume(ctx context.Context, sessionID string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session_id": sessionID}
	defer func() { observe(ctx, s.observer, "timer.resume", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		session, err = r.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return mapNotFound(err, domain.ErrNotPaused, "session %s", sessionID)
		}
		if !session.IsActive() || !session.IsPaused {
			return fmt.Errorf("session %s: %w", sessionID, domain.ErrNotPaused)
		}

		now := s.now().UTC()
		if err := closeOpenPause(ctx, r, session, now); err != nil {
			return err
		}
		session.IsPaused = false
		session.PausedSeconds = closedPauseSeconds(session)
		return r.sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func closeOpenPause(ctx context.Context, r txRepos, session *domain.Session, at time.Time) error {
	open := session.OpenPause()
	if open == nil {
		return nil
	}
	if err := r.sessions.ClosePause(ctx, session.ID, at); err != nil {
		return err
	}
	open.ResumedAt = &at
	return nil
}

// stopSession ends an active session at now. An open pause is closed at the
// same instant, so a paused session keeps its pre-pause duration.
func stopSession(ctx context.Context, r txRepos, session *domain.Session, notes string, now time.Time) error {
	if !session.IsActive() {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrNotActive)
	}
	if err := closeOpenPause(ctx, r, session, now); err != nil {
		return err
	}
	session.EndTime = &now
	session.IsPaused = false
	session.PausedSeconds = closedPauseSeconds(session)
	if notes != "" {
		session.Notes = notes
	}
	return r.sessions.Update(ctx, session)
}

func (s *timerService) Stop(ctx context.Context, sessionID, notes string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session_id": sessionID}
	defer func() { observe(ctx, s.observer, "timer.stop", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		session, err = r.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return mapNotFound(err, domain.ErrNotActive, "session %s", sessionID)
		}
		return stopSession(ctx, r, session, notes, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	fields["project"] = session.ProjectName
	return session, nil
}

func (s *timerService) StopProject(ctx context.Context, projectName, notes string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": projectName}
	defer func() { observe(ctx, s.observer, "timer.stop", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		session, err = r.sessions.GetActiveByProject(ctx, projectName)
		if err != nil {
			return mapNotFound(err, domain.ErrNotActive, "project %q", projectName)
		}
		return stopSession(ctx, r, session, notes, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	fields["session_id"] = session.ID
	return session, nil
}

// StopLatest stops the most recently started active session.
func (s *timerService) StopLatest(ctx context.Context, notes string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "timer.stop", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		session, err = latestActive(ctx, r)
		if err != nil {
			return err
		}
		return stopSession(ctx, r, session, notes, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	fields["session_id"] = session.ID
	fields["project"] = session.ProjectName
	return session, nil
}

func latestActive(ctx context.Context, r txRepos) (*domain.Session, error) {
	active, err := r.sessions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrNotActive
	}
	return active[len(active)-1], nil
}

// LogManual records a closed, backdated session. It never touches the
// tracking slot, so it succeeds while the project has an active session.
func (s *timerService) LogManual(ctx context.Context, entry ManualEntry) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": entry.Project, "duration_s": int64(entry.Duration / time.Second)}
	defer func() { observe(ctx, s.observer, "timer.log", startedAt, fields, err) }()

	if entry.Duration <= 0 {
		return nil, fmt.Errorf("logging %s: %w", entry.Duration, domain.ErrInvalidDuration)
	}

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		if _, err := r.projects.GetByName(ctx, entry.Project); err != nil {
			return unknownProject(err, entry.Project)
		}

		start := entry.Date.UTC()
		if entry.Date.IsZero() {
			start = s.now().UTC().Add(-entry.Duration)
		}
		end := start.Add(entry.Duration)
		session = &domain.Session{
			ProjectName: entry.Project,
			StartTime:   start,
			EndTime:     &end,
			Notes:       entry.Notes,
			CreatedAt:   s.now().UTC(),
		}
		return r.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	fields["session_id"] = session.ID
	return session, nil
}

// StopAll stops every active session with a single timestamp. The read and
// the stops share one transaction and the service lock, so no start can
// slip in between.
func (s *timerService) StopAll(ctx context.Context, notes string) (stopped []*domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "timer.stop_all", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		active, err := r.sessions.ListActive(ctx)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		for _, session := range active {
			if err := stopSession(ctx, r, session, notes, now); err != nil {
				return err
			}
		}
		stopped = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["stopped"] = len(stopped)
	return stopped, nil
}

// Switch stops fromProject (or the latest active session when empty) and
// starts toProject in the same transaction.
func (s *timerService) Switch(ctx context.Context, toProject, fromProject string) (result *SwitchResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"to": toProject, "from": fromProject}
	defer func() { observe(ctx, s.observer, "timer.switch", startedAt, fields, err) }()

	result = &SwitchResult{}
	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		// The unit of work re-runs this closure on SQLITE_BUSY.
		*result = SwitchResult{}
		now := s.now().UTC()

		var current *domain.Session
		var err error
		if fromProject != "" {
			current, err = r.sessions.GetActiveByProject(ctx, fromProject)
			if err != nil {
				return mapNotFound(err, domain.ErrNotActive, "project %q", fromProject)
			}
		} else {
			current, err = latestActive(ctx, r)
			if err != nil && !errors.Is(err, domain.ErrNotActive) {
				return err
			}
		}

		if current != nil && current.ProjectName != toProject {
			if err := stopSession(ctx, r, current, "", now); err != nil {
				return err
			}
			result.Stopped = current
		}

		result.Started, err = startSession(ctx, r, toProject, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel discards an active session without recording it.
func (s *timerService) Cancel(ctx context.Context, projectName string) (session *domain.Session, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project": projectName}
	defer func() { observe(ctx, s.observer, "timer.cancel", startedAt, fields, err) }()

	err = s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		if projectName == "" {
			session, err = latestActive(ctx, r)
		} else {
			session, err = r.sessions.GetActiveByProject(ctx, projectName)
			err = mapNotFound(err, domain.ErrNotActive, "project %q", projectName)
		}
		if err != nil {
			return err
		}
		return r.sessions.Delete(ctx, session.ID)
	})
	if err != nil {
		return nil, err
	}
	fields["session_id"] = session.ID
	return session, nil
}

// Delete removes a session regardless of state.
func (s *timerService) Delete(ctx context.Context, sessionID string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "timer.delete", startedAt, map[string]any{"session_id": sessionID}, err)
	}()

	return s.withinTx(ctx, func(ctx context.Context, r txRepos) error {
		return r.sessions.Delete(ctx, sessionID)
	})
}

func (s *timerService) Active(ctx context.Context) ([]*domain.Session, error) {
	return s.sessions.ListActive(ctx)
}

func (s *timerService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// ListRecent returns sessions newest first.
func (s *timerService) ListRecent(ctx context.Context, filter SessionFilter) ([]*domain.Session, error) {
	return s.sessions.Query(ctx, repository.SessionQuery{
		Project: filter.Project,
		Start:   filter.Since,
		Newest:  true,
		Limit:   filter.Limit,
	})
}
