package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/derby/internal/db"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/testutil"
	"github.com/stretchr/testify/require"
)

// t0 is a Monday morning in UTC.
var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, e := range o.events {
		out[i] = e.Name
	}
	return out
}

type fixture struct {
	db       *sql.DB
	clock    *testutil.Clock
	projects *repository.SQLiteProjectRepo
	sessions *repository.SQLiteSessionRepo
	uow      db.UnitOfWork
	observer *recordingObserver
	timer    TimerService
	project  ProjectService
	summary  SummaryService
}

func newFixture(t *testing.T, projectNames ...string) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	return buildFixture(t, database, testutil.NewTestUoW(database), projectNames...)
}

func buildFixture(t *testing.T, database *sql.DB, uow db.UnitOfWork, projectNames ...string) *fixture {
	t.Helper()
	f := &fixture{
		db:       database,
		clock:    testutil.NewClock(t0),
		projects: repository.NewSQLiteProjectRepo(database),
		sessions: repository.NewSQLiteSessionRepo(database),
		uow:      uow,
		observer: &recordingObserver{},
	}
	f.timer = NewTimerService(f.sessions, f.projects, uow, f.clock.Now, f.observer)
	f.project = NewProjectService(f.projects, uow, f.clock.Now, f.observer)
	f.summary = NewSummaryService(f.sessions, f.projects, f.clock.Now, f.observer)

	ctx := context.Background()
	for _, name := range projectNames {
		require.NoError(t, f.projects.Create(ctx, testutil.NewTestProject(name)))
	}
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
}
