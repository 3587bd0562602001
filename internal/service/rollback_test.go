package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/derby/internal/db"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

func newFailingFixture(t *testing.T, match string, failOn int, projects ...string) (*fixture, *testutil.FailingUoW) {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := &testutil.FailingUoW{DB: database, Match: match, FailOn: failOn, Err: errInjected}
	return buildFixture(t, database, uow, projects...), uow
}

// seedActive starts sessions through the repository so the failing UoW only
// sees the operation under test.
func seedActive(t *testing.T, f *fixture, projects ...string) {
	t.Helper()
	for i, name := range projects {
		s := testutil.NewTestSession(name, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, f.sessions.Create(context.Background(), s))
	}
}

func TestStopAll_RollsBackWhenSecondStopFails(t *testing.T) {
	f, uow := newFailingFixture(t, "UPDATE sessions", 2, "alpha", "beta")
	seedActive(t, f, "alpha", "beta")
	f.advance(time.Hour)

	_, err := f.timer.StopAll(context.Background(), "")
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, []string{"UPDATE", "UPDATE"}, uow.Writes())

	active, err := f.timer.Active(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2, "first stop was rolled back")
}

func TestSwitch_RollsBackStopWhenStartFails(t *testing.T) {
	f, _ := newFailingFixture(t, "INSERT INTO sessions", 1, "alpha", "beta")
	seedActive(t, f, "alpha")
	f.advance(time.Hour)

	_, err := f.timer.Switch(context.Background(), "beta", "")
	require.ErrorIs(t, err, errInjected)

	active, err := f.timer.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "alpha", active[0].ProjectName)
}

func TestPause_RollsBackPauseIntervalWhenUpdateFails(t *testing.T) {
	f, _ := newFailingFixture(t, "UPDATE sessions", 1, "alpha")
	seedActive(t, f, "alpha")

	active, err := f.timer.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = f.timer.Pause(context.Background(), active[0].ID)
	require.ErrorIs(t, err, errInjected)

	stored, err := f.timer.Get(context.Background(), active[0].ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaused)
	assert.Empty(t, stored.Pauses)
}

func TestRename_RollsBackProjectWhenSessionMoveFails(t *testing.T) {
	f, _ := newFailingFixture(t, "UPDATE sessions", 1, "alpha")
	seedActive(t, f, "alpha")

	_, err := f.project.Rename(context.Background(), "alpha", "omega")
	require.ErrorIs(t, err, errInjected)

	_, err = f.project.Get(context.Background(), "alpha")
	require.NoError(t, err)
	_, err = f.project.Get(context.Background(), "omega")
	assert.ErrorIs(t, err, domain.ErrUnknownProject)
}

// replayUoW runs fn once and rolls it back, calls between, then runs fn
// again and commits. It stands in for a busy retry where the store changed
// between attempts.
type replayUoW struct {
	db      *sql.DB
	between func()
}

func (u *replayUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		tx, err := u.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(ctx, tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		if attempt == 0 {
			if err := tx.Rollback(); err != nil {
				return err
			}
			if u.between != nil {
				u.between()
			}
			continue
		}
		return tx.Commit()
	}
	return nil
}

func TestSwitch_RetryDoesNotReportStaleStop(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := &replayUoW{db: database}
	f := buildFixture(t, database, uow, "alpha", "beta")
	seedActive(t, f, "alpha")
	f.advance(time.Hour)

	active, err := f.sessions.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	alphaID := active[0].ID

	// alpha goes away between attempts, so the committed attempt stops nothing.
	uow.between = func() {
		require.NoError(t, f.sessions.Delete(context.Background(), alphaID))
	}

	res, err := f.timer.Switch(context.Background(), "beta", "")
	require.NoError(t, err)
	assert.Nil(t, res.Stopped, "stop from the rolled back attempt must not leak")
	require.NotNil(t, res.Started)
	assert.Equal(t, "beta", res.Started.ProjectName)

	active, err = f.timer.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "beta", active[0].ProjectName)
}
