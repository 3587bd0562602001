package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/derby/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func sessionTestSetup(t *testing.T) (*SQLiteSessionRepo, *SQLiteProjectRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	projRepo := NewSQLiteProjectRepo(database)
	require.NoError(t, projRepo.Create(ctx, testutil.NewTestProject("alpha")))
	require.NoError(t, projRepo.Create(ctx, testutil.NewTestProject("email", testutil.AsBackground())))

	return NewSQLiteSessionRepo(database), projRepo
}

func TestSessionRepo_CreateAndGetByID(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession("alpha", day,
		testutil.WithPause(day.Add(10*time.Minute), day.Add(15*time.Minute)),
		testutil.WithDuration(time.Hour),
		testutil.WithNotes("Good session"),
	)
	require.NoError(t, repo.Create(ctx, sess))
	require.NotEmpty(t, sess.ID)

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", fetched.ProjectName)
	assert.True(t, day.Equal(fetched.StartTime))
	require.NotNil(t, fetched.EndTime)
	assert.True(t, day.Add(time.Hour).Equal(*fetched.EndTime))
	assert.Equal(t, "Good session", fetched.Notes)
	assert.Equal(t, int64(300), fetched.PausedSeconds)
	require.Len(t, fetched.Pauses, 1)
	assert.Equal(t, sess.ID, fetched.Pauses[0].SessionID)
	assert.Equal(t, 55*time.Minute, fetched.Duration(day))
}

func TestSessionRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := sessionTestSetup(t)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_UpdateAndDelete(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession("alpha", day)
	require.NoError(t, repo.Create(ctx, sess))

	end := day.Add(30 * time.Minute)
	sess.EndTime = &end
	sess.Notes = "done"
	require.NoError(t, repo.Update(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, fetched.IsActive())
	assert.Equal(t, "done", fetched.Notes)

	require.NoError(t, repo.Delete(ctx, sess.ID))
	assert.ErrorIs(t, repo.Delete(ctx, sess.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, sess), ErrNotFound)
}

func TestSessionRepo_QueryOverlapAndOrder(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	before := testutil.NewTestSession("alpha", day.Add(-3*time.Hour), testutil.WithDuration(time.Hour))
	crossing := testutil.NewTestSession("alpha", day.Add(-30*time.Minute), testutil.WithDuration(time.Hour))
	inside := testutil.NewTestSession("email", day.Add(time.Hour), testutil.WithDuration(time.Hour))
	sameStart := testutil.NewTestSession("alpha", day.Add(time.Hour), testutil.WithDuration(time.Minute))
	active := testutil.NewTestSession("alpha", day.Add(2*time.Hour))
	require.NoError(t, repo.Create(ctx, before))
	require.NoError(t, repo.Create(ctx, crossing))
	require.NoError(t, repo.Create(ctx, inside))
	require.NoError(t, repo.Create(ctx, sameStart))
	require.NoError(t, repo.Create(ctx, active))

	from, to := day, day.Add(8*time.Hour)
	got, err := repo.Query(ctx, SessionQuery{Start: &from, End: &to})
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{crossing.ID, inside.ID, sameStart.ID, active.ID}, ids)

	closed, err := repo.Query(ctx, SessionQuery{Start: &from, End: &to, ClosedOnly: true})
	require.NoError(t, err)
	assert.Len(t, closed, 3)

	bg, err := repo.Query(ctx, SessionQuery{Background: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, bg, 1)
	assert.Equal(t, inside.ID, bg[0].ID)

	regular, err := repo.Query(ctx, SessionQuery{Background: boolPtr(false)})
	require.NoError(t, err)
	assert.Len(t, regular, 4)

	recent, err := repo.Query(ctx, SessionQuery{Newest: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, active.ID, recent[0].ID)

	byProject, err := repo.Query(ctx, SessionQuery{Project: "email"})
	require.NoError(t, err)
	assert.Len(t, byProject, 1)
}

func TestSessionRepo_OrphanedSessionsCountAsRegular(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestSession("deleted-project", day, testutil.WithDuration(time.Hour))))

	regular, err := repo.Query(ctx, SessionQuery{Background: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, regular, 1)
	assert.Equal(t, "deleted-project", regular[0].ProjectName)
}

func TestSessionRepo_ActiveLookups(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	_, err := repo.GetActiveByProject(ctx, "alpha")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Create(ctx, testutil.NewTestSession("alpha", day.Add(-time.Hour), testutil.WithDuration(time.Minute))))
	running := testutil.NewTestSession("alpha", day)
	require.NoError(t, repo.Create(ctx, running))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSession("email", day.Add(time.Minute))))

	got, err := repo.GetActiveByProject(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, running.ID, got.ID)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "alpha", active[0].ProjectName)
	assert.Equal(t, "email", active[1].ProjectName)
}

func TestSessionRepo_PauseIntervals(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession("alpha", day)
	require.NoError(t, repo.Create(ctx, sess))

	assert.ErrorIs(t, repo.ClosePause(ctx, sess.ID, day), ErrNotFound)

	p, err := repo.AddPause(ctx, sess.ID, day.Add(10*time.Minute))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.OpenPause())

	require.NoError(t, repo.ClosePause(ctx, sess.ID, day.Add(20*time.Minute)))
	fetched, err = repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.OpenPause())
	assert.Equal(t, 10*time.Minute, fetched.PausedDuration(day.Add(time.Hour)))
}

func TestSessionRepo_RenameAndDeleteByProject(t *testing.T) {
	repo, _ := sessionTestSetup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s := testutil.NewTestSession("alpha", day.Add(time.Duration(i)*time.Hour), testutil.WithDuration(time.Minute))
		require.NoError(t, repo.Create(ctx, s))
	}
	s := testutil.NewTestSession("alpha", day.Add(5*time.Hour), testutil.WithPause(day.Add(5*time.Hour+time.Minute), time.Time{}))
	require.NoError(t, repo.Create(ctx, s))

	n, err := repo.RenameProject(ctx, "alpha", "beta")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = repo.DeleteByProject(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	var pauses int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_pauses`).Scan(&pauses))
	assert.Zero(t, pauses, "pauses cascade with their session")
}
