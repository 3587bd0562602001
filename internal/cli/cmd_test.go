package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/service"
	"github.com/alexanderramin/derby/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// t0 is a Monday morning in UTC.
var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type testEnv struct {
	app   *App
	clock *testutil.Clock
}

func testApp(t *testing.T, projectNames ...string) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	clock := testutil.NewClock(t0)

	projects := repository.NewSQLiteProjectRepo(database)
	sessions := repository.NewSQLiteSessionRepo(database)
	settings := repository.NewSQLiteSettingsRepo(database)

	app := &App{
		Timer:         service.NewTimerService(sessions, projects, uow, clock.Now),
		Projects:      service.NewProjectService(projects, uow, clock.Now),
		Summary:       service.NewSummaryService(sessions, projects, clock.Now),
		Export:        service.NewExportService(sessions),
		Settings:      service.NewSettingsService(settings),
		Now:           clock.Now,
		Location:      time.UTC,
		IsInteractive: func() bool { return false },
	}

	ctx := context.Background()
	for _, name := range projectNames {
		require.NoError(t, projects.Create(ctx, testutil.NewTestProject(name)))
	}
	return &testEnv{app: app, clock: clock}
}

// run executes a fresh root command and returns its stripped stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(e.app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(out.String()), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "derby %s", strings.Join(args, " "))
	return out
}

func TestStartStop(t *testing.T) {
	env := testApp(t, "alpha")

	out := env.mustRun(t, "start", "alpha")
	assert.Contains(t, out, "Started tracking alpha at 09:00")

	env.clock.Advance(75 * time.Minute)
	out = env.mustRun(t, "stop", "-n", "drafting")
	assert.Contains(t, out, "Stopped alpha after 1h 15m")

	sessions, err := env.app.Timer.ListRecent(context.Background(), service.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "drafting", sessions[0].Notes)
}

func TestStart_UnknownProjectSuggestsCreate(t *testing.T) {
	env := testApp(t)

	_, err := env.run(t, "start", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--create")
}

func TestStart_CreateProject(t *testing.T) {
	env := testApp(t)

	out := env.mustRun(t, "start", "reading", "--create", "--priority", "2")
	assert.Contains(t, out, "Created reading 2 (High)")
	assert.Contains(t, out, "Started tracking reading")

	p, err := env.app.Projects.Get(context.Background(), "reading")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Priority)
}

func TestStart_NotesOtherActiveSessions(t *testing.T) {
	env := testApp(t, "alpha", "beta")

	env.mustRun(t, "start", "alpha")
	out := env.mustRun(t, "start", "beta")
	assert.Contains(t, out, "Note: 1 other session(s) are also active")

	_, err := env.run(t, "start", "beta")
	require.Error(t, err)
}

func TestPauseResume(t *testing.T) {
	env := testApp(t, "alpha")

	env.mustRun(t, "start", "alpha")
	env.clock.Advance(10 * time.Minute)
	out := env.mustRun(t, "pause")
	assert.Contains(t, out, "Paused alpha at 10m")

	_, err := env.run(t, "pause")
	require.Error(t, err, "nothing left to pause")

	env.clock.Advance(5 * time.Minute)
	out = env.mustRun(t, "resume", "alpha")
	assert.Contains(t, out, "Resumed alpha (10m so far)")

	_, err = env.run(t, "resume")
	require.Error(t, err, "nothing paused")
}

func TestStatus(t *testing.T) {
	env := testApp(t, "alpha")

	out := env.mustRun(t, "status")
	assert.Contains(t, out, "No active sessions")

	env.mustRun(t, "start", "alpha")
	env.clock.Advance(90 * time.Second)
	out = env.mustRun(t, "status")
	assert.Contains(t, out, "ACTIVE SESSIONS (1)")
	assert.Contains(t, out, "0:01:30")
}

func TestSwitch(t *testing.T) {
	env := testApp(t, "alpha", "beta")

	env.mustRun(t, "start", "alpha")
	env.clock.Advance(30 * time.Minute)
	out := env.mustRun(t, "switch", "beta")
	assert.Contains(t, out, "Stopped alpha after 30m")
	assert.Contains(t, out, "Started tracking beta")

	_, err := env.run(t, "switch", "beta", "--from", "beta")
	require.Error(t, err)
}

func TestLog(t *testing.T) {
	env := testApp(t, "alpha")

	out := env.mustRun(t, "log", "alpha", "1h30m", "-n", "backfill")
	assert.Contains(t, out, "Logged 1h 30m for alpha")

	env.mustRun(t, "log", "alpha", "45", "--date", "2023-12-30")

	sessions, err := env.app.Timer.ListRecent(context.Background(), service.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, t0.Add(-90*time.Minute), sessions[0].StartTime)
	assert.Equal(t, time.Date(2023, 12, 30, 17, 0, 0, 0, time.UTC), sessions[1].StartTime)
	assert.Equal(t, int64(45*60), sessions[1].DurationSeconds(t0))
}

func TestLog_InvalidDuration(t *testing.T) {
	env := testApp(t, "alpha")

	_, err := env.run(t, "log", "alpha", "soon")
	require.Error(t, err)
}

func TestList(t *testing.T) {
	env := testApp(t, "alpha", "beta")
	env.mustRun(t, "log", "alpha", "30m")
	env.mustRun(t, "log", "beta", "20m", "--date", "2023-11-01")

	out := env.mustRun(t, "list")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")

	out = env.mustRun(t, "list", "--days", "7")
	assert.Contains(t, out, "alpha")
	assert.NotContains(t, out, "beta")

	out = env.mustRun(t, "list", "-p", "beta")
	assert.NotContains(t, out, "alpha")
}

func TestDelete_ConfirmationRules(t *testing.T) {
	env := testApp(t, "alpha")
	env.mustRun(t, "log", "alpha", "30m")

	sessions, err := env.app.Timer.ListRecent(context.Background(), service.SessionFilter{})
	require.NoError(t, err)
	prefix := sessions[0].ID[:8]

	_, err = env.run(t, "delete", prefix)
	require.ErrorIs(t, err, errConfirmationRequired)

	env.app.IsInteractive = func() bool { return true }
	var asked string
	env.app.Confirm = func(title string) (bool, error) {
		asked = title
		return false, nil
	}
	out := env.mustRun(t, "delete", prefix)
	assert.Contains(t, out, "Kept the session.")
	assert.Equal(t, "Delete 30m of alpha from Today 08:30?", asked)

	env.mustRun(t, "delete", prefix, "--yes")
	sessions, err = env.app.Timer.ListRecent(context.Background(), service.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStopAll(t *testing.T) {
	env := testApp(t, "alpha", "beta")

	out := env.mustRun(t, "stopall")
	assert.Contains(t, out, "No active sessions to stop.")

	env.mustRun(t, "start", "alpha")
	env.mustRun(t, "start", "beta")

	_, err := env.run(t, "stopall")
	require.ErrorIs(t, err, errConfirmationRequired)

	env.app.IsInteractive = func() bool { return true }
	env.app.Confirm = func(string) (bool, error) { return true, nil }
	out = env.mustRun(t, "stopall", "-n", "end of day")
	assert.Contains(t, out, "Stopped 2 session(s)")

	active, err := env.app.Timer.Active(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCancel(t *testing.T) {
	env := testApp(t, "alpha")
	env.mustRun(t, "start", "alpha")

	out := env.mustRun(t, "cancel", "alpha", "-y")
	assert.Contains(t, out, "Discarded the alpha session")

	_, err := env.run(t, "cancel", "-y")
	require.Error(t, err)
}

func TestSummary(t *testing.T) {
	env := testApp(t, "alpha", "beta")
	env.mustRun(t, "log", "alpha", "1h")
	env.mustRun(t, "log", "beta", "30m")

	out := env.mustRun(t, "summary")
	assert.Contains(t, out, "THIS WEEK")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "COMBINED 1h 30m 00s")

	out = env.mustRun(t, "summary", "--period", "last-week")
	assert.NotContains(t, out, "alpha")

	out = env.mustRun(t, "summary", "--from", "2024-01-01", "--to", "2024-01-01")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "COMBINED 1h 30m 00s")
}

func TestSummary_UsesSettings(t *testing.T) {
	env := testApp(t, "alpha")
	env.mustRun(t, "log", "alpha", "1h")
	env.mustRun(t, "config", "set", "summary.period", "month")

	out := env.mustRun(t, "summary")
	assert.Contains(t, out, "THIS MONTH")

	out = env.mustRun(t, "summary", "--period", "today")
	assert.Contains(t, out, "TODAY")
}

func TestSummary_InvalidFlags(t *testing.T) {
	env := testApp(t)

	_, err := env.run(t, "summary", "--only", "all")
	require.Error(t, err)

	_, err = env.run(t, "summary", "--from", "2024-02-01", "--to", "2024-01-01")
	require.Error(t, err)

	_, err = env.run(t, "summary", "--period", "fortnight")
	require.Error(t, err)

	_, err = env.run(t, "summary", "--period", "month", "--granularity", "weekly")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestExport(t *testing.T) {
	env := testApp(t, "alpha", "beta")
	env.mustRun(t, "log", "alpha", "1h30m", "-n", "draft")
	env.mustRun(t, "log", "beta", "15m")

	out := env.mustRun(t, "export", "--project", "alpha")
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Project", records[0][0])
	assert.Equal(t, []string{"alpha", "2024-01-01 07:30:00", "2024-01-01 09:00:00", "5400", "1.50", "draft"}, records[1])
}

func TestExport_ToFile(t *testing.T) {
	env := testApp(t, "alpha")
	env.mustRun(t, "log", "alpha", "1h")

	path := filepath.Join(t.TempDir(), "out.csv")
	out := env.mustRun(t, "export", "-o", path)
	assert.Contains(t, out, "Exported 1 session(s)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "alpha,")
}

type failingCloser struct {
	bytes.Buffer
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestExport_ReportsCloseFailure(t *testing.T) {
	env := testApp(t, "alpha")
	env.mustRun(t, "log", "alpha", "1h")

	errDiskFull := errors.New("disk full")
	target := &failingCloser{err: errDiskFull}
	orig := createOutput
	createOutput = func(string) (io.WriteCloser, error) { return target, nil }
	t.Cleanup(func() { createOutput = orig })

	out, err := env.run(t, "export", "-o", "out.csv")
	require.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, err.Error(), "closing out.csv")
	assert.NotContains(t, out, "Exported")
	assert.Contains(t, target.String(), "alpha,", "rows were written before the close failed")
}

func TestExport_CreateFailure(t *testing.T) {
	env := testApp(t, "alpha")

	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	_, err := env.run(t, "export", "-o", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating "+path)
}

func TestConfig(t *testing.T) {
	env := testApp(t)

	assert.Equal(t, "week\n", env.mustRun(t, "config", "get", "summary.period"))

	env.mustRun(t, "config", "set", "summary.sort", "tag")
	assert.Equal(t, "tag\n", env.mustRun(t, "config", "get", "summary.sort"))

	out := env.mustRun(t, "config", "list")
	assert.Contains(t, out, "summary.group")
	assert.Contains(t, out, "(default)")

	_, err := env.run(t, "config", "set", "summary.sort", "alphabet")
	require.Error(t, err)
	_, err = env.run(t, "config", "get", "colour")
	require.Error(t, err)
}
