package cli

import (
	"testing"
	"time"

	"github.com/alexanderramin/derby/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatchDriver(t *testing.T, env *testEnv) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newWatchModel(env.app), teatest.WithSize(80, 24))
	d.DrainInit()
	return d
}

func TestWatch_ShowsActiveSessions(t *testing.T) {
	env := testApp(t, "alpha", "beta")
	env.mustRun(t, "start", "alpha")
	env.clock.Advance(5 * time.Minute)
	env.mustRun(t, "start", "beta")

	d := newWatchDriver(t, env)
	view := stripANSI(d.View())
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "beta")
	assert.Contains(t, view, "0:05:00")
	assert.Contains(t, view, "quit")
}

func TestWatch_Empty(t *testing.T) {
	env := testApp(t)

	d := newWatchDriver(t, env)
	assert.Contains(t, stripANSI(d.View()), "No active sessions")

	d.PressKey('p')
	d.PressKey('s')
	assert.False(t, d.Quitting)
}

func TestWatch_PauseResumeStop(t *testing.T) {
	env := testApp(t, "alpha")
	env.mustRun(t, "start", "alpha")
	env.clock.Advance(20 * time.Minute)

	d := newWatchDriver(t, env)

	d.PressKey('p')
	view := stripANSI(d.View())
	assert.Contains(t, view, "Paused alpha")
	assert.Contains(t, view, "‖ Paused")

	d.PressKey('p')
	assert.Contains(t, stripANSI(d.View()), "Resumed alpha")

	d.PressKey('s')
	view = stripANSI(d.View())
	assert.Contains(t, view, "Stopped alpha after 20m")
	assert.Contains(t, view, "No active sessions")
}

func TestWatch_CursorSelectsSession(t *testing.T) {
	env := testApp(t, "alpha", "beta")
	env.mustRun(t, "start", "alpha")
	env.mustRun(t, "start", "beta")

	d := newWatchDriver(t, env)
	d.PressDown()
	d.PressKey('s')

	m, ok := d.Model.(watchModel)
	require.True(t, ok)
	require.Len(t, m.sessions, 1)
	assert.Equal(t, "alpha", m.sessions[0].ProjectName)
	assert.Equal(t, 0, m.cursor)

	d.PressKey('k')
	d.PressKey('j')
	assert.Equal(t, 0, d.Model.(watchModel).cursor)
}

func TestWatch_RefreshPicksUpNewSessions(t *testing.T) {
	env := testApp(t, "alpha")

	d := newWatchDriver(t, env)
	env.mustRun(t, "start", "alpha")
	assert.NotContains(t, stripANSI(d.View()), "alpha")

	d.PressKey('r')
	assert.Contains(t, stripANSI(d.View()), "alpha")
}

func TestWatch_Quit(t *testing.T) {
	env := testApp(t)

	d := newWatchDriver(t, env)
	d.PressKey('q')
	assert.True(t, d.Quitting)
}

func TestWatch_RequiresTerminal(t *testing.T) {
	env := testApp(t)

	_, err := env.run(t, "watch")
	require.ErrorIs(t, err, errTerminalRequired)
}
