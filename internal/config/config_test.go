package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".derby", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DERBY_DB", "DERBY_LOG_CALLS", "DERBY_TIMEZONE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearEnv(t)
	paths := Paths{Home: t.TempDir(), Cwd: t.TempDir()}

	cfg, err := LoadFrom(paths)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.Home, ".derby", "derby.db"), cfg.DBPath)
	assert.False(t, cfg.LogCalls)
	assert.Empty(t, cfg.Files)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
	assert.Equal(t, cfg.DBPath, cfg.DB().Path)
}

func TestLoadFrom_ProjectOverridesGlobal(t *testing.T) {
	clearEnv(t)
	paths := Paths{Home: t.TempDir(), Cwd: t.TempDir()}
	global := writeConfig(t, paths.Home, "db: /tmp/global.db\ntimezone: UTC\n")
	project := writeConfig(t, paths.Cwd, "db: /tmp/project.db\nlog_calls: true\n")

	cfg, err := LoadFrom(paths)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/project.db", cfg.DBPath)
	assert.True(t, cfg.LogCalls)
	assert.Equal(t, "UTC", cfg.Timezone, "keys absent from the project file keep the global value")
	assert.Equal(t, []string{global, project}, cfg.Files)
}

func TestLoadFrom_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	paths := Paths{Home: t.TempDir(), Cwd: t.TempDir()}
	writeConfig(t, paths.Home, "db: /tmp/global.db\n")
	t.Setenv("DERBY_DB", "/tmp/env.db")
	t.Setenv("DERBY_LOG_CALLS", "1")
	t.Setenv("DERBY_TIMEZONE", "Europe/Berlin")

	cfg, err := LoadFrom(paths)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.True(t, cfg.LogCalls)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadFrom_SameDirectoryReadOnce(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeConfig(t, dir, "log_calls: true\n")

	cfg, err := LoadFrom(Paths{Home: dir, Cwd: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, cfg.Files)
}

func TestLoadFrom_Errors(t *testing.T) {
	clearEnv(t)

	paths := Paths{Home: t.TempDir(), Cwd: t.TempDir()}
	writeConfig(t, paths.Cwd, "db: [unclosed\n")
	_, err := LoadFrom(paths)
	assert.Error(t, err)

	paths = Paths{Home: t.TempDir(), Cwd: t.TempDir()}
	writeConfig(t, paths.Home, "timezone: Mars/Olympus\n")
	_, err = LoadFrom(paths)
	assert.Error(t, err)
}
