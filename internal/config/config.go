// Package config resolves runtime settings from defaults, YAML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/derby/internal/db"
	"github.com/spf13/viper"
)

const (
	dirName   = ".derby"
	fileName  = "config.yaml"
	envPrefix = "DERBY"
)

// Config holds the resolved settings. Later sources override earlier ones:
// defaults, the global file, the project file, then DERBY_* variables.
type Config struct {
	DBPath   string `mapstructure:"db"`
	LogCalls bool   `mapstructure:"log_calls"`
	Timezone string `mapstructure:"timezone"`

	// Files lists the config files that were read, in load order.
	Files []string `mapstructure:"-"`
}

// Paths locates the config files. Empty fields fall back to the user's home
// and working directories.
type Paths struct {
	Home string
	Cwd  string
}

func (p Paths) resolve() Paths {
	if p.Home == "" {
		p.Home, _ = os.UserHomeDir()
	}
	if p.Cwd == "" {
		p.Cwd, _ = os.Getwd()
	}
	return p
}

// GlobalFile returns the per-user config file path.
func (p Paths) GlobalFile() string {
	return filepath.Join(p.resolve().Home, dirName, fileName)
}

// ProjectFile returns the per-directory config file path.
func (p Paths) ProjectFile() string {
	return filepath.Join(p.resolve().Cwd, dirName, fileName)
}

// DefaultDBPath is the database location when nothing overrides it.
func (p Paths) DefaultDBPath() string {
	return filepath.Join(p.resolve().Home, dirName, "derby.db")
}

// Load reads configuration for the current user and directory.
func Load() (*Config, error) {
	return LoadFrom(Paths{})
}

// LoadFrom reads configuration using explicit search paths. Missing files
// are skipped; unreadable or malformed ones are errors.
func LoadFrom(paths Paths) (*Config, error) {
	paths = paths.resolve()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("db", paths.DefaultDBPath())
	v.SetDefault("log_calls", false)
	v.SetDefault("timezone", "")

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{"db", "log_calls", "timezone"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var files []string
	candidates := []string{paths.GlobalFile()}
	if project := paths.ProjectFile(); project != candidates[0] {
		candidates = append(candidates, project)
	}
	for _, path := range candidates {
		ok, err := mergeFile(v, path)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Files = files
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DefaultDBPath()
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return true, nil
}

// DB returns the store configuration.
func (c *Config) DB() db.Config {
	return db.Config{Path: c.DBPath}
}

// Location resolves Timezone. Empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
