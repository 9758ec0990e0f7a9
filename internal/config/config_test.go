package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesArenaDefaults(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "trick", cfg.Arena.Game)
	require.Equal(t, "file", cfg.Store.Kind)
	require.Equal(t, "runs", cfg.Session.Output)

	arenaCfg, err := cfg.ArenaConfig()
	require.NoError(t, err)
	require.Equal(t, 10, arenaCfg.MinimumBrains)
	require.Equal(t, 0.1, arenaCfg.BaseRate)
	require.Equal(t, 0.95, arenaCfg.Certainty)
	require.Equal(t, 0.1, arenaCfg.WeightRange)
	require.NotEmpty(t, arenaCfg.Names)
}

func TestLoadEmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	require.Equal(t, def, cfg)
}

func TestLoadYAMLOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gennsing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arena:\n  base_rate: 0.2\nstore:\n  kind: sqlite\nsession:\n  iterations: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.2, cfg.Arena.BaseRate)
	require.Equal(t, 10, cfg.Arena.MinimumBrains)
	require.Equal(t, "sqlite", cfg.Store.Kind)
	require.Equal(t, 7, cfg.Session.Iterations)
	require.Equal(t, "trick.db", cfg.StorePath())
}

func TestLoadINISections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gennsing.ini")
	text := "[arena]\nminimum_brains = 4\ncertainty = 0.8\n\n[brain]\nweight_range = 0.5\n\n[log]\nlevel = debug\nformat = json\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.8, cfg.Arena.Certainty)
	require.Equal(t, 0.5, cfg.Brain.WeightRange)
	require.Equal(t, 4, cfg.Arena.MinimumBrains)
	require.Equal(t, 0.1, cfg.Arena.BaseRate)
	require.Equal(t, "json", cfg.Log.Format)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)
}

func TestLoadINIKeepsHashInValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gennsing.ini")
	require.NoError(t, os.WriteFile(path, []byte("[store]\npath = pools/#1\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "pools/#1", cfg.Store.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"no game":        func(c *Config) { c.Arena.Game = " " },
		"store kind":     func(c *Config) { c.Store.Kind = "redis" },
		"negative stall": func(c *Config) { c.Session.Stall = -1 },
		"player range":   func(c *Config) { c.Session.MinPlayers, c.Session.MaxPlayers = 4, 2 },
		"log level":      func(c *Config) { c.Log.Level = "loud" },
		"log format":     func(c *Config) { c.Log.Format = "xml" },
		"certainty":      func(c *Config) { c.Arena.Certainty = 0.5 },
		"small pool":     func(c *Config) { c.Arena.MinimumBrains = 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestArenaConfigReadsNamesFile(t *testing.T) {
	dir := t.TempDir()
	names := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(names, []byte("ada, bea\ncy,ada\n"), 0o644))

	cfg, err := Default()
	require.NoError(t, err)
	cfg.Arena.Names = names
	arenaCfg, err := cfg.ArenaConfig()
	require.NoError(t, err)
	require.Equal(t, []string{"ada", "bea", "cy"}, arenaCfg.Names)
	require.Error(t, cfg.Validate())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Session.Seed = 42
	cfg.Store.Path = "pool"

	path := filepath.Join(t.TempDir(), "effective.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
	require.Equal(t, "pool", loaded.StorePath())
}
