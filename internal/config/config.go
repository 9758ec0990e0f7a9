// Package config loads gennsing settings from YAML or INI files on top of
// embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"gennsing/internal/arena"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Arena   ArenaConfig   `yaml:"arena"`
	Brain   BrainConfig   `yaml:"brain"`
	Store   StoreConfig   `yaml:"store"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

type ArenaConfig struct {
	Game          string  `yaml:"game" ini:"game"`
	MinimumBrains int     `yaml:"minimum_brains" ini:"minimum_brains"`
	BaseRate      float64 `yaml:"base_rate" ini:"base_rate"`
	Certainty     float64 `yaml:"certainty" ini:"certainty"`
	Perturb       float64 `yaml:"perturb" ini:"perturb"`
	Mutate        float64 `yaml:"mutate" ini:"mutate"`
	// Names is a file holding a comma separated namespace. Empty uses the
	// built-in list.
	Names string `yaml:"names" ini:"names"`
}

type BrainConfig struct {
	WeightRange float64 `yaml:"weight_range" ini:"weight_range"`
}

type StoreConfig struct {
	Kind string `yaml:"kind" ini:"kind"`
	// Path defaults to the game name for the file store and to
	// <game>.db for sqlite.
	Path string `yaml:"path" ini:"path"`
}

type SessionConfig struct {
	Iterations int     `yaml:"iterations" ini:"iterations"`
	Stall      int     `yaml:"stall" ini:"stall"`
	Target     float64 `yaml:"target" ini:"target"`
	MinPlayers int     `yaml:"min_players" ini:"min_players"`
	MaxPlayers int     `yaml:"max_players" ini:"max_players"`
	Seed       int64   `yaml:"seed" ini:"seed"`
	Output     string  `yaml:"output" ini:"output"`
}

type LogConfig struct {
	Level  string `yaml:"level" ini:"level"`
	Format string `yaml:"format" ini:"format"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path over the embedded defaults. Files ending in .ini or .cfg
// are parsed as INI with one section per block, anything else as YAML. Keys
// missing from the file keep their defaults. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg":
		err = cfg.loadINI(path)
	default:
		err = cfg.loadYAML(path)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) loadINI(path string) error {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", path, err)
	}
	sections := []struct {
		name   string
		target any
	}{
		{"arena", &c.Arena},
		{"brain", &c.Brain},
		{"store", &c.Store},
		{"session", &c.Session},
		{"log", &c.Log},
	}
	for _, section := range sections {
		if !file.HasSection(section.name) {
			continue
		}
		if err := file.Section(section.name).MapTo(section.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", section.name, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Arena.Game) == "" {
		return fmt.Errorf("arena.game is required")
	}
	switch c.Store.Kind {
	case "file", "memory", "sqlite":
	default:
		return fmt.Errorf("store.kind must be file, memory or sqlite, got %q", c.Store.Kind)
	}
	if c.Session.Iterations < 0 || c.Session.Stall < 0 {
		return fmt.Errorf("session limits must not be negative")
	}
	if c.Session.MinPlayers < 0 || c.Session.MaxPlayers < 0 {
		return fmt.Errorf("session player counts must not be negative")
	}
	if c.Session.MinPlayers > 0 && c.Session.MaxPlayers > 0 && c.Session.MinPlayers > c.Session.MaxPlayers {
		return fmt.Errorf("session.min_players %d exceeds session.max_players %d", c.Session.MinPlayers, c.Session.MaxPlayers)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	arenaCfg, err := c.ArenaConfig()
	if err != nil {
		return err
	}
	return arenaCfg.Validate()
}

// ArenaConfig converts the arena and brain sections, reading the namespace
// file when one is configured.
func (c *Config) ArenaConfig() (arena.Config, error) {
	out := arena.DefaultConfig()
	out.MinimumBrains = c.Arena.MinimumBrains
	out.BaseRate = c.Arena.BaseRate
	out.Certainty = c.Arena.Certainty
	out.Perturb = c.Arena.Perturb
	out.Mutate = c.Arena.Mutate
	out.WeightRange = c.Brain.WeightRange
	if c.Arena.Names != "" {
		data, err := os.ReadFile(c.Arena.Names)
		if err != nil {
			return arena.Config{}, fmt.Errorf("reading names file: %w", err)
		}
		out.Names = arena.ParseNames(string(data))
	}
	return out, nil
}

// StorePath resolves the store location for the configured game.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Kind == "sqlite" {
		return c.Arena.Game + ".db"
	}
	return c.Arena.Game
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
