package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gennsing/internal/config"
	"gennsing/pkg/gennsing"
)

// commonFlags are accepted by every pool command and override the config
// file when given.
type commonFlags struct {
	fs         *flag.FlagSet
	configPath *string
	game       *string
	storeKind  *string
	storePath  *string
	output     *string
	seed       *int64
	logLevel   *string
	logFormat  *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		fs:         fs,
		configPath: fs.String("config", "", "config file (.yaml, .yml, .ini or .cfg)"),
		game:       fs.String("game", "", "game the pool plays"),
		storeKind:  fs.String("store", "", "store backend: file|memory|sqlite"),
		storePath:  fs.String("path", "", "pool directory or sqlite database path"),
		output:     fs.String("out-dir", "", "directory for run output"),
		seed:       fs.Int64("seed", 0, "random seed, 0 picks one from the clock"),
		logLevel:   fs.String("log-level", "", "log level: debug|info|warn|error"),
		logFormat:  fs.String("log-format", "", "log format: text|json"),
	}
}

func (f *commonFlags) load() (*config.Config, error) {
	cfg, err := config.Load(*f.configPath)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["game"] {
		cfg.Arena.Game = *f.game
	}
	if set["store"] {
		cfg.Store.Kind = *f.storeKind
	}
	if set["path"] {
		cfg.Store.Path = *f.storePath
	}
	if set["out-dir"] {
		cfg.Session.Output = *f.output
	}
	if set["seed"] {
		cfg.Session.Seed = *f.seed
	}
	if set["log-level"] {
		cfg.Log.Level = *f.logLevel
	}
	if set["log-format"] {
		cfg.Log.Format = *f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads the configuration and opens a client on it.
func (f *commonFlags) open(ctx context.Context) (*gennsing.Client, *config.Config, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(stderr, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	client, err := gennsing.New(ctx, gennsing.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
}

func splitNames(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
