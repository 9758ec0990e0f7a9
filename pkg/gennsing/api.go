// Package gennsing is the public entry point to a brain pool: open it from
// a configuration, run self-play sessions, seat humans, and inspect the
// ledgers.
package gennsing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"slices"
	"time"

	"gennsing/internal/agent"
	"gennsing/internal/arena"
	"gennsing/internal/config"
	"gennsing/internal/model"
	"gennsing/internal/scape"
	"gennsing/internal/stats"
	"gennsing/internal/storage"
)

const effectiveConfigFile = "config.yaml"

type Options struct {
	// Config defaults to the embedded defaults.
	Config *config.Config
	Logger *slog.Logger
}

type Client struct {
	cfg     *config.Config
	spec    scape.Spec
	store   storage.Store
	manager *arena.Manager
	logger  *slog.Logger
	seed    int64
}

type SessionRequest struct {
	// Zero fields fall back to the [session] configuration.
	Iterations int
	Stall      int
	Target     float64
	MinPlayers int
	MaxPlayers int
	Preferred  []string
	Progress   func(iteration int, completion float64)
}

type SessionSummary struct {
	RunID           string
	Episodes        int
	BestPerformance float64
	LastWinner      string
	StopReason      string
	// OutputDir holds episodes.csv and the effective configuration. Empty
	// when output is disabled or no episode finished.
	OutputDir string
}

type Seat struct {
	Name string
	In   io.Reader
	Out  io.Writer
}

type PlayRequest struct {
	Humans    []Seat
	Preferred []string
}

type StandingItem struct {
	Name  string
	Score float64
	Human bool
}

type ReviewItem struct {
	Player string
	Text   string
}

type PlayResult struct {
	Ranking []StandingItem
	Reviews []ReviewItem
}

type PoolItem struct {
	Name     string
	Wins     float64
	Losses   float64
	WinShare float64
}

type RunItem struct {
	RunID           string
	Game            string
	Episodes        int
	BestPerformance float64
	StopReason      string
	LastWinner      string
	Seed            int64
	CreatedAtUTC    string
}

// Games lists the registered game names.
func Games() []string {
	return scape.Names()
}

// New opens the configured store and fills the pool of the configured game.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		def, err := config.Default()
		if err != nil {
			return nil, err
		}
		cfg = def
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec, err := scape.Lookup(cfg.Arena.Game)
	if err != nil {
		return nil, err
	}
	arenaCfg, err := cfg.ArenaConfig()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seed := cfg.Session.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	store, err := storage.NewStore(cfg.Store.Kind, cfg.StorePath())
	if err != nil {
		return nil, err
	}
	manager, err := arena.NewManager(ctx, store, arenaCfg,
		arena.WithLogger(logger),
		arena.WithRand(rand.New(rand.NewSource(seed))),
	)
	if err != nil {
		return nil, errors.Join(err, storage.CloseIfSupported(store))
	}
	return &Client{
		cfg:     cfg,
		spec:    spec,
		store:   store,
		manager: manager,
		logger:  logger,
		seed:    seed,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Game() string {
	return c.spec.Name
}

func (c *Client) Seed() int64 {
	return c.seed
}

// Pool lists the living brains with their ledger totals, best first.
func (c *Client) Pool(ctx context.Context) ([]PoolItem, error) {
	names, err := c.manager.NamesUsed(ctx)
	if err != nil {
		return nil, err
	}
	ledgers, err := c.ledgers(ctx, names)
	if err != nil {
		return nil, err
	}
	standings := stats.Standings(ledgers)
	out := make([]PoolItem, 0, len(standings))
	for _, s := range standings {
		out = append(out, PoolItem{Name: s.Name, Wins: s.Wins, Losses: s.Losses, WinShare: s.WinShare})
	}
	return out, nil
}

// Ledger returns one brain's record against every opponent it has met.
func (c *Client) Ledger(ctx context.Context, name string) (model.Ledger, error) {
	if err := c.checkUsed(ctx, name); err != nil {
		return model.Ledger{}, err
	}
	return c.manager.Records().Ledger(ctx, name)
}

// ExportLedgers writes every living brain's ledger as CSV.
func (c *Client) ExportLedgers(ctx context.Context, w io.Writer) error {
	names, err := c.manager.NamesUsed(ctx)
	if err != nil {
		return err
	}
	ledgers, err := c.ledgers(ctx, names)
	if err != nil {
		return err
	}
	return stats.WriteLedgers(w, ledgers)
}

// Kill removes a brain and its ledger and tops the pool up with fresh
// brains.
func (c *Client) Kill(ctx context.Context, name string) error {
	if err := c.checkUsed(ctx, name); err != nil {
		return err
	}
	ai, err := c.manager.AI(ctx, name)
	if err != nil {
		return err
	}
	if err := c.manager.Kill(ctx, ai); err != nil {
		return err
	}
	return c.manager.Fill(ctx, nil)
}

// Autoplay runs one self-play session. Episodes stream to a per-run
// directory under the configured output directory, and the run is appended
// to the run index there.
func (c *Client) Autoplay(ctx context.Context, req SessionRequest) (SessionSummary, error) {
	session := c.cfg.Session
	sessionCfg := arena.SessionConfig{
		Iterations: pick(req.Iterations, session.Iterations),
		Stall:      pick(req.Stall, session.Stall),
		Target:     pick(req.Target, session.Target),
		MinPlayers: pick(req.MinPlayers, session.MinPlayers),
		MaxPlayers: pick(req.MaxPlayers, session.MaxPlayers),
		Preferred:  req.Preferred,
		Progress:   req.Progress,
	}
	if sessionCfg.Iterations == 0 && sessionCfg.Stall == 0 && sessionCfg.Target == 0 {
		if _, ok := ctx.Deadline(); !ok && ctx.Done() == nil {
			return SessionSummary{}, errors.New("session needs an iteration, stall or target limit, or a cancelable context")
		}
	}

	var writer *stats.EpisodeWriter
	defer func() { _ = writer.Close() }()
	sink := func(e arena.Episode) error {
		if writer == nil && session.Output != "" {
			w, err := stats.NewEpisodeWriter(filepath.Join(session.Output, e.RunID))
			if err != nil {
				return err
			}
			if err := c.cfg.WriteYAML(filepath.Join(w.Dir(), effectiveConfigFile)); err != nil {
				return errors.Join(err, w.Close())
			}
			writer = w
		}
		return writer.Write(e)
	}

	result, runErr := c.manager.RunSession(ctx, c.spec, sessionCfg, sink)
	summary := SessionSummary{
		RunID:           result.RunID,
		Episodes:        result.Episodes,
		BestPerformance: result.BestPerformance,
		LastWinner:      result.LastWinner,
		StopReason:      result.StopReason,
		OutputDir:       writer.Dir(),
	}
	if runErr != nil && result.StopReason != arena.StopCanceled {
		return summary, runErr
	}
	if session.Output != "" && result.RunID != "" {
		if err := stats.AppendRunIndex(session.Output, stats.RunIndexEntry{
			RunID:           result.RunID,
			Game:            c.spec.Name,
			Episodes:        result.Episodes,
			BestPerformance: result.BestPerformance,
			StopReason:      result.StopReason,
			LastWinner:      result.LastWinner,
			Seed:            c.seed,
			CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return summary, err
		}
	}
	return summary, runErr
}

// Play seats the humans against AIs from the pool for one game.
func (c *Client) Play(ctx context.Context, req PlayRequest) (PlayResult, error) {
	if len(req.Humans) == 0 {
		return PlayResult{}, errors.New("play needs at least one human seat")
	}
	arenaCfg := c.manager.Config()
	humans := make([]*agent.Console, 0, len(req.Humans))
	seen := make(map[string]struct{}, len(req.Humans))
	for _, seat := range req.Humans {
		if seat.Name == "" || seat.In == nil || seat.Out == nil {
			return PlayResult{}, fmt.Errorf("human seat %q needs a name, input and output", seat.Name)
		}
		if _, dup := seen[seat.Name]; dup {
			return PlayResult{}, fmt.Errorf("duplicate human seat %q", seat.Name)
		}
		seen[seat.Name] = struct{}{}
		humans = append(humans, agent.NewConsole(seat.Name, seat.In, seat.Out, arenaCfg.Certainty))
	}

	result, err := c.manager.PlayInteractive(ctx, c.spec, humans, req.Preferred)
	out := PlayResult{}
	for _, s := range result.Ranking {
		_, human := seen[s.Agent.Name()]
		out.Ranking = append(out.Ranking, StandingItem{Name: s.Agent.Name(), Score: s.Score, Human: human})
	}
	for _, r := range result.Reviews {
		out.Reviews = append(out.Reviews, ReviewItem{Player: r.Player, Text: r.Text})
	}
	return out, err
}

// Runs lists recorded sessions, newest first.
func (c *Client) Runs(_ context.Context, limit int) ([]RunItem, error) {
	if limit <= 0 {
		limit = 20
	}
	if c.cfg.Session.Output == "" {
		return nil, nil
	}
	entries, err := stats.ListRunIndex(c.cfg.Session.Output)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:           e.RunID,
			Game:            e.Game,
			Episodes:        e.Episodes,
			BestPerformance: e.BestPerformance,
			StopReason:      e.StopReason,
			LastWinner:      e.LastWinner,
			Seed:            e.Seed,
			CreatedAtUTC:    e.CreatedAtUTC,
		})
	}
	return out, nil
}

func (c *Client) checkUsed(ctx context.Context, name string) error {
	used, err := c.manager.NamesUsed(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(used, name) {
		return fmt.Errorf("brain %s: %w", name, storage.ErrNotFound)
	}
	return nil
}

func (c *Client) ledgers(ctx context.Context, names []string) ([]model.Ledger, error) {
	out := make([]model.Ledger, 0, len(names))
	for _, name := range names {
		ledger, err := c.manager.Records().Ledger(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger)
	}
	return out, nil
}

func pick[T int | float64](value, fallback T) T {
	if value != 0 {
		return value
	}
	return fallback
}
