package arena

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gennsing/internal/agent"
	"gennsing/internal/scape"
)

// SessionConfig bounds a self-play session. Zero values mean no limit.
type SessionConfig struct {
	Iterations int
	// Stall stops the session after this many episodes without a new best
	// performance.
	Stall int
	// Target stops the session once an episode reaches this performance.
	Target     float64
	MinPlayers int
	MaxPlayers int
	Preferred  []string
	Progress   func(iteration int, completion float64)
}

type Episode struct {
	RunID           string        `csv:"run_id"`
	Iteration       int           `csv:"iteration"`
	Players         string        `csv:"players"`
	Winner          string        `csv:"winner"`
	Loser           string        `csv:"loser"`
	Performance     float64       `csv:"performance"`
	BestPerformance float64       `csv:"best_performance"`
	Stall           int           `csv:"stall"`
	Duration        time.Duration `csv:"-"`
	DurationMS      int64         `csv:"duration_ms"`
}

type SessionResult struct {
	RunID           string
	Episodes        int
	BestPerformance float64
	LastWinner      string
	StopReason      string
}

const (
	StopIterations = "iterations"
	StopStall      = "stall"
	StopTarget     = "target"
	StopCanceled   = "canceled"
)

// RunSession plays AI-only episodes of spec until a limit is hit. After each
// episode the winner is credited and teaches the pool, the last-ranked player
// is killed and the pool is refilled with clones of the winner, who keeps
// its seat for the next episode.
func (m *Manager) RunSession(ctx context.Context, spec scape.Spec, cfg SessionConfig, sink func(Episode) error) (SessionResult, error) {
	minPlayers, maxPlayers, err := playerRange(spec, cfg)
	if err != nil {
		return SessionResult{}, err
	}
	if maxPlayers > len(m.namespace) {
		return SessionResult{}, fmt.Errorf("%s needs up to %d players, namespace holds %d: %w", spec.Name, maxPlayers, len(m.namespace), ErrNamespaceExhausted)
	}
	table := scape.Spec{MinPlayers: minPlayers, MaxPlayers: maxPlayers}

	result := SessionResult{RunID: uuid.NewString()}
	logger := m.logger.With("run_id", result.RunID, "game", spec.Name)
	logger.Info("session started", "iterations", cfg.Iterations, "stall", cfg.Stall, "target", cfg.Target)

	var (
		winner    *agent.AI
		best      float64
		haveBest  bool
		stalled   int
		iteration = 1
	)
	for {
		switch {
		case cfg.Iterations > 0 && iteration > cfg.Iterations:
			result.StopReason = StopIterations
		case cfg.Stall > 0 && stalled >= cfg.Stall:
			result.StopReason = StopStall
		case cfg.Target > 0 && haveBest && best >= cfg.Target:
			result.StopReason = StopTarget
		case ctx.Err() != nil:
			result.StopReason = StopCanceled
		}
		if result.StopReason != "" {
			break
		}

		started := time.Now()
		players := make([]agent.Agent, 0, maxPlayers)
		preferred := cfg.Preferred
		var excluded []string
		if winner != nil {
			players = append(players, winner)
			excluded = []string{winner.Name()}
			preferred = without(preferred, winner.Name())
		}
		ais, err := m.AIs(ctx, table.PlayerCount(m.rng)-len(players), preferred, excluded)
		if err != nil {
			return result, err
		}
		for _, ai := range ais {
			players = append(players, ai)
		}

		game, err := spec.New(players, m.rng)
		if err != nil {
			return result, err
		}
		var progress func(float64)
		if cfg.Progress != nil {
			n := iteration
			progress = func(completion float64) { cfg.Progress(n, completion) }
		}
		if err := Autoplay(ctx, game, progress); err != nil {
			return result, fmt.Errorf("episode %d: %w", iteration, err)
		}

		performance := game.Performance()
		if !haveBest || performance > best {
			best, haveBest, stalled = performance, true, 0
		} else {
			stalled++
		}

		ranking := game.Ranking()
		first := ranking[0].Agent
		losers := make([]agent.Agent, 0, len(ranking)-1)
		for _, standing := range ranking[1:] {
			losers = append(losers, standing.Agent)
		}
		last := losers[len(losers)-1]

		if err := m.records.RecordOutcome(ctx, []agent.Agent{first}, losers, 0); err != nil {
			return result, err
		}
		if err := m.Teach(ctx, first, nil); err != nil {
			return result, err
		}
		if err := m.Kill(ctx, last); err != nil {
			return result, err
		}
		firstAI, ok := first.(*agent.AI)
		if !ok {
			return result, fmt.Errorf("winner %s: %w", first.Name(), ErrNotAI)
		}
		if err := m.Fill(ctx, firstAI); err != nil {
			return result, err
		}
		winner = firstAI.Renew()

		episode := Episode{
			RunID:           result.RunID,
			Iteration:       iteration,
			Players:         joinNames(players),
			Winner:          first.Name(),
			Loser:           last.Name(),
			Performance:     performance,
			BestPerformance: best,
			Stall:           stalled,
			Duration:        time.Since(started),
		}
		episode.DurationMS = episode.Duration.Milliseconds()
		logger.Info("episode finished",
			"iteration", iteration,
			"players", episode.Players,
			"winner", episode.Winner,
			"killed", episode.Loser,
			"performance", performance,
			"best", best,
		)
		if sink != nil {
			if err := sink(episode); err != nil {
				return result, err
			}
		}

		result.Episodes = iteration
		result.BestPerformance = best
		result.LastWinner = first.Name()
		iteration++
	}

	logger.Info("session stopped", "reason", result.StopReason, "episodes", result.Episodes, "best", result.BestPerformance)
	if result.StopReason == StopCanceled {
		return result, ctx.Err()
	}
	return result, nil
}

func playerRange(spec scape.Spec, cfg SessionConfig) (int, int, error) {
	minPlayers, maxPlayers := spec.MinPlayers, spec.MaxPlayers
	if cfg.MinPlayers > 0 {
		minPlayers = cfg.MinPlayers
	}
	if cfg.MaxPlayers > 0 {
		maxPlayers = cfg.MaxPlayers
	}
	if minPlayers < spec.MinPlayers || maxPlayers > spec.MaxPlayers || minPlayers > maxPlayers {
		return 0, 0, fmt.Errorf("%s plays with %d to %d players, asked for %d to %d", spec.Name, spec.MinPlayers, spec.MaxPlayers, minPlayers, maxPlayers)
	}
	return minPlayers, maxPlayers, nil
}

func without(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != drop {
			out = append(out, name)
		}
	}
	return out
}

func joinNames(agents []agent.Agent) string {
	out := ""
	for i, a := range agents {
		if i > 0 {
			out += " vs "
		}
		out += a.Name()
	}
	return out
}
