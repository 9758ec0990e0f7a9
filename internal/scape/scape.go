package scape

import (
	"context"
	"fmt"
	"math/rand"

	"gennsing/internal/agent"
)

// Game is one episode of a turn-based environment. The arena drives it
// without knowing its rules: DoRound until Completion reaches 100, then
// Finalize and read the Ranking.
type Game interface {
	fmt.Stringer
	DoRound(ctx context.Context) error
	// Completion is the progress of the episode in [0, 100].
	Completion() float64
	// Performance scores the quality of play of the whole table. Higher is
	// better.
	Performance() float64
	Finalize(ctx context.Context) error
	// Ranking lists every player, winner first.
	Ranking() []Standing
}

type Standing struct {
	Agent agent.Agent
	Score float64
}

type Factory func(agents []agent.Agent, rng *rand.Rand) (Game, error)

type Spec struct {
	Name       string
	MinPlayers int
	MaxPlayers int
	New        Factory
}

// PlayerCount draws a table size in [MinPlayers, MaxPlayers].
func (s Spec) PlayerCount(rng *rand.Rand) int {
	if s.MaxPlayers <= s.MinPlayers {
		return s.MinPlayers
	}
	return s.MinPlayers + rng.Intn(s.MaxPlayers-s.MinPlayers+1)
}

func (s Spec) checkPlayers(agents []agent.Agent) error {
	if len(agents) < s.MinPlayers || len(agents) > s.MaxPlayers {
		return fmt.Errorf("%s takes %d to %d players, got %d", s.Name, s.MinPlayers, s.MaxPlayers, len(agents))
	}
	seen := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		if _, dup := seen[a.Name()]; dup {
			return fmt.Errorf("%s: player %s seated twice", s.Name, a.Name())
		}
		seen[a.Name()] = struct{}{}
	}
	return nil
}
