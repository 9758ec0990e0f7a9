package arena

import (
	"context"
	"fmt"

	"gennsing/internal/agent"
	"gennsing/internal/scape"
)

type Review struct {
	Player string
	Text   string
}

type InteractiveResult struct {
	Ranking []scape.Standing
	Reviews []Review
}

// PlayInteractive seats the human players with AIs from the pool and plays
// one episode. When an AI wins, each human gets a review of their decisions
// against the winner's. The winner teaches the pool either way.
func (m *Manager) PlayInteractive(ctx context.Context, spec scape.Spec, humans []*agent.Console, preferred []string) (InteractiveResult, error) {
	if len(humans) >= spec.MaxPlayers {
		return InteractiveResult{}, fmt.Errorf("%s seats at most %d players, %d humans leave no room for an AI", spec.Name, spec.MaxPlayers, len(humans))
	}
	humanNames := make([]string, len(humans))
	for i, human := range humans {
		humanNames[i] = human.Name()
	}
	count := max(spec.PlayerCount(m.rng)-len(humans), spec.MinPlayers-len(humans), 1)

	ais, err := m.AIs(ctx, count, preferred, humanNames)
	if err != nil {
		return InteractiveResult{}, err
	}
	players := make([]agent.Agent, 0, len(humans)+len(ais))
	for _, human := range humans {
		players = append(players, human)
	}
	for _, ai := range ais {
		players = append(players, ai)
	}

	game, err := spec.New(players, m.rng)
	if err != nil {
		return InteractiveResult{}, err
	}
	if err := Autoplay(ctx, game, nil); err != nil {
		return InteractiveResult{}, err
	}

	result := InteractiveResult{Ranking: game.Ranking()}
	winner := result.Ranking[0].Agent
	if winnerAI, ok := winner.(*agent.AI); ok {
		for _, human := range humans {
			text, err := human.Consult(winnerAI)
			if err != nil {
				return result, err
			}
			result.Reviews = append(result.Reviews, Review{Player: human.Name(), Text: text})
		}
	}
	if err := m.Teach(ctx, winner, nil); err != nil {
		return result, err
	}
	m.logger.Info("interactive game finished", "game", spec.Name, "winner", winner.Name())
	return result, nil
}
