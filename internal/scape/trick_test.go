package scape

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"gennsing/internal/agent"
	"gennsing/internal/decision"
	"gennsing/internal/nn"
)

// scripted plays its highest or lowest card.
type scripted struct {
	name    string
	highest bool
	seen    []decision.Decision
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Decide(_ context.Context, _ fmt.Stringer, d decision.Decision) error {
	e := d.(*decision.Enumeration)
	pick := 0
	for i, option := range e.Options() {
		rank := option.ID.(card).rank
		best := e.Options()[pick].ID.(card).rank
		if (s.highest && rank > best) || (!s.highest && rank < best) {
			pick = i
		}
	}
	s.seen = append(s.seen, d)
	return e.Choose(pick, 0.95)
}

func (s *scripted) Decisions() []decision.Decision { return s.seen }

func hand(ranks ...int) []card {
	out := make([]card, len(ranks))
	for i, rank := range ranks {
		out[i] = card{rank: rank}
	}
	return out
}

func TestTrickRegistered(t *testing.T) {
	spec, err := Lookup(" Trick ")
	require.NoError(t, err)
	require.Equal(t, TrickName, spec.Name)
	require.Contains(t, Names(), TrickName)

	_, err = Lookup("chess")
	require.ErrorIs(t, err, ErrGameNotFound)
	require.ErrorIs(t, Register(spec), ErrGameExists)
}

func TestTrickRejectsBadTables(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := NewTrick([]agent.Agent{&scripted{name: "a"}}, rng)
	require.Error(t, err)
	_, err = NewTrick([]agent.Agent{&scripted{name: "a"}, &scripted{name: "a"}}, rng)
	require.Error(t, err)
}

func TestTrickPlaysToCompletion(t *testing.T) {
	high := &scripted{name: "high", highest: true}
	low := &scripted{name: "low"}
	g, err := NewTrick([]agent.Agent{high, low}, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	game := g.(*Trick)
	game.players[0].hand = hand(12, 10, 8, 6, 4)
	game.players[1].hand = hand(4, 3, 2, 1, 0)

	ctx := context.Background()
	require.Zero(t, game.Completion())
	require.Error(t, game.Finalize(ctx))
	for game.Completion() < 100 {
		require.NoError(t, game.DoRound(ctx))
	}
	require.ErrorIs(t, game.DoRound(ctx), errGameOver)
	require.NoError(t, game.Finalize(ctx))

	ranking := game.Ranking()
	require.Len(t, ranking, 2)
	require.Equal(t, "high", ranking[0].Agent.Name())
	require.Equal(t, 5.0, ranking[0].Score)
	require.Equal(t, 0.0, ranking[1].Score)
	require.Len(t, high.seen, 5)
	require.Len(t, low.seen, 5)
	require.Equal(t, 0.6, game.Performance())
}

func TestTrickTiesGoToEarlierCard(t *testing.T) {
	a := &scripted{name: "a", highest: true}
	b := &scripted{name: "b", highest: true}
	g, err := NewTrick([]agent.Agent{a, b}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	game := g.(*Trick)
	game.players[0].hand = hand(5, 5, 5, 5, 5)
	game.players[1].hand = hand(5, 5, 5, 5, 5)

	for game.Completion() < 100 {
		require.NoError(t, game.DoRound(context.Background()))
	}
	// the lead alternates, so each player leads and wins alternate rounds
	require.Equal(t, 3, game.players[0].tricks)
	require.Equal(t, 2, game.players[1].tricks)
	require.Equal(t, 1.0, game.Performance())
}

func TestTrickWithBrains(t *testing.T) {
	var agents []agent.Agent
	for i, name := range []string{"ann", "bob", "cid"} {
		ai, err := agent.NewAI(name, nn.NewBrain(nn.BrainConfig{Rand: rand.New(rand.NewSource(int64(i)))}))
		require.NoError(t, err)
		agents = append(agents, ai)
	}
	g, err := NewTrick(agents, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	ctx := context.Background()
	for g.Completion() < 100 {
		require.NoError(t, g.DoRound(ctx))
	}
	require.NoError(t, g.Finalize(ctx))

	total := 0.0
	for _, standing := range g.Ranking() {
		total += standing.Score
		require.Len(t, standing.Agent.Decisions(), 5)
	}
	require.Equal(t, 5.0, total)
	require.GreaterOrEqual(t, g.Performance(), 0.0)
	require.LessOrEqual(t, g.Performance(), 1.0)
	require.Contains(t, g.String(), "ann : ")
}

func TestSpecPlayerCount(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	spec := Spec{MinPlayers: 2, MaxPlayers: 4}
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		n := spec.PlayerCount(rng)
		require.GreaterOrEqual(t, n, 2)
		require.LessOrEqual(t, n, 4)
		seen[n] = true
	}
	require.Len(t, seen, 3)
	require.Equal(t, 3, Spec{MinPlayers: 3, MaxPlayers: 3}.PlayerCount(rng))
}
