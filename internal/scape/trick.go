package scape

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"gennsing/internal/agent"
	"gennsing/internal/decision"
	"gennsing/internal/nn"
)

const (
	TrickName     = "trick"
	trickRanks    = 13
	trickSuits    = 4
	trickHandSize = 5
)

var errGameOver = errors.New("game is over")

func init() {
	if err := Register(Spec{Name: TrickName, MinPlayers: 2, MaxPlayers: 4, New: NewTrick}); err != nil {
		panic(err)
	}
}

type card struct {
	rank int
	suit int
}

func (c card) String() string {
	return fmt.Sprintf("%s%c", [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}[c.rank], "SHDC"[c.suit])
}

type trickPlayer struct {
	agent  agent.Agent
	hand   []card
	tricks int
}

type play struct {
	seat int
	card card
}

// Trick is a small trick-taking card game. Every round each player, starting
// from a rotating leader, plays one card from a five card hand; the highest
// rank takes the trick and ties go to the earlier card.
type Trick struct {
	players   []*trickPlayer
	round     int
	table     []play
	picks     int
	bestPicks int
	finalized bool
}

func NewTrick(agents []agent.Agent, rng *rand.Rand) (Game, error) {
	spec := Spec{Name: TrickName, MinPlayers: 2, MaxPlayers: 4}
	if err := spec.checkPlayers(agents); err != nil {
		return nil, err
	}
	deck := rng.Perm(trickRanks * trickSuits)
	t := &Trick{players: make([]*trickPlayer, len(agents))}
	for i, a := range agents {
		p := &trickPlayer{agent: a}
		for _, n := range deck[i*trickHandSize : (i+1)*trickHandSize] {
			p.hand = append(p.hand, card{rank: n % trickRanks, suit: n / trickRanks})
		}
		t.players[i] = p
	}
	return t, nil
}

func (t *Trick) DoRound(ctx context.Context) error {
	if t.round >= trickHandSize {
		return errGameOver
	}
	t.table = t.table[:0]
	leader := t.round % len(t.players)
	for i := range t.players {
		seat := (leader + i) % len(t.players)
		if err := t.turn(ctx, seat); err != nil {
			return err
		}
	}

	winner := t.table[0]
	for _, p := range t.table[1:] {
		if p.card.rank > winner.card.rank {
			winner = p
		}
	}
	t.players[winner.seat].tricks++
	t.round++
	return nil
}

func (t *Trick) turn(ctx context.Context, seat int) error {
	p := t.players[seat]
	lead := 0.0
	for _, played := range t.table {
		lead = max(lead, rankValue(played.card))
	}
	d := decision.NewEnumeration(nn.Context{
		{Key: "round", Value: nn.Scalar(float64(t.round) / float64(trickHandSize-1))},
		{Key: "lead", Value: nn.Scalar(lead)},
	}, "play", p.agent.Name()+" plays a card")
	for _, c := range p.hand {
		d.Add(nn.Context{{Key: "rank", Value: nn.Scalar(rankValue(c))}}, "card", c, c.String())
	}

	if err := p.agent.Decide(ctx, t, d); err != nil {
		return fmt.Errorf("%s round %d: %w", TrickName, t.round+1, err)
	}
	index, err := d.SelectionIndex()
	if err != nil {
		return err
	}

	chosen := p.hand[index]
	best := true
	for _, c := range p.hand {
		if c.rank > chosen.rank {
			best = false
		}
	}
	t.picks++
	if best {
		t.bestPicks++
	}
	p.hand = append(p.hand[:index:index], p.hand[index+1:]...)
	t.table = append(t.table, play{seat: seat, card: chosen})
	return nil
}

func rankValue(c card) float64 {
	return float64(c.rank) / float64(trickRanks-1)
}

func (t *Trick) Completion() float64 {
	return 100 * float64(t.round) / float64(trickHandSize)
}

// Performance is the share of plays that were the player's highest card.
func (t *Trick) Performance() float64 {
	if t.picks == 0 {
		return 0
	}
	return float64(t.bestPicks) / float64(t.picks)
}

func (t *Trick) Finalize(_ context.Context) error {
	if t.round < trickHandSize {
		return fmt.Errorf("%s finalized after %d of %d rounds", TrickName, t.round, trickHandSize)
	}
	t.finalized = true
	return nil
}

// Ranking orders players by tricks taken. Ties keep seating order.
func (t *Trick) Ranking() []Standing {
	standings := make([]Standing, len(t.players))
	for i, p := range t.players {
		standings[i] = Standing{Agent: p.agent, Score: float64(p.tricks)}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}

func (t *Trick) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trick %d/%d", min(t.round+1, trickHandSize), trickHandSize)
	for _, p := range t.players {
		fmt.Fprintf(&b, "\n\t%s : %d tricks, %d cards", p.agent.Name(), p.tricks, len(p.hand))
	}
	if len(t.table) > 0 {
		parts := make([]string, len(t.table))
		for i, played := range t.table {
			parts[i] = t.players[played.seat].agent.Name() + " " + played.card.String()
		}
		b.WriteString("\n\tTable : " + strings.Join(parts, ", "))
	}
	return b.String()
}
