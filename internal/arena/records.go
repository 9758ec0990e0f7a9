package arena

import (
	"context"
	"fmt"

	"gennsing/internal/agent"
	"gennsing/internal/model"
	"gennsing/internal/storage"
)

// Recordkeeper maintains the pairwise win/loss ledgers of the pool and turns
// them into learning rates.
type Recordkeeper struct {
	store    storage.Store
	baseRate float64
}

func NewRecordkeeper(store storage.Store, baseRate float64) *Recordkeeper {
	return &Recordkeeper{store: store, baseRate: baseRate}
}

// Ledger returns the named ledger, empty when none is stored.
func (r *Recordkeeper) Ledger(ctx context.Context, name string) (model.Ledger, error) {
	ledger, ok, err := r.store.GetLedger(ctx, name)
	if err != nil {
		return model.Ledger{}, err
	}
	if !ok {
		return model.Ledger{Name: name}, nil
	}
	return ledger, nil
}

// RecordOutcome credits every winner one win against each loser and every
// loser 1/competitors of a loss against each winner. competitors defaults to
// the number of winners and losers.
func (r *Recordkeeper) RecordOutcome(ctx context.Context, winners, losers []agent.Agent, competitors int) error {
	winnerNames := make(map[string]struct{}, len(winners))
	for _, w := range winners {
		winnerNames[w.Name()] = struct{}{}
	}
	for _, l := range losers {
		if _, ok := winnerNames[l.Name()]; ok {
			return fmt.Errorf("%s both won and lost: %w", l.Name(), ErrOverlap)
		}
	}
	if competitors <= 0 {
		competitors = len(winners) + len(losers)
	}

	for _, w := range winners {
		if err := r.credit(ctx, w.Name(), losers, 1, 0); err != nil {
			return err
		}
	}
	for _, l := range losers {
		if err := r.credit(ctx, l.Name(), winners, 0, 1/float64(competitors)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recordkeeper) credit(ctx context.Context, name string, opponents []agent.Agent, wins, losses float64) error {
	ledger, err := r.Ledger(ctx, name)
	if err != nil {
		return err
	}
	for _, opponent := range opponents {
		ledger.Credit(opponent.Name(), wins, losses)
	}
	if err := r.store.SaveLedger(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger %s: %w", name, err)
	}
	return nil
}

// LearningRate scales the base rate by the share of the student's games
// against the teacher that the student lost. Without a record between the
// two the base rate applies.
func (r *Recordkeeper) LearningRate(ctx context.Context, teacher, student string) (float64, error) {
	ledger, err := r.Ledger(ctx, student)
	if err != nil {
		return 0, err
	}
	entry, ok := ledger.Entry(teacher)
	if !ok || entry.Wins+entry.Losses == 0 {
		return r.baseRate, nil
	}
	return r.baseRate * entry.Losses / (entry.Losses + entry.Wins), nil
}
