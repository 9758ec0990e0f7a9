package agent

import (
	"context"
	"fmt"

	"gennsing/internal/decision"
	"gennsing/internal/nn"
)

// AI answers decisions with its Brain.
type AI struct {
	history
	name  string
	brain *nn.Brain
}

func NewAI(name string, brain *nn.Brain) (*AI, error) {
	if name == "" {
		return nil, fmt.Errorf("ai name is required")
	}
	if brain == nil {
		return nil, fmt.Errorf("ai %s: brain is required", name)
	}
	return &AI{name: name, brain: brain}, nil
}

func (a *AI) Name() string {
	return a.name
}

func (a *AI) Brain() *nn.Brain {
	return a.brain
}

func (a *AI) Decide(ctx context.Context, _ fmt.Stringer, d decision.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.Through(a.brain); err != nil {
		return fmt.Errorf("ai %s: %w", a.name, err)
	}
	a.record(d)
	return nil
}

// Learn queues the gradients that would move this AI's answer toward
// target. The brain is not updated.
func (a *AI) Learn(target decision.Decision) error {
	actual := target.Fresh()
	if err := actual.Through(a.brain); err != nil {
		return fmt.Errorf("ai %s: %w", a.name, err)
	}
	diffs, err := target.Differences(actual)
	if err != nil {
		return fmt.Errorf("ai %s: %w", a.name, err)
	}
	for _, diff := range diffs {
		if err := diff.Apply(a.brain); err != nil {
			return fmt.Errorf("ai %s: %w", a.name, err)
		}
	}
	return nil
}

// Renew returns an AI sharing this brain with an empty history.
func (a *AI) Renew() *AI {
	return &AI{name: a.name, brain: a.brain}
}
