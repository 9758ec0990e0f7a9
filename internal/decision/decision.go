package decision

import (
	"errors"
	"fmt"

	"gennsing/internal/nn"
)

var (
	ErrNotReady  = errors.New("decision has not been made")
	ErrCertainty = errors.New("certainty must lie in (0.5, 1]")
	ErrMismatch  = errors.New("decisions are not comparable")
)

// Decision is a request for output that a game hands to an agent. The agent
// fills it in, either through a Brain or from a human, and the game reads the
// result from the concrete type's Selection.
type Decision interface {
	Kind() string
	String() string
	Ready() bool
	Through(brain *nn.Brain) error
	// Fresh returns an unanswered copy with the same context.
	Fresh() Decision
	// Clarified returns an answered copy whose chosen output is certainty
	// and every other output 1-certainty.
	Clarified(certainty float64) (Decision, error)
	// Differences treats the receiver as the target and derives the training
	// signal that would move other toward it.
	Differences(other Decision) ([]Difference, error)
}

// Difference is one backpropagatable training example: the context to
// re-evaluate, the output kind, and target minus actual per output.
type Difference struct {
	Context nn.Context
	Kind    string
	Deltas  []float64
}

func NewDifference(ctx nn.Context, kind string, target, other []float64) (Difference, error) {
	if len(target) != len(other) {
		return Difference{}, fmt.Errorf("%s: %d target activations, %d others: %w", kind, len(target), len(other), ErrMismatch)
	}
	deltas := make([]float64, len(target))
	for i := range target {
		deltas[i] = target[i] - other[i]
	}
	return Difference{Context: ctx, Kind: kind, Deltas: deltas}, nil
}

// Apply queues the difference as gradients on brain. Nothing is committed
// until the brain is updated.
func (d Difference) Apply(brain *nn.Brain) error {
	s, err := nn.NewStimulus(d.Context)
	if err != nil {
		return err
	}
	return brain.FeedBackward(d.Deltas, d.Kind, s)
}

func checkCertainty(certainty float64) error {
	if !(certainty > 0.5 && certainty <= 1) {
		return fmt.Errorf("got %g: %w", certainty, ErrCertainty)
	}
	return nil
}

func label(kind, description string) string {
	if description == "" {
		return kind
	}
	return description
}
