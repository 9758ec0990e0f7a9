package decision

import (
	"fmt"

	"gennsing/internal/nn"
)

// Evaluation asks for a vector of Count activations of one kind.
type Evaluation struct {
	Context     nn.Context
	OutputKind  string
	Count       int
	Description string

	activations []float64
}

func NewEvaluation(ctx nn.Context, kind string, count int, description string) *Evaluation {
	if count < 1 {
		count = 1
	}
	return &Evaluation{Context: ctx, OutputKind: kind, Count: count, Description: description}
}

func (e *Evaluation) Kind() string {
	return e.OutputKind
}

func (e *Evaluation) String() string {
	return "Decision : " + label(e.OutputKind, e.Description)
}

func (e *Evaluation) Ready() bool {
	return e.activations != nil
}

func (e *Evaluation) Through(brain *nn.Brain) error {
	s, err := nn.NewStimulus(e.Context)
	if err != nil {
		return fmt.Errorf("%s: %w", e.OutputKind, err)
	}
	activations, err := brain.FeedForward(s, e.OutputKind, e.Count)
	if err != nil {
		return fmt.Errorf("%s: %w", e.OutputKind, err)
	}
	e.activations = activations
	return nil
}

// Set answers the evaluation directly, as a human player does.
func (e *Evaluation) Set(activations []float64) error {
	if len(activations) != e.Count {
		return fmt.Errorf("%s takes %d activations, got %d: %w", e.OutputKind, e.Count, len(activations), ErrMismatch)
	}
	for i, activation := range activations {
		if activation < 0 || activation > 1 {
			return fmt.Errorf("activation %d is %g: %w", i, activation, nn.ErrRange)
		}
	}
	e.activations = append([]float64(nil), activations...)
	return nil
}

func (e *Evaluation) Selection() ([]float64, error) {
	if e.activations == nil {
		return nil, fmt.Errorf("%s: %w", e.OutputKind, ErrNotReady)
	}
	return append([]float64(nil), e.activations...), nil
}

func (e *Evaluation) Activations() []float64 {
	return append([]float64(nil), e.activations...)
}

func (e *Evaluation) Fresh() Decision {
	return NewEvaluation(e.Context, e.OutputKind, e.Count, e.Description)
}

// Clarified copies the activations unchanged: a vector answer has no single
// chosen output to sharpen.
func (e *Evaluation) Clarified(certainty float64) (Decision, error) {
	if err := checkCertainty(certainty); err != nil {
		return nil, err
	}
	if e.activations == nil {
		return nil, fmt.Errorf("%s: %w", e.OutputKind, ErrNotReady)
	}
	out := NewEvaluation(e.Context, e.OutputKind, e.Count, e.Description)
	out.activations = append([]float64(nil), e.activations...)
	return out, nil
}

func (e *Evaluation) Differences(other Decision) ([]Difference, error) {
	o, ok := other.(*Evaluation)
	if !ok {
		return nil, fmt.Errorf("%s against %T: %w", e.OutputKind, other, ErrMismatch)
	}
	if o.OutputKind != e.OutputKind {
		return nil, fmt.Errorf("%s against %s: %w", e.OutputKind, o.OutputKind, ErrMismatch)
	}
	if e.activations == nil || o.activations == nil {
		return nil, fmt.Errorf("%s: %w", e.OutputKind, ErrNotReady)
	}
	diff, err := NewDifference(e.Context, e.OutputKind, e.activations, o.activations)
	if err != nil {
		return nil, err
	}
	return []Difference{diff}, nil
}
