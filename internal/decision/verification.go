package decision

import (
	"fmt"

	"gennsing/internal/nn"
)

// Verification is a yes/no decision on a single activation thresholded at
// one half.
type Verification struct {
	Context     nn.Context
	OutputKind  string
	Description string

	activation float64
	answered   bool
}

func NewVerification(ctx nn.Context, kind, description string) *Verification {
	return &Verification{Context: ctx, OutputKind: kind, Description: description}
}

func (v *Verification) Kind() string {
	return v.OutputKind
}

func (v *Verification) String() string {
	return "Decision : " + label(v.OutputKind, v.Description)
}

func (v *Verification) Ready() bool {
	return v.answered
}

func (v *Verification) Through(brain *nn.Brain) error {
	s, err := nn.NewStimulus(v.Context)
	if err != nil {
		return fmt.Errorf("%s: %w", v.OutputKind, err)
	}
	activations, err := brain.FeedForward(s, v.OutputKind, 1)
	if err != nil {
		return fmt.Errorf("%s: %w", v.OutputKind, err)
	}
	v.activation, v.answered = activations[0], true
	return nil
}

func (v *Verification) Choose(yes bool, certainty float64) error {
	if err := checkCertainty(certainty); err != nil {
		return err
	}
	v.activation, v.answered = certainty, true
	if !yes {
		v.activation = 1 - certainty
	}
	return nil
}

func (v *Verification) Selection() (bool, error) {
	if !v.answered {
		return false, fmt.Errorf("%s: %w", v.OutputKind, ErrNotReady)
	}
	return v.activation > 0.5, nil
}

func (v *Verification) Activation() float64 {
	return v.activation
}

func (v *Verification) Fresh() Decision {
	return NewVerification(v.Context, v.OutputKind, v.Description)
}

func (v *Verification) Clarified(certainty float64) (Decision, error) {
	if err := checkCertainty(certainty); err != nil {
		return nil, err
	}
	yes, err := v.Selection()
	if err != nil {
		return nil, err
	}
	out := NewVerification(v.Context, v.OutputKind, v.Description)
	if err := out.Choose(yes, certainty); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Verification) Differences(other Decision) ([]Difference, error) {
	o, ok := other.(*Verification)
	if !ok {
		return nil, fmt.Errorf("%s against %T: %w", v.OutputKind, other, ErrMismatch)
	}
	if o.OutputKind != v.OutputKind {
		return nil, fmt.Errorf("%s against %s: %w", v.OutputKind, o.OutputKind, ErrMismatch)
	}
	if !v.answered || !o.answered {
		return nil, fmt.Errorf("%s: %w", v.OutputKind, ErrNotReady)
	}
	diff, err := NewDifference(v.Context, v.OutputKind, []float64{v.activation}, []float64{o.activation})
	if err != nil {
		return nil, err
	}
	return []Difference{diff}, nil
}
