package decision

import (
	"fmt"
	"strconv"
	"strings"

	"gennsing/internal/nn"
)

// sharedKey names the shared context inside each option's merged context.
const sharedKey = "context"

// Option is one candidate of an Enumeration. ID is opaque to the network and
// exists for the game's own bookkeeping.
type Option struct {
	Context     nn.Context
	Kind        string
	ID          any
	Description string

	activation float64
	answered   bool
}

func (o *Option) Activation() (float64, bool) {
	return o.activation, o.answered
}

func (o *Option) String() string {
	return label(o.Kind, o.Description)
}

func (o *Option) fresh() *Option {
	return &Option{Context: o.Context, Kind: o.Kind, ID: o.ID, Description: o.Description}
}

// Enumeration is a multiple choice decision. Each option is scored
// independently on one output of the enumeration's kind and the highest score
// wins.
type Enumeration struct {
	Context     nn.Context
	OutputKind  string
	Description string

	options []*Option
}

func NewEnumeration(ctx nn.Context, kind, description string) *Enumeration {
	return &Enumeration{Context: ctx, OutputKind: kind, Description: description}
}

// Add appends an option and returns it. Options keep insertion order.
func (e *Enumeration) Add(ctx nn.Context, kind string, id any, description string) *Option {
	option := &Option{Context: ctx, Kind: kind, ID: id, Description: description}
	e.options = append(e.options, option)
	return option
}

func (e *Enumeration) Options() []*Option {
	return append([]*Option(nil), e.options...)
}

func (e *Enumeration) Kind() string {
	return e.OutputKind
}

func (e *Enumeration) String() string {
	var b strings.Builder
	b.WriteString("Decision : " + label(e.OutputKind, e.Description))
	width := len(strconv.Itoa(len(e.options)))
	for i, option := range e.options {
		fmt.Fprintf(&b, "\n\tOption %0*d : %s", width, i, option)
	}
	return b.String()
}

func (e *Enumeration) Ready() bool {
	if len(e.options) == 0 {
		return false
	}
	for _, option := range e.options {
		if !option.answered {
			return false
		}
	}
	return true
}

// OptionContext is the merged context an option is evaluated on.
func (e *Enumeration) OptionContext(option *Option) nn.Context {
	return nn.Context{
		{Key: sharedKey, Value: nn.Nested(e.Context)},
		{Key: option.Kind, Value: nn.Nested(option.Context)},
	}
}

func (e *Enumeration) Through(brain *nn.Brain) error {
	for i, option := range e.options {
		s, err := nn.NewStimulus(e.OptionContext(option))
		if err != nil {
			return fmt.Errorf("%s option %d: %w", e.OutputKind, i, err)
		}
		activations, err := brain.FeedForward(s, e.OutputKind, 1)
		if err != nil {
			return fmt.Errorf("%s option %d: %w", e.OutputKind, i, err)
		}
		option.activation, option.answered = activations[0], true
	}
	return nil
}

// Selection returns the option with the strictly highest activation. Ties go
// to the option added first.
func (e *Enumeration) Selection() (*Option, error) {
	if !e.Ready() {
		return nil, fmt.Errorf("%s: %w", e.OutputKind, ErrNotReady)
	}
	best := e.options[0]
	for _, option := range e.options[1:] {
		if option.activation > best.activation {
			best = option
		}
	}
	return best, nil
}

// SelectionIndex is the position of Selection among the options.
func (e *Enumeration) SelectionIndex() (int, error) {
	selected, err := e.Selection()
	if err != nil {
		return -1, err
	}
	for i, option := range e.options {
		if option == selected {
			return i, nil
		}
	}
	return -1, nil
}

// Choose answers the enumeration directly: option index gets certainty, the
// rest 1-certainty.
func (e *Enumeration) Choose(index int, certainty float64) error {
	if err := checkCertainty(certainty); err != nil {
		return err
	}
	if index < 0 || index >= len(e.options) {
		return fmt.Errorf("%s has %d options, chose %d: %w", e.OutputKind, len(e.options), index, ErrMismatch)
	}
	for i, option := range e.options {
		option.activation, option.answered = 1-certainty, true
		if i == index {
			option.activation = certainty
		}
	}
	return nil
}

func (e *Enumeration) Fresh() Decision {
	return e.fresh()
}

func (e *Enumeration) fresh() *Enumeration {
	out := NewEnumeration(e.Context, e.OutputKind, e.Description)
	out.options = make([]*Option, len(e.options))
	for i, option := range e.options {
		out.options[i] = option.fresh()
	}
	return out
}

func (e *Enumeration) Clarified(certainty float64) (Decision, error) {
	if err := checkCertainty(certainty); err != nil {
		return nil, err
	}
	index, err := e.SelectionIndex()
	if err != nil {
		return nil, err
	}
	out := e.fresh()
	if err := out.Choose(index, certainty); err != nil {
		return nil, err
	}
	return out, nil
}

// Differences yields one Difference per option, each on that option's merged
// context.
func (e *Enumeration) Differences(other Decision) ([]Difference, error) {
	o, ok := other.(*Enumeration)
	if !ok {
		return nil, fmt.Errorf("%s against %T: %w", e.OutputKind, other, ErrMismatch)
	}
	if o.OutputKind != e.OutputKind || len(o.options) != len(e.options) {
		return nil, fmt.Errorf("%s with %d options against %s with %d: %w", e.OutputKind, len(e.options), o.OutputKind, len(o.options), ErrMismatch)
	}
	if !e.Ready() || !o.Ready() {
		return nil, fmt.Errorf("%s: %w", e.OutputKind, ErrNotReady)
	}
	diffs := make([]Difference, len(e.options))
	for i, option := range e.options {
		diff, err := NewDifference(e.OptionContext(option), e.OutputKind, []float64{option.activation}, []float64{o.options[i].activation})
		if err != nil {
			return nil, err
		}
		diffs[i] = diff
	}
	return diffs, nil
}
