package agent

import (
	"context"
	"fmt"

	"gennsing/internal/decision"
)

// Agent answers the decisions a game puts to it and remembers them in the
// order they were made.
type Agent interface {
	Name() string
	// Decide answers d in place. The game reads the answer from the
	// concrete decision's Selection.
	Decide(ctx context.Context, game fmt.Stringer, d decision.Decision) error
	Decisions() []decision.Decision
}

type history struct {
	decisions []decision.Decision
}

func (h *history) record(d decision.Decision) {
	h.decisions = append(h.decisions, d)
}

func (h *history) Decisions() []decision.Decision {
	return append([]decision.Decision(nil), h.decisions...)
}

// Selection renders the answer of a decision for reviews and logs.
func Selection(d decision.Decision) string {
	switch d := d.(type) {
	case *decision.Enumeration:
		option, err := d.Selection()
		if err != nil {
			return "-"
		}
		return option.String()
	case *decision.Verification:
		yes, err := d.Selection()
		if err != nil {
			return "-"
		}
		return fmt.Sprint(yes)
	case *decision.Evaluation:
		activations, err := d.Selection()
		if err != nil {
			return "-"
		}
		return fmt.Sprint(activations)
	default:
		return "?"
	}
}
