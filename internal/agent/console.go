package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gennsing/internal/decision"
)

// DefaultCertainty is the weight given to a human's choice.
const DefaultCertainty = 0.95

var errInput = errors.New("invalid input")

// Console is a human player answering on a text terminal.
type Console struct {
	history
	name      string
	in        *bufio.Scanner
	out       io.Writer
	certainty float64
}

func NewConsole(name string, in io.Reader, out io.Writer, certainty float64) *Console {
	if certainty == 0 {
		certainty = DefaultCertainty
	}
	return &Console{name: name, in: bufio.NewScanner(in), out: out, certainty: certainty}
}

func (c *Console) Name() string {
	return c.name
}

// Decide shows the game and the decision and reads answers until one is
// valid. Running out of input is an error.
func (c *Console) Decide(ctx context.Context, game fmt.Stringer, d decision.Decision) error {
	fmt.Fprintf(c.out, "%s\n%s\n", game, d)
	if e, ok := d.(*decision.Evaluation); ok {
		fmt.Fprintf(c.out, "\tChannels : %d\n", e.Count)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "? ")
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			return fmt.Errorf("%s: %w", c.name, io.ErrUnexpectedEOF)
		}
		err := c.answer(d, strings.TrimSpace(c.in.Text()))
		if err == nil {
			c.record(d)
			return nil
		}
		if !errors.Is(err, errInput) {
			return err
		}
		fmt.Fprintf(c.out, "%v\n", err)
	}
}

func (c *Console) answer(d decision.Decision, line string) error {
	switch d := d.(type) {
	case *decision.Enumeration:
		index, err := strconv.Atoi(line)
		if err != nil || index < 0 || index >= len(d.Options()) {
			return fmt.Errorf("%w: enter an option number from 0 to %d", errInput, len(d.Options())-1)
		}
		return d.Choose(index, c.certainty)
	case *decision.Verification:
		switch line {
		case "0":
			return d.Choose(false, c.certainty)
		case "1":
			return d.Choose(true, c.certainty)
		}
		return fmt.Errorf("%w: enter 0 or 1", errInput)
	case *decision.Evaluation:
		fields := strings.Fields(line)
		activations := make([]float64, len(fields))
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", errInput, field)
			}
			activations[i] = value
		}
		if err := d.Set(activations); err != nil {
			return fmt.Errorf("%w: %v", errInput, err)
		}
		return nil
	default:
		return fmt.Errorf("%s cannot answer %T", c.name, d)
	}
}

// Consult replays every decision this player made through ai and renders
// both clarified answers side by side.
func (c *Console) Consult(ai *AI) (string, error) {
	var b strings.Builder
	for _, d := range c.Decisions() {
		mine, err := d.Clarified(c.certainty)
		if err != nil {
			return "", err
		}
		second := d.Fresh()
		if err := second.Through(ai.Brain()); err != nil {
			return "", err
		}
		theirs, err := second.Clarified(c.certainty)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s\n%s : %s\n%s : %s\n\n", d, c.name, Selection(mine), ai.Name(), Selection(theirs))
	}
	return b.String(), nil
}
