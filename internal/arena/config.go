package arena

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gennsing/internal/agent"
	"gennsing/internal/nn"
)

var (
	ErrNamespaceExhausted = errors.New("no unused names left in the namespace")
	ErrNotAI              = errors.New("agent is not backed by a brain")
	ErrOverlap            = errors.New("name sets overlap")
)

//go:embed names.txt
var defaultNames string

// DefaultNames is the built-in namespace for pool members.
func DefaultNames() []string {
	return ParseNames(defaultNames)
}

// ParseNames splits a comma or newline separated name list, dropping blanks
// and repeats.
func ParseNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	seen := make(map[string]struct{}, len(fields))
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

type Config struct {
	// MinimumBrains is the pool size Fill restores.
	MinimumBrains int
	// BaseRate is the learning rate before it is scaled by the ledger.
	BaseRate float64
	// Certainty sharpens the teacher's choices into training targets.
	Certainty float64
	// Perturb and Mutate shape the clones Fill makes of a winner.
	Perturb     float64
	Mutate      float64
	WeightRange float64
	Names       []string
}

func DefaultConfig() Config {
	return Config{
		MinimumBrains: 10,
		BaseRate:      0.1,
		Certainty:     agent.DefaultCertainty,
		Perturb:       0.1,
		Mutate:        0.05,
		WeightRange:   nn.DefaultWeightRange,
		Names:         DefaultNames(),
	}
}

func (c Config) Validate() error {
	if c.MinimumBrains < 2 {
		return fmt.Errorf("minimum brains must be at least 2, got %d", c.MinimumBrains)
	}
	if c.BaseRate <= 0 {
		return fmt.Errorf("base rate must be positive, got %g", c.BaseRate)
	}
	if !(c.Certainty > 0.5 && c.Certainty <= 1) {
		return fmt.Errorf("certainty must lie in (0.5, 1], got %g", c.Certainty)
	}
	if c.Perturb < 0 || c.Perturb > 1 {
		return fmt.Errorf("perturb must lie in [0, 1], got %g", c.Perturb)
	}
	if c.Mutate < 0 || c.Mutate > 1 {
		return fmt.Errorf("mutate must lie in [0, 1], got %g", c.Mutate)
	}
	if c.WeightRange <= 0 {
		return fmt.Errorf("weight range must be positive, got %g", c.WeightRange)
	}
	if len(c.Names) < c.MinimumBrains {
		return fmt.Errorf("namespace holds %d names, pool needs %d", len(c.Names), c.MinimumBrains)
	}
	for _, name := range c.Names {
		if name == "" || strings.ContainsAny(name, "/\\\t\n ,") {
			return fmt.Errorf("invalid pool name %q", name)
		}
	}
	return nil
}
