package nn

import "fmt"

// Stimulus is the network-evaluable form of a Context. Leaf vectors are held
// as given; nested sources are resolved by the Brain that evaluates them, so a
// single Stimulus can be fed to several brains.
type Stimulus struct {
	keys    []string
	leaves  [][]float64
	sources []*Stimulus
}

func NewStimulus(ctx Context) (*Stimulus, error) {
	s := &Stimulus{
		keys:    make([]string, 0, len(ctx)),
		leaves:  make([][]float64, 0, len(ctx)),
		sources: make([]*Stimulus, 0, len(ctx)),
	}
	seen := make(map[string]struct{}, len(ctx))
	for _, field := range ctx {
		if _, dup := seen[field.Key]; dup {
			return nil, fmt.Errorf("key %q: %w", field.Key, ErrDuplicateKey)
		}
		seen[field.Key] = struct{}{}

		if field.Value.isTree {
			source, err := NewStimulus(field.Value.nested)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", field.Key, err)
			}
			s.keys = append(s.keys, field.Key)
			s.leaves = append(s.leaves, nil)
			s.sources = append(s.sources, source)
			continue
		}
		if len(field.Value.vector) == 0 {
			return nil, fmt.Errorf("key %q: %w", field.Key, ErrEmptyValue)
		}
		s.keys = append(s.keys, field.Key)
		s.leaves = append(s.leaves, append([]float64(nil), field.Value.vector...))
		s.sources = append(s.sources, nil)
	}
	return s, nil
}

func (s *Stimulus) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s *Stimulus) Len() int {
	return len(s.keys)
}

// IsNested reports whether the i-th entry must be produced by a nested
// evaluation.
func (s *Stimulus) IsNested(i int) bool {
	return s.sources[i] != nil
}
