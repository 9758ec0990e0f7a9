package nn

import "errors"

var (
	// ErrShape reports an input count or dimensionality that disagrees with
	// what a neuron, cortex or brain has already committed to.
	ErrShape = errors.New("shape mismatch")
	// ErrRange reports a stimulus value outside [0, 1].
	ErrRange        = errors.New("stimulus outside range")
	ErrDuplicateKey = errors.New("duplicate context key")
	ErrEmptyValue   = errors.New("empty context value")
)
