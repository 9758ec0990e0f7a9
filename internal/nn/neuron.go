package nn

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Neuron is a single sigmoid unit. Weights[0] is the bias; the remaining
// weights pair with inputs in order. Gradient contributions accumulate until
// Update commits their mean.
type Neuron struct {
	weights []float64
	grad    accumulator
}

type accumulator struct {
	sum []float64
	n   int
}

func (a *accumulator) add(contribution []float64) {
	if a.sum == nil {
		a.sum = make([]float64, len(contribution))
	}
	floats.Add(a.sum, contribution)
	a.n++
}

func (a *accumulator) mean() []float64 {
	out := append([]float64(nil), a.sum...)
	floats.Scale(1/float64(a.n), out)
	return out
}

func (a *accumulator) reset() {
	a.sum = nil
	a.n = 0
}

func NewNeuron(weights []float64) (*Neuron, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("neuron needs at least a bias weight: %w", ErrShape)
	}
	return &Neuron{weights: append([]float64(nil), weights...)}, nil
}

// Inputs is the number of inputs the neuron accepts.
func (n *Neuron) Inputs() int {
	return len(n.weights) - 1
}

func (n *Neuron) Weights() []float64 {
	return append([]float64(nil), n.weights...)
}

// Pending is the number of gradient contributions awaiting Update.
func (n *Neuron) Pending() int {
	return n.grad.n
}

func (n *Neuron) Feed(inputs []float64) (float64, error) {
	if err := n.checkInputs(inputs); err != nil {
		return 0, err
	}
	for i, input := range inputs {
		if !inUnitInterval(input) {
			return 0, fmt.Errorf("input %d is %g: %w", i, input, ErrRange)
		}
	}
	return Sigmoid(n.weights[0] + floats.Dot(inputs, n.weights[1:])), nil
}

// Back queues the contribution [delta, delta*input_1, ...] without touching
// the weights.
func (n *Neuron) Back(inputs []float64, delta float64) error {
	if err := n.checkInputs(inputs); err != nil {
		return err
	}
	contribution := make([]float64, len(n.weights))
	contribution[0] = delta
	for i, input := range inputs {
		contribution[i+1] = delta * input
	}
	n.grad.add(contribution)
	return nil
}

// Update applies weight += rate * mean(contributions) and clears the
// accumulator. With nothing pending it leaves the weights unchanged.
func (n *Neuron) Update(rate float64) {
	if n.grad.n == 0 {
		return
	}
	floats.AddScaled(n.weights, rate, n.grad.mean())
	n.grad.reset()
}

func (n *Neuron) checkInputs(inputs []float64) error {
	if len(inputs)+1 != len(n.weights) {
		return fmt.Errorf("neuron takes %d inputs, got %d: %w", len(n.weights)-1, len(inputs), ErrShape)
	}
	return nil
}

func (n *Neuron) String() string {
	parts := make([]string, len(n.weights))
	for i, weight := range n.weights {
		parts[i] = strconv.FormatFloat(weight, 'g', -1, 64)
	}
	return strings.Join(parts, "|")
}
