package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Cortex is a fixed two-layer perceptron bound to one ordered combination of
// input signatures and one output signature. Dendrons form the hidden layer,
// axons the output layer.
type Cortex struct {
	inputs    []Signature
	output    Signature
	inputDims int
	dendrons  []*Neuron
	axons     []*Neuron
}

// HiddenWidth is the dendron count for a cortex of the given shape.
func HiddenWidth(inputDims, outputDims int) int {
	return int(math.Sqrt(float64(inputDims*outputDims))) + 1
}

func NewCortex(inputs []Signature, dendrons, axons []*Neuron, output Signature) (*Cortex, error) {
	inputDims := totalDimensions(inputs)
	for i, dendron := range dendrons {
		if dendron.Inputs() != inputDims {
			return nil, fmt.Errorf("dendron %d takes %d inputs, cortex provides %d: %w", i, dendron.Inputs(), inputDims, ErrShape)
		}
	}
	for i, axon := range axons {
		if axon.Inputs() != len(dendrons) {
			return nil, fmt.Errorf("axon %d takes %d inputs, cortex has %d dendrons: %w", i, axon.Inputs(), len(dendrons), ErrShape)
		}
	}
	if len(axons) != output.Dimensions {
		return nil, fmt.Errorf("output %s needs %d axons, got %d: %w", output, output.Dimensions, len(axons), ErrShape)
	}
	return &Cortex{
		inputs:    append([]Signature(nil), inputs...),
		output:    output,
		inputDims: inputDims,
		dendrons:  append([]*Neuron(nil), dendrons...),
		axons:     append([]*Neuron(nil), axons...),
	}, nil
}

func (c *Cortex) Inputs() []Signature {
	return append([]Signature(nil), c.inputs...)
}

func (c *Cortex) Output() Signature {
	return c.output
}

func (c *Cortex) HiddenWidth() int {
	return len(c.dendrons)
}

func (c *Cortex) Feed(inputs []float64) ([]float64, error) {
	_, outputs, err := c.activate(inputs)
	return outputs, err
}

// Back queues gradient contributions on every neuron for one training
// example. faults holds one error term per output (target minus activation
// at the top level). The returned faults belong to the cortex inputs, in
// input order, for callers that feed nested evaluations.
func (c *Cortex) Back(inputs, faults []float64) ([]float64, error) {
	if len(faults) != len(c.axons) {
		return nil, fmt.Errorf("cortex %s expects %d faults, got %d: %w", c.output, len(c.axons), len(faults), ErrShape)
	}
	hidden, outputs, err := c.activate(inputs)
	if err != nil {
		return nil, err
	}
	hiddenFaults, err := propagate(hidden, c.axons, outputs, faults)
	if err != nil {
		return nil, err
	}
	return propagate(inputs, c.dendrons, hidden, hiddenFaults)
}

func (c *Cortex) activate(inputs []float64) (hidden, outputs []float64, err error) {
	if len(inputs) != c.inputDims {
		return nil, nil, fmt.Errorf("cortex expects %d inputs, got %d: %w", c.inputDims, len(inputs), ErrShape)
	}
	hidden = make([]float64, len(c.dendrons))
	for i, dendron := range c.dendrons {
		if hidden[i], err = dendron.Feed(inputs); err != nil {
			return nil, nil, err
		}
	}
	outputs = make([]float64, len(c.axons))
	for i, axon := range c.axons {
		if outputs[i], err = axon.Feed(hidden); err != nil {
			return nil, nil, err
		}
	}
	return hidden, outputs, nil
}

// propagate backs one layer and returns the faults of the layer below,
// weighted by the pre-update weights (bias excluded).
func propagate(inputs []float64, neurons []*Neuron, outputs, faults []float64) ([]float64, error) {
	upstream := make([]float64, len(inputs))
	for i, neuron := range neurons {
		delta := SigmoidSlope(outputs[i]) * faults[i]
		if err := neuron.Back(inputs, delta); err != nil {
			return nil, err
		}
		floats.AddScaled(upstream, delta, neuron.weights[1:])
	}
	return upstream, nil
}
