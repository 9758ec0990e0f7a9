package nn

import (
	"fmt"
	"math/rand"
	"time"

	"gennsing/internal/model"
)

// DefaultWeightRange bounds freshly drawn weights to [-0.1, 0.1].
const DefaultWeightRange = 0.1

type BrainConfig struct {
	WeightRange float64
	Rand        *rand.Rand
}

// Brain owns every neuron of one competitor, keyed by structural position,
// and builds cortices lazily for each input/output shape it is asked to
// evaluate. A Brain is not safe for concurrent use.
type Brain struct {
	neurons     map[string]*Neuron
	order       []string
	cortices    cortexCache
	dims        map[string]int
	weightRange float64
	rng         *rand.Rand
}

func NewBrain(cfg BrainConfig) *Brain {
	weightRange := cfg.WeightRange
	if weightRange <= 0 {
		weightRange = DefaultWeightRange
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Brain{
		neurons:     make(map[string]*Neuron),
		dims:        make(map[string]int),
		weightRange: weightRange,
		rng:         rng,
	}
}

// NewBrainFromRecord restores the neurons of a persisted brain. Cortices and
// channel dimensionalities are rebuilt on first use.
func NewBrainFromRecord(record model.BrainRecord, cfg BrainConfig) (*Brain, error) {
	b := NewBrain(cfg)
	for _, neuronRecord := range record.Neurons {
		if _, exists := b.neurons[neuronRecord.Key]; exists {
			return nil, fmt.Errorf("neuron %q: %w", neuronRecord.Key, ErrDuplicateKey)
		}
		neuron, err := NewNeuron(neuronRecord.Weights)
		if err != nil {
			return nil, fmt.Errorf("neuron %q: %w", neuronRecord.Key, err)
		}
		b.addNeuron(neuronRecord.Key, neuron)
	}
	return b, nil
}

func (b *Brain) Record(name string) model.BrainRecord {
	record := model.BrainRecord{Name: name, Neurons: make([]model.NeuronRecord, 0, len(b.order))}
	for _, key := range b.order {
		record.Neurons = append(record.Neurons, model.NeuronRecord{Key: key, Weights: b.neurons[key].Weights()})
	}
	return record
}

func (b *Brain) Neuron(key string) (*Neuron, bool) {
	neuron, ok := b.neurons[key]
	return neuron, ok
}

// NeuronKeys lists neuron keys in creation (or load) order.
func (b *Brain) NeuronKeys() []string {
	return append([]string(nil), b.order...)
}

// Dimension reports the width recorded for a channel kind.
func (b *Brain) Dimension(kind string) (int, bool) {
	dims, ok := b.dims[kind]
	return dims, ok
}

func (b *Brain) WeightRange() float64 {
	return b.weightRange
}

// CortexCount is the number of cached cortices.
func (b *Brain) CortexCount() int {
	return b.cortices.size
}

// Pending is the total number of queued gradient contributions.
func (b *Brain) Pending() int {
	total := 0
	for _, neuron := range b.neurons {
		total += neuron.Pending()
	}
	return total
}

// FeedForward evaluates s and returns count activations of the given kind.
// A count of zero uses the recorded width of kind, or infers half the input
// width (at least one) on first sight.
func (b *Brain) FeedForward(s *Stimulus, kind string, count int) ([]float64, error) {
	inputs, signatures, err := b.resolve(s)
	if err != nil {
		return nil, err
	}
	output, err := b.outputSignature(kind, count, len(inputs))
	if err != nil {
		return nil, err
	}
	cortex, err := b.Cortex(signatures, output)
	if err != nil {
		return nil, err
	}
	return cortex.Feed(inputs)
}

// FeedBackward queues gradients for one training example: faults are the
// per-output error terms for kind given stimulus s. Outputs are recomputed
// from the current weights, and faults reaching a nested entry are passed on
// to the evaluation that produced it.
func (b *Brain) FeedBackward(faults []float64, kind string, s *Stimulus) error {
	dims, ok := b.dims[kind]
	if !ok {
		return fmt.Errorf("kind %q has never been evaluated: %w", kind, ErrShape)
	}
	if len(faults) != dims {
		return fmt.Errorf("kind %q has %d outputs, got %d faults: %w", kind, dims, len(faults), ErrShape)
	}
	inputs, signatures, err := b.resolve(s)
	if err != nil {
		return err
	}
	cortex, err := b.Cortex(signatures, Signature{Kind: kind, Dimensions: dims})
	if err != nil {
		return err
	}
	upstream, err := cortex.Back(inputs, faults)
	if err != nil {
		return err
	}

	offset := 0
	for i, signature := range signatures {
		width := signature.Dimensions
		if source := s.sources[i]; source != nil {
			if err := b.FeedBackward(upstream[offset:offset+width], signature.Kind, source); err != nil {
				return fmt.Errorf("nested %q: %w", signature.Kind, err)
			}
		}
		offset += width
	}
	return nil
}

// Cortex returns the cached cortex for the shape, building it on first
// request from persisted neurons where their keys exist.
func (b *Brain) Cortex(inputs []Signature, output Signature) (*Cortex, error) {
	if cortex, ok := b.cortices.get(inputs, output); ok {
		return cortex, nil
	}

	inputDims := totalDimensions(inputs)
	hidden := HiddenWidth(inputDims, output.Dimensions)
	inputsSummary := summarize(inputs)

	dendronKeys := make([]string, hidden)
	for d := range dendronKeys {
		dendronKeys[d] = fmt.Sprintf("%s -> %d/%d", inputsSummary, d+1, hidden)
	}
	axonKeys := make([]string, output.Dimensions)
	for a := range axonKeys {
		axonKeys[a] = fmt.Sprintf("%d -> (%d/%d) %s", hidden, a+1, output.Dimensions, output)
	}

	dendrons, err := b.neuronsFor(dendronKeys, inputDims)
	if err != nil {
		return nil, err
	}
	axons, err := b.neuronsFor(axonKeys, hidden)
	if err != nil {
		return nil, err
	}
	cortex, err := NewCortex(inputs, dendrons, axons, output)
	if err != nil {
		return nil, err
	}
	b.cortices.put(inputs, output, cortex)
	return cortex, nil
}

// Update commits the queued gradients of every neuron.
func (b *Brain) Update(rate float64) {
	for _, key := range b.order {
		b.neurons[key].Update(rate)
	}
}

// Mutate replaces each weight with a fresh random value with probability rate.
func (b *Brain) Mutate(rate float64) {
	for _, key := range b.order {
		weights := b.neurons[key].weights
		for i := range weights {
			if b.rng.Float64() < rate {
				weights[i] = b.randomWeight()
			}
		}
	}
}

// Clone returns a child whose weights are the parent's scaled by a uniform
// factor in [1-perturb, 1+perturb], then mutated with probability mutate.
func (b *Brain) Clone(perturb, mutate float64) *Brain {
	child := NewBrain(BrainConfig{WeightRange: b.weightRange, Rand: b.rng})
	for _, key := range b.order {
		weights := b.neurons[key].Weights()
		for i := range weights {
			weights[i] *= 1 - perturb + b.rng.Float64()*2*perturb
		}
		child.addNeuron(key, &Neuron{weights: weights})
	}
	child.Mutate(mutate)
	return child
}

func (b *Brain) resolve(s *Stimulus) ([]float64, []Signature, error) {
	var inputs []float64
	signatures := make([]Signature, len(s.keys))
	for i, key := range s.keys {
		values := s.leaves[i]
		if source := s.sources[i]; source != nil {
			evaluated, err := b.FeedForward(source, key, 0)
			if err != nil {
				return nil, nil, fmt.Errorf("nested %q: %w", key, err)
			}
			values = evaluated
		} else if _, known := b.dims[key]; !known {
			b.dims[key] = len(values)
		}
		if len(values) != b.dims[key] {
			return nil, nil, fmt.Errorf("key %q has %d values, brain recorded %d: %w", key, len(values), b.dims[key], ErrShape)
		}
		signatures[i] = Signature{Kind: key, Dimensions: len(values)}
		inputs = append(inputs, values...)
	}
	return inputs, signatures, nil
}

func (b *Brain) outputSignature(kind string, count, inputs int) (Signature, error) {
	dims, known := b.dims[kind]
	if !known {
		if count <= 0 {
			count = max(int(0.5+float64(inputs)/2), 1)
		}
		b.dims[kind] = count
		return Signature{Kind: kind, Dimensions: count}, nil
	}
	if count > 0 && count != dims {
		return Signature{}, fmt.Errorf("kind %q has %d outputs, asked for %d: %w", kind, dims, count, ErrShape)
	}
	return Signature{Kind: kind, Dimensions: dims}, nil
}

func (b *Brain) neuronsFor(keys []string, inputs int) ([]*Neuron, error) {
	neurons := make([]*Neuron, len(keys))
	for i, key := range keys {
		neuron, ok := b.neurons[key]
		if !ok {
			weights := make([]float64, inputs+1)
			for w := range weights {
				weights[w] = b.randomWeight()
			}
			neuron = &Neuron{weights: weights}
			b.addNeuron(key, neuron)
		} else if neuron.Inputs() != inputs {
			return nil, fmt.Errorf("neuron %q takes %d inputs, position needs %d: %w", key, neuron.Inputs(), inputs, ErrShape)
		}
		neurons[i] = neuron
	}
	return neurons, nil
}

func (b *Brain) addNeuron(key string, neuron *Neuron) {
	b.neurons[key] = neuron
	b.order = append(b.order, key)
}

func (b *Brain) randomWeight() float64 {
	return (b.rng.Float64()*2 - 1) * b.weightRange
}
