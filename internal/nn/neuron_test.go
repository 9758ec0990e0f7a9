package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNeuronFeedStaysInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		inputs := make([]float64, 1+rng.Intn(6))
		weights := make([]float64, len(inputs)+1)
		for i := range weights {
			weights[i] = (rng.Float64()*2 - 1) * 50
		}
		for i := range inputs {
			inputs[i] = rng.Float64()
		}
		neuron, err := NewNeuron(weights)
		require.NoError(t, err)

		got, err := neuron.Feed(inputs)
		require.NoError(t, err)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 1.0)
	}
}

func TestNeuronFeedRejectsBadInputs(t *testing.T) {
	neuron, err := NewNeuron([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)

	tests := []struct {
		name   string
		inputs []float64
		want   error
	}{
		{name: "too-few", inputs: []float64{0.5}, want: ErrShape},
		{name: "too-many", inputs: []float64{0.5, 0.5, 0.5}, want: ErrShape},
		{name: "above-one", inputs: []float64{0.5, 1.01}, want: ErrRange},
		{name: "below-zero", inputs: []float64{-0.01, 0.5}, want: ErrRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := neuron.Feed(tc.inputs)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNeuronFeedBoundaryInputs(t *testing.T) {
	neuron, err := NewNeuron([]float64{0, 0, 0})
	require.NoError(t, err)

	got, err := neuron.Feed([]float64{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.5, got, 1e-12)
}

func TestNeuronUpdateCommitsMeanContribution(t *testing.T) {
	neuron, err := NewNeuron([]float64{0, 0, 0})
	require.NoError(t, err)

	require.NoError(t, neuron.Back([]float64{1, 0}, 0.2))
	require.NoError(t, neuron.Back([]float64{0, 1}, 0.4))
	require.Equal(t, 2, neuron.Pending())
	require.Equal(t, []float64{0, 0, 0}, neuron.Weights(), "back must not touch weights")

	neuron.Update(0.5)
	got := neuron.Weights()
	require.InDelta(t, 0.15, got[0], 1e-12)
	require.InDelta(t, 0.05, got[1], 1e-12)
	require.InDelta(t, 0.10, got[2], 1e-12)
	require.Zero(t, neuron.Pending())
}

func TestNeuronUpdateWithoutPendingIsNoop(t *testing.T) {
	neuron, err := NewNeuron([]float64{0.25, -0.5})
	require.NoError(t, err)

	neuron.Update(0.1)
	require.Equal(t, []float64{0.25, -0.5}, neuron.Weights())

	require.NoError(t, neuron.Back([]float64{1}, 1))
	neuron.Update(0.1)
	neuron.Update(0.1)
	require.InDeltaSlice(t, []float64{0.35, -0.4}, neuron.Weights(), 1e-12)
}

func TestNeuronBackRejectsShapeMismatch(t *testing.T) {
	neuron, err := NewNeuron([]float64{0, 0})
	require.NoError(t, err)
	require.ErrorIs(t, neuron.Back([]float64{0.1, 0.2}, 1), ErrShape)
	require.Zero(t, neuron.Pending())
}

func TestNewNeuronRequiresBias(t *testing.T) {
	_, err := NewNeuron(nil)
	require.ErrorIs(t, err, ErrShape)
}

func TestNeuronString(t *testing.T) {
	neuron, err := NewNeuron([]float64{0.1, -2, 3.5e-7})
	require.NoError(t, err)
	require.Equal(t, "0.1|-2|3.5e-07", neuron.String())
}
