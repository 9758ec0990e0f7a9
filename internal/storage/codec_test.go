package storage

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"gennsing/internal/model"
)

func TestEncodeBrainFormat(t *testing.T) {
	record := model.BrainRecord{Name: "ann", Neurons: []model.NeuronRecord{
		{Key: "a^2 * b^1 -> 1/3", Weights: []float64{0.1, -2, 3.5e-07}},
		{Key: "3 -> (1/1) out^1", Weights: []float64{0}},
	}}
	require.Equal(t, "a^2 * b^1 -> 1/3\t0.1|-2|3.5e-07\n3 -> (1/1) out^1\t0\n", string(EncodeBrain(record)))
}

func TestBrainRoundTripIsBitIdentical(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	record := model.BrainRecord{Name: "ann"}
	for i := 0; i < 20; i++ {
		weights := make([]float64, 1+rng.Intn(6))
		for w := range weights {
			weights[w] = (rng.Float64()*2 - 1) * math.Pow(10, float64(rng.Intn(10)-5))
		}
		record.Neurons = append(record.Neurons, model.NeuronRecord{Key: "k" + string(rune('a'+i)) + " -> 1/2", Weights: weights})
	}
	record.Neurons[0].Weights[0] = math.SmallestNonzeroFloat64
	record.Neurons[1].Weights[0] = math.MaxFloat64

	decoded, err := DecodeBrain("ann", EncodeBrain(record))
	require.NoError(t, err)
	require.Equal(t, record, decoded)
	for i := range record.Neurons {
		for w := range record.Neurons[i].Weights {
			require.Equal(t, math.Float64bits(record.Neurons[i].Weights[w]), math.Float64bits(decoded.Neurons[i].Weights[w]))
		}
	}
}

func TestDecodeBrainIgnoresBlankLines(t *testing.T) {
	record, err := DecodeBrain("ann", []byte("\nk -> 1/1\t0.5|0.25\r\n\n   \n"))
	require.NoError(t, err)
	require.Equal(t, []model.NeuronRecord{{Key: "k -> 1/1", Weights: []float64{0.5, 0.25}}}, record.Neurons)

	empty, err := DecodeBrain("ann", nil)
	require.NoError(t, err)
	require.Empty(t, empty.Neurons)
}

func TestDecodeRejectsMalformedLines(t *testing.T) {
	brains := []string{
		"no tab here",
		"k\t0.1|x",
		"k\t0.1\t0.2",
		"\t0.1",
		"k\t",
	}
	for _, text := range brains {
		_, err := DecodeBrain("ann", []byte(text))
		require.ErrorIs(t, err, ErrMalformed, text)
	}

	ledgers := []string{
		"bob\t1",
		"bob\t1\t2\t3",
		"bob\tone\t0",
		"bob\t1\tzero",
		"\t1\t0",
	}
	for _, text := range ledgers {
		_, err := DecodeLedger("ann", []byte(text))
		require.ErrorIs(t, err, ErrMalformed, text)
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	ledger := model.Ledger{Name: "ann", Entries: []model.LedgerEntry{
		{Opponent: "bob", Wins: 2, Losses: 1.0 / 3},
		{Opponent: "cid", Wins: 0, Losses: 0.5},
	}}
	data := EncodeLedger(ledger)
	require.Equal(t, "bob\t2\t0.3333333333333333\ncid\t0\t0.5\n", string(data))

	decoded, err := DecodeLedger("ann", data)
	require.NoError(t, err)
	require.Equal(t, ledger, decoded)
}
