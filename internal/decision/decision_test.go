package decision

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"gennsing/internal/nn"
)

func testBrain(seed int64) *nn.Brain {
	return nn.NewBrain(nn.BrainConfig{Rand: rand.New(rand.NewSource(seed))})
}

func cardContext(rank float64) nn.Context {
	return nn.Context{{Key: "rank", Value: nn.Scalar(rank)}}
}

func threeCards() *Enumeration {
	e := NewEnumeration(nn.Context{{Key: "trump", Value: nn.Vector(1, 0, 0, 0)}}, "play", "Pick a card")
	e.Add(cardContext(0.2), "card", 2, "two")
	e.Add(cardContext(0.9), "card", 9, "nine")
	e.Add(cardContext(0.5), "card", 5, "five")
	return e
}

func TestSelectionBeforeAnswerIsNotReady(t *testing.T) {
	_, err := NewEvaluation(cardContext(0.1), "bid", 2, "").Selection()
	require.ErrorIs(t, err, ErrNotReady)

	_, err = threeCards().Selection()
	require.ErrorIs(t, err, ErrNotReady)

	_, err = NewEnumeration(nil, "play", "").Selection()
	require.ErrorIs(t, err, ErrNotReady)

	_, err = NewVerification(cardContext(0.1), "pass", "").Selection()
	require.ErrorIs(t, err, ErrNotReady)
}

func TestEnumerationTieGoesToFirstOption(t *testing.T) {
	e := threeCards()
	for _, option := range e.options {
		option.activation, option.answered = 0.5, true
	}
	selected, err := e.Selection()
	require.NoError(t, err)
	require.Equal(t, 2, selected.ID)

	e.options[2].activation = 0.7
	e.options[1].activation = 0.7
	selected, err = e.Selection()
	require.NoError(t, err)
	require.Equal(t, 9, selected.ID)
}

func TestEnumerationThroughScoresEveryOption(t *testing.T) {
	brain := testBrain(1)
	e := threeCards()
	require.NoError(t, e.Through(brain))
	require.True(t, e.Ready())
	for _, option := range e.Options() {
		activation, ok := option.Activation()
		require.True(t, ok)
		require.GreaterOrEqual(t, activation, 0.0)
		require.LessOrEqual(t, activation, 1.0)
	}
	dims, ok := brain.Dimension("play")
	require.True(t, ok)
	require.Equal(t, 1, dims)
}

func TestClarifiedKeepsSelection(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		brain := testBrain(seed)
		e := threeCards()
		require.NoError(t, e.Through(brain))
		want, err := e.SelectionIndex()
		require.NoError(t, err)

		for _, certainty := range []float64{0.51, 0.75, 0.95, 1} {
			clarified, err := e.Clarified(certainty)
			require.NoError(t, err)
			got, err := clarified.(*Enumeration).SelectionIndex()
			require.NoError(t, err)
			require.Equal(t, want, got)
			for i, option := range clarified.(*Enumeration).options {
				if i == got {
					require.Equal(t, certainty, option.activation)
				} else {
					require.InDelta(t, 1-certainty, option.activation, 1e-15)
				}
			}
		}
	}
}

func TestClarifiedRejectsCertainty(t *testing.T) {
	e := threeCards()
	require.NoError(t, e.Choose(1, 0.9))
	v := NewVerification(nil, "pass", "")
	require.NoError(t, v.Choose(true, 0.9))
	ev := NewEvaluation(nil, "bid", 1, "")
	require.NoError(t, ev.Set([]float64{0.3}))

	for _, d := range []Decision{e, v, ev} {
		for _, certainty := range []float64{0.5, 0.2, 1.01, -1} {
			_, err := d.Clarified(certainty)
			require.ErrorIs(t, err, ErrCertainty, "%T %g", d, certainty)
		}
	}
	require.ErrorIs(t, e.Choose(0, 0.5), ErrCertainty)
	require.ErrorIs(t, e.Choose(3, 0.9), ErrMismatch)
}

func TestVerificationThreshold(t *testing.T) {
	v := NewVerification(nil, "pass", "")
	v.activation, v.answered = 0.5, true
	yes, err := v.Selection()
	require.NoError(t, err)
	require.False(t, yes)

	v.activation = 0.5000001
	yes, err = v.Selection()
	require.NoError(t, err)
	require.True(t, yes)

	clarified, err := v.Clarified(0.8)
	require.NoError(t, err)
	require.Equal(t, 0.8, clarified.(*Verification).Activation())
}

func TestEvaluationSetValidates(t *testing.T) {
	e := NewEvaluation(nil, "bid", 2, "")
	require.ErrorIs(t, e.Set([]float64{0.1}), ErrMismatch)
	require.ErrorIs(t, e.Set([]float64{0.1, 1.2}), nn.ErrRange)
	require.NoError(t, e.Set([]float64{0.1, 0.9}))

	clarified, err := e.Clarified(0.95)
	require.NoError(t, err)
	got, err := clarified.(*Evaluation).Selection()
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.9}, got)
}

func TestFreshDropsAnswers(t *testing.T) {
	e := threeCards()
	require.NoError(t, e.Choose(0, 0.95))
	fresh := e.Fresh()
	require.False(t, fresh.Ready())
	require.True(t, e.Ready())
	require.Len(t, fresh.(*Enumeration).Options(), 3)
	require.Equal(t, e.String(), fresh.String())
}

func TestEnumerationDifferencesPerOption(t *testing.T) {
	target := threeCards()
	require.NoError(t, target.Choose(2, 0.9))
	other := threeCards()
	other.options[0].activation, other.options[0].answered = 0.3, true
	other.options[1].activation, other.options[1].answered = 0.6, true
	other.options[2].activation, other.options[2].answered = 0.4, true

	diffs, err := target.Differences(other)
	require.NoError(t, err)
	require.Len(t, diffs, 3)
	want := []float64{0.1 - 0.3, 0.1 - 0.6, 0.9 - 0.4}
	for i, diff := range diffs {
		require.Equal(t, "play", diff.Kind)
		require.Len(t, diff.Deltas, 1)
		require.InDelta(t, want[i], diff.Deltas[0], 1e-12)
		require.Equal(t, "context", diff.Context[0].Key)
		require.Equal(t, "card", diff.Context[1].Key)
	}
}

func TestDifferencesRejectMismatch(t *testing.T) {
	e := threeCards()
	require.NoError(t, e.Choose(0, 0.9))
	v := NewVerification(nil, "pass", "")
	require.NoError(t, v.Choose(true, 0.9))

	_, err := e.Differences(v)
	require.ErrorIs(t, err, ErrMismatch)

	shorter := NewEnumeration(nil, "play", "")
	shorter.Add(nil, "card", 1, "")
	require.NoError(t, shorter.Choose(0, 0.9))
	_, err = e.Differences(shorter)
	require.ErrorIs(t, err, ErrMismatch)

	_, err = e.Differences(threeCards())
	require.ErrorIs(t, err, ErrNotReady)

	_, err = NewDifference(nil, "x", []float64{1}, []float64{1, 2})
	require.ErrorIs(t, err, ErrMismatch)
}

func TestDifferenceApplyMovesTowardTarget(t *testing.T) {
	brain := testBrain(7)
	ctx := nn.Context{{Key: "hand", Value: nn.Vector(0.2, 0.9, 0.5)}}
	v := NewVerification(ctx, "pass", "")
	require.NoError(t, v.Through(brain))
	before := v.Activation()

	target := NewVerification(ctx, "pass", "")
	require.NoError(t, target.Choose(true, 0.95))
	for i := 0; i < 100; i++ {
		guess := v.Fresh()
		require.NoError(t, guess.Through(brain))
		diffs, err := target.Differences(guess)
		require.NoError(t, err)
		require.Len(t, diffs, 1)
		require.NoError(t, diffs[0].Apply(brain))
		brain.Update(2)
	}
	require.NoError(t, v.Through(brain))
	require.Greater(t, v.Activation(), before)
	yes, err := v.Selection()
	require.NoError(t, err)
	require.True(t, yes)
}

func TestEnumerationString(t *testing.T) {
	require.Equal(t, "Decision : Pick a card\n\tOption 0 : two\n\tOption 1 : nine\n\tOption 2 : five", threeCards().String())
	require.Equal(t, "Decision : pass", NewVerification(nil, "pass", "").String())
}
