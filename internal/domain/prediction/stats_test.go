package prediction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedMeanPullsTowardHeavierWeights(t *testing.T) {
	values := []float64{1.0, 2.0}
	weights := []float64{9, 1}
	got := weightedMean(values, weights)
	require.InDelta(t, 1.1, got, 1e-9)
}

func TestWeightedMeanDegenerateWeights(t *testing.T) {
	values := []float64{1.0, 2.0, 3.0}
	require.InDelta(t, 2.0, weightedMean(values, nil), 1e-9)
	require.InDelta(t, 2.0, weightedMean(values, []float64{0, 0, 0}), 1e-9)
}

func TestConfidenceForFewPoints(t *testing.T) {
	require.Equal(t, 0.5, confidenceFor(nil))
	require.Equal(t, 0.5, confidenceFor([]float64{1.5}))
}

func TestConfidenceForBounds(t *testing.T) {
	// Identical observations: zero spread, full confidence.
	require.Equal(t, 1.0, confidenceFor([]float64{2, 2, 2}))
	// Wildly spread observations stay at the floor, never below.
	require.Equal(t, 0.1, confidenceFor([]float64{0.1, 50, 0.2, 80}))
}

func TestModeTieBreaksLexicographically(t *testing.T) {
	require.Equal(t, "E", mode([]string{"NE", "E", "E", "NE"}))
	require.Equal(t, "NW", mode([]string{"W", "NW", "NW", "W", "NW"}))
	require.Equal(t, "", mode(nil))
}

func TestModeIntTieBreaksSmallest(t *testing.T) {
	require.Equal(t, 8, modeInt([]int{8, 16, 16, 8}))
	require.Equal(t, 0, modeInt(nil))
}

func TestRound1(t *testing.T) {
	require.Equal(t, 7.5, round1(7.45))
	require.Equal(t, 1.0, round1(0.963))
	require.Equal(t, -2.3, round1(-2.34))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 0.1, clamp(-5, 0.1, 1))
	require.Equal(t, 1.0, clamp(3, 0.1, 1))
	require.Equal(t, 0.4, clamp(0.4, 0.1, 1))
}
