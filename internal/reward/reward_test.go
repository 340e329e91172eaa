package reward

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/scml"
)

func testInfo() scml.SystemInfo {
	names := []string{"omega", "torque", "i", "u", "u_sup"}
	positions := make(map[string]int)
	for i, n := range names {
		positions[n] = i
	}
	return scml.SystemInfo{
		StateNames:     names,
		StatePositions: positions,
		StateSpace:     scml.UnitBox(5),
	}
}

func TestPerfectTrackingYieldsBias(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1})
	require.NoError(t, r.Configure(testInfo()))

	state := []float64{0.4, 0, 0, 0, 1}
	reference := []float64{0.4, 0, 0, 0, 0}
	assert.InDelta(t, 0.0, r.Reward(state, reference, 0, scml.Action{}, 0), 1e-12)
}

func TestWorstCaseErrorYieldsLowerBound(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1})
	require.NoError(t, r.Configure(testInfo()))

	state := []float64{1, 0, 0, 0, 0}
	reference := []float64{-1, 0, 0, 0, 0}
	low, _ := r.RewardRange()
	assert.InDelta(t, low, r.Reward(state, reference, 0, scml.Action{}, 0), 1e-12)
}

func TestWeightsAreNormalized(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 3, "i": 1})
	require.NoError(t, r.Configure(testInfo()))

	// Full error on omega only: weight 3/4 of the total.
	state := []float64{1, 0, 0, 0, 0}
	reference := []float64{-1, 0, 0, 0, 0}
	assert.InDelta(t, -0.75, r.Reward(state, reference, 0, scml.Action{}, 0), 1e-12)
}

func TestPowerShapesTheError(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1}, WithPower(2))
	require.NoError(t, r.Configure(testInfo()))

	state := []float64{0.5, 0, 0, 0, 0}
	reference := []float64{0, 0, 0, 0, 0}
	// |0.5| / 2 = 0.25, squared.
	assert.InDelta(t, -0.0625, r.Reward(state, reference, 0, scml.Action{}, 0), 1e-12)
}

func TestViolationReward(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1}, WithGamma(0.9))
	require.NoError(t, r.Configure(testInfo()))

	got := r.Reward([]float64{0, 0, 0, 0, 0}, make([]float64, 5), 0, scml.Action{}, 1.0)
	assert.InDelta(t, -10.0, got, 1e-9)

	// Violations dominate every admissible reward.
	low, _ := r.RewardRange()
	assert.Less(t, got, low)
}

func TestExplicitViolationReward(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1}, WithViolationReward(-100))
	require.NoError(t, r.Configure(testInfo()))

	got := r.Reward(make([]float64, 5), make([]float64, 5), 0, scml.Action{}, 2.0)
	assert.Equal(t, -100.0, got)
}

func TestBiasShiftsRange(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1}, WithBias(1))
	require.NoError(t, r.Configure(testInfo()))

	low, high := r.RewardRange()
	assert.Equal(t, 0.0, low)
	assert.Equal(t, 1.0, high)

	state := []float64{0.4, 0, 0, 0, 0}
	got := r.Reward(state, state, 0, scml.Action{}, 0)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestUnknownWeightName(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"psi": 1})
	err := r.Configure(testInfo())
	require.Error(t, err)
	assert.True(t, errors.Is(err, env.ErrUnknownState))
}

func TestRewardIsFiniteAcrossRange(t *testing.T) {
	r := NewWeightedSumOfErrors(map[string]float64{"omega": 1, "i": 2}, WithPower(0.5))
	require.NoError(t, r.Configure(testInfo()))

	for _, s := range []float64{-1, -0.5, 0, 0.5, 1} {
		got := r.Reward([]float64{s, 0, -s, 0, 0}, make([]float64, 5), 0, scml.Action{}, 0)
		assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
	}
}
