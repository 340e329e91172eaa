// Package reward provides reward functions scoring one control cycle of an
// episode.
package reward

import (
	"fmt"
	"math"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/scml"
)

// WeightedSumOfErrors punishes the weighted absolute deviation between the
// state and its reference:
//
//	reward = bias - sum_i w_i * (|state_i - reference_i| / span_i)^power
//
// Weights are normalized to sum one, so the per-cycle reward lies in
// [bias-1, bias]. A limit violation replaces the reward with the violation
// reward, by default the discounted worst case -1/(1-gamma)+bias, which
// makes terminating through a violation strictly worse than any admissible
// trajectory.
type WeightedSumOfErrors struct {
	weights map[string]float64
	power   float64
	bias    float64
	gamma   float64

	violationReward    float64
	hasViolationReward bool

	indices []int
	w       []float64
	span    []float64
}

func NewWeightedSumOfErrors(weights map[string]float64, opts ...Option) *WeightedSumOfErrors {
	r := &WeightedSumOfErrors{
		weights: weights,
		power:   1,
		gamma:   0.9,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type Option func(*WeightedSumOfErrors)

// WithPower raises the normalized error to the given exponent.
func WithPower(p float64) Option {
	return func(r *WeightedSumOfErrors) { r.power = p }
}

// WithBias shifts the reward range.
func WithBias(b float64) Option {
	return func(r *WeightedSumOfErrors) { r.bias = b }
}

// WithViolationReward fixes the reward paid on a limit violation instead of
// the discounted worst case.
func WithViolationReward(v float64) Option {
	return func(r *WeightedSumOfErrors) {
		r.violationReward = v
		r.hasViolationReward = true
	}
}

// WithGamma sets the discount factor the default violation reward assumes.
func WithGamma(g float64) Option {
	return func(r *WeightedSumOfErrors) { r.gamma = g }
}

func (r *WeightedSumOfErrors) Configure(info scml.SystemInfo) error {
	if len(r.weights) == 0 {
		return fmt.Errorf("reward: no reward weights given")
	}

	total := 0.0
	for _, w := range r.weights {
		total += w
	}

	r.indices = r.indices[:0]
	r.w = r.w[:0]
	r.span = r.span[:0]
	for _, name := range info.StateNames {
		w, ok := r.weights[name]
		if !ok {
			continue
		}
		idx := info.StatePositions[name]
		r.indices = append(r.indices, idx)
		r.w = append(r.w, w/total)
		r.span = append(r.span, info.StateSpace.High[idx]-info.StateSpace.Low[idx])
	}
	if len(r.indices) != len(r.weights) {
		for name := range r.weights {
			if _, ok := info.StatePositions[name]; !ok {
				return fmt.Errorf("%w: reward weight for %q", env.ErrUnknownState, name)
			}
		}
	}

	if !r.hasViolationReward {
		low, _ := r.RewardRange()
		r.violationReward = low / (1 - r.gamma)
	}
	return nil
}

func (r *WeightedSumOfErrors) RewardRange() (float64, float64) {
	return r.bias - 1, r.bias
}

func (r *WeightedSumOfErrors) Reward(state, reference []float64, k int, action scml.Action, violationDegree float64) float64 {
	if violationDegree >= 1 {
		return r.violationReward
	}
	errSum := 0.0
	for n, idx := range r.indices {
		e := math.Abs(state[idx]-reference[idx]) / r.span[n]
		errSum += r.w[n] * math.Pow(e, r.power)
	}
	return r.bias - errSum
}

func (r *WeightedSumOfErrors) Reset() {}

func (r *WeightedSumOfErrors) Close() {}
