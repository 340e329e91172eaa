// Package monitor provides constraint monitoring over normalized
// observations. A monitor merges the violation degrees of its constraints
// into one continuous value: 0 fully within limits, >= 1 violated.
package monitor

import (
	"fmt"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/scml"
)

// Constraint maps a normalized state to a violation degree.
type Constraint interface {
	Configure(info scml.SystemInfo) error
	Violation(state []float64) float64
}

// MergeMode selects how a monitor combines its constraints.
type MergeMode int

const (
	// MergeMax takes the largest violation degree.
	MergeMax MergeMode = iota
	// MergeProduct combines degrees like independent survival
	// probabilities: 1 - prod(1 - min(v, 1)).
	MergeProduct
)

// Monitor merges a set of constraints.
type Monitor struct {
	constraints []Constraint
	merge       MergeMode
}

func New(merge MergeMode, constraints ...Constraint) *Monitor {
	return &Monitor{constraints: constraints, merge: merge}
}

func (m *Monitor) Configure(info scml.SystemInfo) error {
	for _, c := range m.constraints {
		if err := c.Configure(info); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) CheckConstraints(state []float64) float64 {
	if m.merge == MergeProduct {
		survive := 1.0
		for _, c := range m.constraints {
			v := c.Violation(state)
			if v > 1 {
				v = 1
			}
			survive *= 1 - v
		}
		return 1 - survive
	}

	degree := 0.0
	for _, c := range m.constraints {
		if v := c.Violation(state); v > degree {
			degree = v
		}
	}
	return degree
}

// resolve maps state names to indices; an empty name list selects every
// state.
func resolve(names []string, info scml.SystemInfo) ([]int, error) {
	if len(names) == 0 {
		indices := make([]int, len(info.StateNames))
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	indices := make([]int, 0, len(names))
	for _, name := range names {
		idx, ok := info.StatePositions[name]
		if !ok {
			return nil, fmt.Errorf("%w: constraint on %q", env.ErrUnknownState, name)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}
