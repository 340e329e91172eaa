// Package reference provides setpoint trajectory generators for the
// orchestration environment. All generators target a single named state,
// emit normalized setpoints and clip them to the state's normalized range.
package reference

import (
	"fmt"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/scml"
)

// single is the shared core of all one-state generators: the resolved state
// index, the bounds to clip against and the scratch vectors.
type single struct {
	name     string
	index    int
	low      float64
	high     float64
	stateLen int

	value     float64
	reference []float64
	obs       [1]float64
}

func (s *single) Configure(info scml.SystemInfo) error {
	idx, ok := info.StatePositions[s.name]
	if !ok {
		return fmt.Errorf("%w: %q not in %v", env.ErrUnknownState, s.name, info.StateNames)
	}
	s.index = idx
	s.low = info.StateSpace.Low[idx]
	s.high = info.StateSpace.High[idx]
	s.stateLen = len(info.StateNames)
	s.reference = make([]float64, s.stateLen)
	return nil
}

func (s *single) ReferencedStates() []string { return []string{s.name} }

func (s *single) ReferenceSpace() scml.Box {
	return scml.Box{Low: []float64{s.low}, High: []float64{s.high}}
}

func (s *single) Reference(state []float64) []float64 {
	for i := range s.reference {
		s.reference[i] = 0
	}
	s.reference[s.index] = s.value
	return s.reference
}

func (s *single) observe() []float64 {
	s.obs[0] = s.value
	return s.obs[:]
}

func (s *single) clip(v float64) float64 {
	if v < s.low {
		return s.low
	}
	if v > s.high {
		return s.high
	}
	return v
}
