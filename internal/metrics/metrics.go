// Package metrics accumulates per-episode summary statistics over the
// observed trajectory.
package metrics

import (
	"math"

	"github.com/drivesim/drivesim/internal/scml"
)

// Observer consumes one cycle of an episode and condenses it into a
// single number. Reset starts a fresh episode.
type Observer interface {
	Name() string
	Observe(state, reference []float64, action scml.Action)
	Value() float64
	Reset()
}

// TrackingError accumulates the root mean square distance between one
// state and its compact setpoint, in normalized units.
type TrackingError struct {
	index   int
	sumSq   float64
	samples int
}

func NewTrackingError(index int) *TrackingError {
	return &TrackingError{index: index}
}

func (m *TrackingError) Name() string { return "tracking_error" }

func (m *TrackingError) Observe(state, reference []float64, action scml.Action) {
	if m.index >= len(state) || len(reference) == 0 {
		return
	}
	diff := state[m.index] - reference[0]
	m.sumSq += diff * diff
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// ControlEffort measures how hard the converter is driven: the mean
// absolute duty cycle for dynamically averaged converters and the fraction
// of non-idle switch positions for finite control set ones.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (m *ControlEffort) Name() string { return "control_effort" }

func (m *ControlEffort) Observe(state, reference []float64, action scml.Action) {
	if len(action.Duty) > 0 {
		effort := 0.0
		for _, d := range action.Duty {
			effort += math.Abs(d)
		}
		m.sum += effort / float64(len(action.Duty))
	} else if action.Switch != 0 {
		m.sum++
	}
	m.samples++
}

func (m *ControlEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.samples = 0
}

// Peak records the largest normalized state magnitude seen during the
// episode. Values near 1 mean the drive grazed a limit.
type Peak struct {
	max float64
}

func NewPeak() *Peak { return &Peak{} }

func (m *Peak) Name() string { return "peak" }

func (m *Peak) Observe(state, reference []float64, action scml.Action) {
	for _, v := range state {
		if math.Abs(v) > m.max {
			m.max = math.Abs(v)
		}
	}
}

func (m *Peak) Value() float64 { return m.max }

func (m *Peak) Reset() { m.max = 0 }
