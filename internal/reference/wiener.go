package reference

import (
	"math"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// Wiener generates a clipped random-walk setpoint trajectory. Each cycle
// the setpoint moves by a normally distributed increment scaled with the
// square root of the control interval.
type Wiener struct {
	rng.Component
	single

	sigma float64
	tau   float64
}

// NewWiener targets the named state with the given process intensity;
// sigma <= 0 selects a walk that wanders across the normalized range within
// a few thousand cycles at the default control interval.
func NewWiener(stateName string, sigma float64) *Wiener {
	if sigma <= 0 {
		sigma = 1
	}
	w := &Wiener{sigma: sigma}
	w.name = stateName
	return w
}

func (w *Wiener) Configure(info scml.SystemInfo) error {
	w.tau = info.Tau
	return w.single.Configure(info)
}

func (w *Wiener) Reset(initialState []float64) []float64 {
	w.NextGenerator()
	// Start somewhere in the admissible range rather than at the state's
	// current value, so the agent has to close a gap from cycle one.
	w.value = w.low + w.Rand().Float64()*(w.high-w.low)
	return w.observe()
}

func (w *Wiener) ReferenceObservation(state []float64) []float64 {
	w.value = w.clip(w.value + w.sigma*math.Sqrt(w.tau)*w.Rand().NormFloat64())
	return w.observe()
}
