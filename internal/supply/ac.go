package supply

import (
	"math"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// AC is a single-phase sinusoidal source. Each episode starts at a random
// point of the mains period, drawn from the supply's seed stream.
type AC struct {
	rng.Component

	amplitude float64
	frequency float64
	phase     float64

	obs [1]float64
}

// NewAC builds a sinusoidal supply; amplitude <= 0 selects 230*sqrt(2),
// frequency <= 0 selects 50 Hz.
func NewAC(amplitude, frequency float64) *AC {
	if amplitude <= 0 {
		amplitude = 230 * math.Sqrt2
	}
	if frequency <= 0 {
		frequency = 50
	}
	return &AC{amplitude: amplitude, frequency: frequency}
}

func (s *AC) ObservationNames() []string { return []string{"u_sup"} }

func (s *AC) ObservationSpace() scml.Box { return scml.Box{Low: []float64{-1}, High: []float64{1}} }

func (s *AC) Limits() []float64 { return []float64{s.amplitude} }

func (s *AC) NominalState() []float64 { return []float64{s.amplitude} }

func (s *AC) SupplyShape() int { return 1 }

func (s *AC) Reset() {
	s.NextGenerator()
	s.phase = 2 * math.Pi * s.Rand().Float64()
	s.obs[0] = s.amplitude * math.Sin(s.phase)
}

func (s *AC) Voltage(t float64, iSup []float64) []float64 {
	s.obs[0] = s.amplitude * math.Sin(2*math.Pi*s.frequency*t+s.phase)
	return s.obs[:]
}

func (s *AC) Observation() []float64 { return s.obs[:] }
