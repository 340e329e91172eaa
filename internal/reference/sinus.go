package reference

import (
	"math"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// Sinus generates a sinusoidal setpoint trajectory. Amplitude, offset,
// frequency and phase are drawn once per episode from the configured ranges
// so that episodes do not repeat the same curve.
type Sinus struct {
	rng.Component
	single

	tau      float64
	freqLow  float64
	freqHigh float64

	amplitude float64
	offset    float64
	frequency float64
	phase     float64
	k         int
}

// NewSinus targets the named state with a per-episode random frequency in
// [freqLow, freqHigh] Hz.
func NewSinus(stateName string, freqLow, freqHigh float64) *Sinus {
	if freqLow <= 0 {
		freqLow = 1
	}
	if freqHigh < freqLow {
		freqHigh = freqLow
	}
	s := &Sinus{freqLow: freqLow, freqHigh: freqHigh}
	s.name = stateName
	return s
}

func (s *Sinus) Configure(info scml.SystemInfo) error {
	s.tau = info.Tau
	return s.single.Configure(info)
}

func (s *Sinus) Reset(initialState []float64) []float64 {
	s.NextGenerator()
	r := s.Rand()

	span := s.high - s.low
	s.amplitude = r.Float64() * span / 2
	center := s.low + s.amplitude
	s.offset = center + r.Float64()*(s.high-s.amplitude-center)
	s.frequency = s.freqLow + r.Float64()*(s.freqHigh-s.freqLow)
	s.phase = 2 * math.Pi * r.Float64()
	s.k = 0

	s.value = s.at(0)
	return s.observe()
}

func (s *Sinus) ReferenceObservation(state []float64) []float64 {
	s.k++
	s.value = s.at(s.k)
	return s.observe()
}

func (s *Sinus) at(k int) float64 {
	t := float64(k) * s.tau
	return s.clip(s.offset + s.amplitude*math.Sin(2*math.Pi*s.frequency*t+s.phase))
}
