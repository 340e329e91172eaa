// Package converter provides the power electronic converters between the
// supply and the motor terminals.
//
// Finite converters expose a discrete switch position and report extra
// switching times inside a cycle when an interlocking pattern applies.
// Continuous converters are dynamically averaged over one cycle and only
// switch at the cycle boundary.
package converter

import (
	"github.com/drivesim/drivesim/internal/scml"
)

// switching carries the timing fields every converter shares.
type switching struct {
	tau         float64
	interlock   float64
	actionStart float64
}

func newSwitching(tau, interlock float64) switching {
	if tau <= 0 {
		tau = scml.DefaultTau
	}
	return switching{tau: tau, interlock: interlock}
}

func (s *switching) Tau() float64 { return s.tau }

// noObservation is embedded by converters, which contribute nothing to the
// drive observation vector.
type noObservation struct{}

func (noObservation) ObservationNames() []string { return nil }

func (noObservation) ObservationSpace() scml.Box { return scml.UnitBox(0) }

func (noObservation) Limits() []float64 { return nil }

func (noObservation) NominalState() []float64 { return nil }

func (noObservation) Observation() []float64 { return nil }

// Option configures timing on any converter of this package.
type Option func(*switching)

// WithTau overrides the cycle time.
func WithTau(tau float64) Option {
	return func(s *switching) { s.tau = tau }
}

// WithInterlockingTime sets the transistor interlocking time.
func WithInterlockingTime(d float64) Option {
	return func(s *switching) { s.interlock = d }
}

func buildSwitching(opts []Option) switching {
	s := newSwitching(0, 0)
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
