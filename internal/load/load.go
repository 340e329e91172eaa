// Package load provides the mechanical loads coupled to the motor shaft.
//
// The angular velocity omega is the first entry of every load's state
// segment, which places it at index zero of the combined drive state.
package load

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// PolynomialParams describe a static friction torque
// sign(omega) * (A + B*|omega| + C*omega^2) and the load-side inertia.
type PolynomialParams struct {
	A     float64 // constant friction torque [Nm]
	B     float64 // viscous friction coefficient [Nm s]
	C     float64 // quadratic friction coefficient [Nm s^2]
	JLoad float64 // load moment of inertia [kg m^2]
}

// DefaultPolynomialParams returns a light fan-style load.
func DefaultPolynomialParams() PolynomialParams {
	return PolynomialParams{A: 0.01, B: 0.05, C: 0.1, JLoad: 0.1}
}

// Polynomial is a static polynomial friction load. Its single mechanical
// state is the angular velocity omega.
type Polynomial struct {
	rng.Component

	params PolynomialParams
	jTotal float64

	omegaLimit   float64
	omegaNominal float64

	// initBand widens the initial speed to a uniform draw in
	// +-initBand*omegaNominal; zero means starting at standstill.
	initBand float64

	obs [1]float64
}

func NewPolynomial(opts ...PolynomialOption) *Polynomial {
	l := &Polynomial{
		params:       DefaultPolynomialParams(),
		omegaLimit:   400,
		omegaNominal: 300,
	}
	l.jTotal = l.params.JLoad
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type PolynomialOption func(*Polynomial)

func WithPolynomialParams(p PolynomialParams) PolynomialOption {
	return func(l *Polynomial) {
		l.params = p
		l.jTotal = p.JLoad
	}
}

func WithOmegaLimit(limit, nominal float64) PolynomialOption {
	return func(l *Polynomial) {
		l.omegaLimit = limit
		l.omegaNominal = nominal
	}
}

// WithInitialSpeedBand randomizes the initial speed uniformly in
// +-band times the nominal speed.
func WithInitialSpeedBand(band float64) PolynomialOption {
	return func(l *Polynomial) { l.initBand = band }
}

func (l *Polynomial) ObservationNames() []string { return []string{"omega"} }

func (l *Polynomial) ObservationSpace() scml.Box { return scml.UnitBox(1) }

func (l *Polynomial) Limits() []float64 { return []float64{l.omegaLimit} }

func (l *Polynomial) NominalState() []float64 { return []float64{l.omegaNominal} }

func (l *Polynomial) ODESize() int { return 1 }

func (l *Polynomial) SpeedShape() int { return 1 }

func (l *Polynomial) HasJacobian() bool { return true }

// SetRotorInertia folds the rotor inertia of the attached motor into the
// total inertia on the shaft.
func (l *Polynomial) SetRotorInertia(j float64) {
	l.jTotal = l.params.JLoad + j
}

func (l *Polynomial) Reset() scml.State {
	l.NextGenerator()
	omega0 := 0.0
	if l.initBand > 0 {
		omega0 = (2*l.Rand().Float64() - 1) * l.initBand * l.omegaNominal
	}
	return scml.State{omega0}
}

func (l *Polynomial) Omega(state scml.State) float64 { return state[0] }

// frictionTorque is the static load torque opposing the motion.
func (l *Polynomial) frictionTorque(omega float64) float64 {
	p := l.params
	return sign(omega) * (p.A + p.B*math.Abs(omega) + p.C*omega*omega)
}

func (l *Polynomial) MechanicalODE(t float64, state scml.State, torque float64) scml.State {
	omega := state[0]
	return scml.State{(torque - l.frictionTorque(omega)) / l.jTotal}
}

func (l *Polynomial) MechanicalJacobian(t float64, state scml.State, torque float64) (*mat.Dense, []float64) {
	p := l.params
	omega := state[0]
	dFriction := p.B + 2*p.C*math.Abs(omega)
	jac := mat.NewDense(1, 1, []float64{-dFriction / l.jTotal})
	dTorque := []float64{1 / l.jTotal}
	return jac, dTorque
}

func (l *Polynomial) Observation(state scml.State) []float64 {
	l.obs[0] = state[0]
	return l.obs[:]
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
