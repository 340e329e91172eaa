// Package motor provides the electric motor models of a drive system.
//
// Both motors implement [scml.Motor] with analytic Jacobians. Parameters,
// nominal values and limits default to a permanently excited 48V DC machine
// and can be overridden per instance.
package motor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// PermExDCParams are the equivalent-circuit parameters of a permanently
// excited DC motor.
type PermExDCParams struct {
	Ra     float64 // armature resistance [Ohm]
	La     float64 // armature inductance [H]
	PsiE   float64 // flux of the permanent magnet [Wb]
	JRotor float64 // rotor moment of inertia [kg m^2]
}

// DefaultPermExDCParams returns the default machine constants.
func DefaultPermExDCParams() PermExDCParams {
	return PermExDCParams{Ra: 16e-3, La: 19e-6, PsiE: 0.165, JRotor: 0.025}
}

// PermExDC is a permanently excited DC motor with one electrical state, the
// armature current i. Observation vector: [torque, i, u].
type PermExDC struct {
	rng.Component

	params  PermExDCParams
	limits  []float64 // aligned with the observation vector
	nominal []float64

	// initBand widens the initial armature current to a uniform draw in
	// +-initBand*iNominal; zero means a cold start at i=0.
	initBand float64

	uIn [1]float64
	obs [3]float64
}

// NewPermExDC builds the motor with default parameters. Use the options to
// deviate from them.
func NewPermExDC(opts ...PermExDCOption) *PermExDC {
	m := &PermExDC{
		params:  DefaultPermExDCParams(),
		limits:  []float64{38.0, 210, 60},
		nominal: []float64{16.0, 97, 60},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type PermExDCOption func(*PermExDC)

func WithPermExDCParams(p PermExDCParams) PermExDCOption {
	return func(m *PermExDC) { m.params = p }
}

// WithInitialCurrentBand randomizes the initial armature current uniformly
// in +-band times the nominal current, drawn from the motor's seed stream.
func WithInitialCurrentBand(band float64) PermExDCOption {
	return func(m *PermExDC) { m.initBand = band }
}

func (m *PermExDC) Params() PermExDCParams { return m.params }

func (m *PermExDC) ObservationNames() []string { return []string{"torque", "i", "u"} }

func (m *PermExDC) ObservationSpace() scml.Box { return scml.UnitBox(3) }

func (m *PermExDC) Limits() []float64 { return m.limits }

func (m *PermExDC) NominalState() []float64 { return m.nominal }

func (m *PermExDC) ODESize() int { return 1 }

func (m *PermExDC) InputShape() int { return 1 }

func (m *PermExDC) TorqueShape() int { return 1 }

func (m *PermExDC) HasJacobian() bool { return true }

func (m *PermExDC) RotorInertia() float64 { return m.params.JRotor }

func (m *PermExDC) Reset() scml.State {
	m.NextGenerator()
	m.uIn[0] = 0
	i0 := 0.0
	if m.initBand > 0 {
		iNominal := m.nominal[1]
		i0 = (2*m.Rand().Float64() - 1) * m.initBand * iNominal
	}
	return scml.State{i0}
}

func (m *PermExDC) Torque(state scml.State) float64 {
	return m.params.PsiE * state[0]
}

func (m *PermExDC) InputCurrent(t float64, state scml.State) []float64 {
	return state
}

func (m *PermExDC) ElectricalODE(state scml.State, uIn []float64, omega float64) scml.State {
	m.uIn[0] = uIn[0]
	p := m.params
	di := (uIn[0] - p.PsiE*omega - p.Ra*state[0]) / p.La
	return scml.State{di}
}

func (m *PermExDC) ElectricalJacobian(state scml.State, uIn []float64, omega float64) (*mat.Dense, []float64, []float64) {
	p := m.params
	jac := mat.NewDense(1, 1, []float64{-p.Ra / p.La})
	dOmega := []float64{-p.PsiE / p.La}
	dTorque := []float64{p.PsiE}
	return jac, dOmega, dTorque
}

func (m *PermExDC) Observation(state scml.State) []float64 {
	m.obs[0] = m.Torque(state)
	m.obs[1] = state[0]
	m.obs[2] = m.uIn[0]
	return m.obs[:]
}
