package motor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// ExtExDCParams are the equivalent-circuit parameters of an externally
// excited DC motor.
type ExtExDCParams struct {
	Ra      float64 // armature resistance [Ohm]
	La      float64 // armature inductance [H]
	Re      float64 // excitation resistance [Ohm]
	Le      float64 // excitation inductance [H]
	LePrime float64 // effective excitation inductance [H]
	JRotor  float64 // rotor moment of inertia [kg m^2]
}

// DefaultExtExDCParams returns the default machine constants.
func DefaultExtExDCParams() ExtExDCParams {
	return ExtExDCParams{
		Ra:      16e-3,
		La:      19e-6,
		Re:      16e-2,
		Le:      5.4e-3,
		LePrime: 1.7e-3,
		JRotor:  0.025,
	}
}

// ExtExDC is an externally excited DC motor with two electrical states, the
// armature current i_a and the excitation current i_e. It draws two input
// voltages, so it pairs with a converter of output shape two.
// Observation vector: [torque, i_a, i_e, u_a, u_e].
type ExtExDC struct {
	rng.Component

	params  ExtExDCParams
	limits  []float64
	nominal []float64

	initBand float64

	uIn [2]float64
	obs [5]float64
}

func NewExtExDC(opts ...ExtExDCOption) *ExtExDC {
	m := &ExtExDC{
		params:  DefaultExtExDCParams(),
		limits:  []float64{38.0, 210, 210, 60, 60},
		nominal: []float64{16.0, 97, 97, 60, 60},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type ExtExDCOption func(*ExtExDC)

func WithExtExDCParams(p ExtExDCParams) ExtExDCOption {
	return func(m *ExtExDC) { m.params = p }
}

// WithExtExInitialCurrentBand randomizes both initial currents uniformly in
// +-band times the respective nominal current.
func WithExtExInitialCurrentBand(band float64) ExtExDCOption {
	return func(m *ExtExDC) { m.initBand = band }
}

func (m *ExtExDC) Params() ExtExDCParams { return m.params }

func (m *ExtExDC) ObservationNames() []string {
	return []string{"torque", "i_a", "i_e", "u_a", "u_e"}
}

func (m *ExtExDC) ObservationSpace() scml.Box { return scml.UnitBox(5) }

func (m *ExtExDC) Limits() []float64 { return m.limits }

func (m *ExtExDC) NominalState() []float64 { return m.nominal }

func (m *ExtExDC) ODESize() int { return 2 }

func (m *ExtExDC) InputShape() int { return 2 }

func (m *ExtExDC) TorqueShape() int { return 1 }

func (m *ExtExDC) HasJacobian() bool { return true }

func (m *ExtExDC) RotorInertia() float64 { return m.params.JRotor }

func (m *ExtExDC) Reset() scml.State {
	m.NextGenerator()
	m.uIn[0], m.uIn[1] = 0, 0
	state := scml.State{0, 0}
	if m.initBand > 0 {
		state[0] = (2*m.Rand().Float64() - 1) * m.initBand * m.nominal[1]
		state[1] = (2*m.Rand().Float64() - 1) * m.initBand * m.nominal[2]
	}
	return state
}

func (m *ExtExDC) Torque(state scml.State) float64 {
	return m.params.LePrime * state[0] * state[1]
}

func (m *ExtExDC) InputCurrent(t float64, state scml.State) []float64 {
	return state
}

func (m *ExtExDC) ElectricalODE(state scml.State, uIn []float64, omega float64) scml.State {
	copy(m.uIn[:], uIn)
	p := m.params
	ia, ie := state[0], state[1]
	dia := (uIn[0] - p.LePrime*ie*omega - p.Ra*ia) / p.La
	die := (uIn[1] - p.Re*ie) / p.Le
	return scml.State{dia, die}
}

func (m *ExtExDC) ElectricalJacobian(state scml.State, uIn []float64, omega float64) (*mat.Dense, []float64, []float64) {
	p := m.params
	ia, ie := state[0], state[1]
	jac := mat.NewDense(2, 2, []float64{
		-p.Ra / p.La, -p.LePrime * omega / p.La,
		0, -p.Re / p.Le,
	})
	dOmega := []float64{-p.LePrime * ie / p.La, 0}
	dTorque := []float64{p.LePrime * ie, p.LePrime * ia}
	return jac, dOmega, dTorque
}

func (m *ExtExDC) Observation(state scml.State) []float64 {
	m.obs[0] = m.Torque(state)
	m.obs[1] = state[0]
	m.obs[2] = state[1]
	m.obs[3] = m.uIn[0]
	m.obs[4] = m.uIn[1]
	return m.obs[:]
}
