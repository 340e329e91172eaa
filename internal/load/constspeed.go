package load

import (
	"gonum.org/v1/gonum/mat"

	"github.com/drivesim/drivesim/internal/scml"
)

// ConstSpeed drives the shaft at a fixed angular velocity regardless of the
// motor torque. It still occupies one slot of the combined state so that
// omega stays observable at the usual position; its derivative is zero.
type ConstSpeed struct {
	omega        float64
	omegaLimit   float64
	omegaNominal float64

	obs [1]float64
}

func NewConstSpeed(omega float64) *ConstSpeed {
	return &ConstSpeed{omega: omega, omegaLimit: 400, omegaNominal: 300}
}

func (l *ConstSpeed) ObservationNames() []string { return []string{"omega"} }

func (l *ConstSpeed) ObservationSpace() scml.Box { return scml.UnitBox(1) }

func (l *ConstSpeed) Limits() []float64 { return []float64{l.omegaLimit} }

func (l *ConstSpeed) NominalState() []float64 { return []float64{l.omegaNominal} }

func (l *ConstSpeed) ODESize() int { return 1 }

func (l *ConstSpeed) SpeedShape() int { return 1 }

// HasJacobian is false: the state is clamped, so there is nothing to
// linearize and jacobian-based solving degrades to jacobian-free mode.
func (l *ConstSpeed) HasJacobian() bool { return false }

func (l *ConstSpeed) SetRotorInertia(j float64) {}

func (l *ConstSpeed) Reset() scml.State { return scml.State{l.omega} }

func (l *ConstSpeed) Omega(state scml.State) float64 { return l.omega }

func (l *ConstSpeed) MechanicalODE(t float64, state scml.State, torque float64) scml.State {
	return scml.State{0}
}

func (l *ConstSpeed) MechanicalJacobian(t float64, state scml.State, torque float64) (*mat.Dense, []float64) {
	return mat.NewDense(1, 1, nil), []float64{0}
}

func (l *ConstSpeed) Observation(state scml.State) []float64 {
	l.obs[0] = l.omega
	return l.obs[:]
}
