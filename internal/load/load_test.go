package load

import (
	"math"
	"testing"

	"github.com/drivesim/drivesim/internal/scml"
)

func TestPolynomialODESigns(t *testing.T) {
	l := NewPolynomial()

	// Positive torque at standstill accelerates forward.
	d := l.MechanicalODE(0, scml.State{0}, 5.0)
	if d[0] <= 0 {
		t.Errorf("domega/dt = %f, want > 0", d[0])
	}

	// Friction opposes forward motion with zero drive torque.
	d = l.MechanicalODE(0, scml.State{100}, 0)
	if d[0] >= 0 {
		t.Errorf("domega/dt = %f, want < 0 under friction", d[0])
	}

	// And opposes reverse motion symmetrically.
	fwd := l.MechanicalODE(0, scml.State{100}, 0)[0]
	rev := l.MechanicalODE(0, scml.State{-100}, 0)[0]
	if math.Abs(fwd+rev) > 1e-12 {
		t.Errorf("friction not symmetric: %f vs %f", fwd, rev)
	}
}

func TestPolynomialRotorInertiaFolded(t *testing.T) {
	l := NewPolynomial()
	before := l.MechanicalODE(0, scml.State{0}, 10.0)[0]
	l.SetRotorInertia(0.1)
	after := l.MechanicalODE(0, scml.State{0}, 10.0)[0]

	// Doubling the inertia halves the acceleration.
	if math.Abs(after-before/2) > 1e-9 {
		t.Errorf("acceleration %f, want %f", after, before/2)
	}
}

func TestPolynomialJacobianMatchesODE(t *testing.T) {
	l := NewPolynomial()
	l.SetRotorInertia(0.025)
	state := scml.State{120.0}
	torque := 8.0

	jac, dTorque := l.MechanicalJacobian(0, state, torque)

	const eps = 1e-6
	f0 := l.MechanicalODE(0, state, torque)[0]
	f1 := l.MechanicalODE(0, scml.State{state[0] + eps}, torque)[0]
	if got, want := jac.At(0, 0), (f1-f0)/eps; math.Abs(got-want) > math.Abs(want)*1e-4 {
		t.Errorf("d(domega)/domega = %f, want %f", got, want)
	}
	ft := l.MechanicalODE(0, state, torque+eps)[0]
	if got, want := dTorque[0], (ft-f0)/eps; math.Abs(got-want) > math.Abs(want)*1e-4 {
		t.Errorf("d(domega)/dT = %f, want %f", got, want)
	}
}

func TestPolynomialRandomInitWithinBand(t *testing.T) {
	l := NewPolynomial(WithInitialSpeedBand(0.2))
	bound := 0.2 * l.NominalState()[0]
	for k := 0; k < 50; k++ {
		omega0 := l.Reset()[0]
		if math.Abs(omega0) > bound {
			t.Fatalf("initial speed %f outside +-%f", omega0, bound)
		}
	}
}

func TestConstSpeedIgnoresTorque(t *testing.T) {
	l := NewConstSpeed(150)

	if d := l.MechanicalODE(0, scml.State{150}, 100.0)[0]; d != 0 {
		t.Errorf("derivative %f, want 0", d)
	}
	if got := l.Omega(scml.State{999}); got != 150 {
		t.Errorf("omega = %f, want 150", got)
	}
	if got := l.Reset()[0]; got != 150 {
		t.Errorf("reset state %f, want 150", got)
	}
	if l.HasJacobian() {
		t.Error("const speed load must not advertise a jacobian")
	}
}
