package scml

import "gonum.org/v1/gonum/mat"

// Component is the observation surface every SCML role exposes for the
// system-level concatenation. Limits and nominal values are aligned
// one-to-one with the role's observation vector.
type Component interface {
	ObservationNames() []string
	ObservationSpace() Box
	Limits() []float64
	NominalState() []float64
}

// Supply produces the supply voltage for a given current draw. It is
// stateless per step unless the concrete variant models internal dynamics
// (e.g. an RC element).
type Supply interface {
	Component
	Reset()
	// Voltage returns the supplied voltage at time t for the current iSup
	// drawn by the converter.
	Voltage(t float64, iSup []float64) []float64
	// SupplyShape is the number of current components the supply accepts;
	// it must match the converter's supply-side shape.
	SupplyShape() int
	Observation() []float64
}

// Converter maps a control action onto one or more output-voltage segments
// over a control interval.
type Converter interface {
	Component
	Reset()
	// SetAction fixes the switching pattern for the control cycle starting
	// at t and returns the switching times strictly inside the interval, in
	// increasing order. The interval end is appended by the system.
	SetAction(action Action, t float64) ([]float64, error)
	// Convert turns the supply voltage into the motor input voltage for the
	// currently active switching state.
	Convert(t float64, iOut, uSup []float64) []float64
	// SupplyCurrent maps the motor-side output currents onto the current
	// drawn from the supply.
	SupplyCurrent(iOut []float64) []float64
	SupplyShape() int
	OutputShape() int
	ActionSpace() ActionSpace
	Observation() []float64
}

// Motor owns the electrical ODE state and the torque output.
type Motor interface {
	Component
	// Reset returns the motor's initial electrical state segment for a new
	// episode.
	Reset() State
	// ElectricalODE evaluates the electrical state derivative for the given
	// input voltage and mechanical angular speed.
	ElectricalODE(state State, uIn []float64, omega float64) State
	Torque(state State) float64
	// InputCurrent returns the currents the motor draws from the converter.
	InputCurrent(t float64, state State) []float64
	ODESize() int
	InputShape() int
	TorqueShape() int
	// HasJacobian reports analytic-Jacobian support. When true,
	// ElectricalJacobian returns (d ode/d state, d ode/d omega,
	// d torque/d state).
	HasJacobian() bool
	ElectricalJacobian(state State, uIn []float64, omega float64) (*mat.Dense, []float64, []float64)
	Observation(state State) []float64
}

// Load owns the mechanical ODE state driven by the motor torque. By
// convention the angular speed omega is the first entry of the load state
// segment.
type Load interface {
	Component
	// Reset returns the load's initial mechanical state segment for a new
	// episode.
	Reset() State
	MechanicalODE(t float64, state State, torque float64) State
	Omega(state State) float64
	ODESize() int
	SpeedShape() int
	// SetRotorInertia folds the motor's rotor inertia into the total
	// inertia seen by the mechanical ODE. Called once at construction.
	SetRotorInertia(j float64)
	// HasJacobian reports analytic-Jacobian support. When true,
	// MechanicalJacobian returns (d ode/d state, d ode/d torque).
	HasJacobian() bool
	MechanicalJacobian(t float64, state State, torque float64) (*mat.Dense, []float64)
	Observation(state State) []float64
}

// Solver integrates the combined state vector forward.
type Solver interface {
	// SetSystemEquation installs the right-hand-side and an optional
	// analytic Jacobian. jac is nil when Jacobian-based solving is
	// unavailable or not requested.
	SetSystemEquation(rhs SystemFunc, jac JacobianFunc)
	SetInitialValue(y State, t float64)
	// Integrate advances the state from the current time to t and returns
	// the new state. The returned slice is owned by the solver.
	Integrate(t float64) State
	State() State
	Time() float64
}

// RotorInertia is implemented by motors whose rotor adds inertia to the
// mechanical system.
type RotorInertia interface {
	RotorInertia() float64
}
