package scml

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/drivesim/drivesim/internal/rng"
)

// DefaultTau is the control interval used when the config leaves it unset.
const DefaultTau = 1e-4

// Config assembles the components of a drive system.
type Config struct {
	Supply    Supply
	Converter Converter
	Motor     Motor
	Load      Load
	Solver    Solver
	// Tau is the control interval in seconds. Defaults to DefaultTau.
	Tau float64
	// CalcJacobian requests Jacobian-based solving. nil means: use the
	// analytic Jacobian whenever both motor and load provide one.
	CalcJacobian *bool
}

// System composes Supply, Converter, Motor and Load around an ODE solver
// and simulates the drive one control interval per Simulate call.
//
// The combined ODE state is the load segment followed by the motor segment.
// The system exclusively owns and mutates this state between Reset and
// Simulate calls.
type System struct {
	rng.Component

	supply    Supply
	converter Converter
	motor     Motor
	load      Load
	solver    Solver

	tau          float64
	k            int
	kCumulative  int
	t            float64
	tCumulative  float64
	loadSize     int
	motorSize    int
	stateNames   []string
	limits       []float64
	nominal      []float64
	obsSpace     Box
	calcJacobian bool

	// scratch buffers reused across calls
	uIn         []float64
	derivative  State
	jacobian    *mat.Dense
	observation []float64
}

// NewSystem validates the component shapes and wires the combined system
// equation into the solver. Shape violations are fatal: the system cannot
// be built.
func NewSystem(cfg Config) (*System, error) {
	if cfg.Supply.SupplyShape() != cfg.Converter.SupplyShape() {
		return nil, shapeError("supply shape %d != converter supply shape %d",
			cfg.Supply.SupplyShape(), cfg.Converter.SupplyShape())
	}
	if cfg.Converter.OutputShape() != cfg.Motor.InputShape() {
		return nil, shapeError("converter output shape %d != motor input shape %d",
			cfg.Converter.OutputShape(), cfg.Motor.InputShape())
	}
	if cfg.Motor.TorqueShape() != cfg.Load.SpeedShape() {
		return nil, shapeError("motor torque shape %d != load speed shape %d",
			cfg.Motor.TorqueShape(), cfg.Load.SpeedShape())
	}

	tau := cfg.Tau
	if tau <= 0 {
		tau = DefaultTau
	}

	s := &System{
		supply:    cfg.Supply,
		converter: cfg.Converter,
		motor:     cfg.Motor,
		load:      cfg.Load,
		solver:    cfg.Solver,
		tau:       tau,
		loadSize:  cfg.Load.ODESize(),
		motorSize: cfg.Motor.ODESize(),
	}

	if ri, ok := cfg.Motor.(RotorInertia); ok {
		s.load.SetRotorInertia(ri.RotorInertia())
	}

	n := s.loadSize + s.motorSize
	s.uIn = make([]float64, cfg.Motor.InputShape())
	s.derivative = make(State, n)
	s.jacobian = mat.NewDense(n, n, nil)

	for _, c := range []Component{s.load, s.motor, s.converter, s.supply} {
		s.stateNames = append(s.stateNames, c.ObservationNames()...)
		s.limits = append(s.limits, c.Limits()...)
		s.nominal = append(s.nominal, c.NominalState()...)
	}
	s.obsSpace = ConcatBoxes(
		s.load.ObservationSpace(), s.motor.ObservationSpace(),
		s.converter.ObservationSpace(), s.supply.ObservationSpace(),
	)
	s.observation = make([]float64, len(s.stateNames))

	supportsJacobian := s.motor.HasJacobian() && s.load.HasJacobian()
	if cfg.CalcJacobian == nil {
		s.calcJacobian = supportsJacobian
	} else {
		s.calcJacobian = *cfg.CalcJacobian && supportsJacobian
		if *cfg.CalcJacobian && !supportsJacobian {
			logrus.Warn("scml: analytic jacobian requested but motor or load does not provide one, falling back to jacobian-free solving")
		}
	}

	var jac JacobianFunc
	if s.calcJacobian {
		jac = s.systemJacobian
	}
	s.solver.SetSystemEquation(s.systemEquation, jac)

	return s, nil
}

// Simulate advances the drive by one control interval tau and returns the
// limit-normalized observation. The converter may switch several times
// inside the interval; integration proceeds boundary by boundary in
// increasing time order.
func (s *System) Simulate(action Action) ([]float64, error) {
	times, err := s.converter.SetAction(action, s.t)
	if err != nil {
		return nil, err
	}
	times = append(times, s.t+s.tau)

	y := s.solver.State()
	for _, boundary := range times {
		iIn := s.motor.InputCurrent(s.solver.Time(), y[s.loadSize:])
		iSup := s.converter.SupplyCurrent(iIn)
		uSup := s.supply.Voltage(s.t, iSup)
		copy(s.uIn, s.converter.Convert(s.solver.Time(), iIn, uSup))
		y = s.solver.Integrate(boundary)
	}

	s.countStep()
	return s.observe(y), nil
}

// Reset derives a new episode stream, resets all components, re-initializes
// the solver and returns the initial normalized observation.
func (s *System) Reset() []float64 {
	s.NextGenerator()
	s.k = 0
	s.t = 0

	loadInit := s.load.Reset()
	motorInit := s.motor.Reset()
	s.converter.Reset()
	s.supply.Reset()

	y0 := make(State, 0, s.loadSize+s.motorSize)
	y0 = append(y0, loadInit...)
	y0 = append(y0, motorInit...)
	s.solver.SetInitialValue(y0, s.t)

	return s.observe(s.solver.State())
}

// Seed distributes one child entropy stream per stochastic component:
// supply, converter, motor, load and solver, in that order.
func (s *System) Seed(tree *rng.Tree) {
	s.Component.Seed(tree)
	children := tree.Spawn(5)
	for i, c := range []any{s.supply, s.converter, s.motor, s.load, s.solver} {
		if sd, ok := c.(rng.Seedable); ok {
			sd.Seed(children[i])
		}
	}
}

// Close releases the system's components. Present for lifecycle symmetry
// with the environment; the composed components hold no external resources.
func (s *System) Close() {}

func (s *System) countStep() {
	s.k++
	s.kCumulative++
	s.t += s.tau
	s.tCumulative += s.tau
}

// systemEquation is the combined ODE right-hand-side: the load's mechanical
// derivative followed by the motor's electrical derivative, in state order.
func (s *System) systemEquation(t float64, y State) State {
	loadState := y[:s.loadSize]
	motorState := y[s.loadSize:]
	omega := s.load.Omega(loadState)
	copy(s.derivative[s.loadSize:], s.motor.ElectricalODE(motorState, s.uIn, omega))
	torque := s.motor.Torque(motorState)
	copy(s.derivative[:s.loadSize], s.load.MechanicalODE(t, loadState, torque))
	return s.derivative
}

// systemJacobian assembles the block Jacobian of the combined right-hand-
// side. The load block and motor block sit on the diagonal; the motor rows
// get the d(ode)/d(omega) column at the load's speed index, and the load
// rows get the chain-rule coupling through the torque:
// d(load ode)/d(motor state) = d(load ode)/d(torque) * d(torque)/d(motor state).
func (s *System) systemJacobian(t float64, y State) *mat.Dense {
	loadState := y[:s.loadSize]
	motorState := y[s.loadSize:]
	omega := s.load.Omega(loadState)
	torque := s.motor.Torque(motorState)

	motorJac, dOmega, dTorque := s.motor.ElectricalJacobian(motorState, s.uIn, omega)
	loadJac, dLoadDTorque := s.load.MechanicalJacobian(t, loadState, torque)

	jac := s.jacobian
	jac.Zero()
	jac.Slice(0, s.loadSize, 0, s.loadSize).(*mat.Dense).Copy(loadJac)
	jac.Slice(s.loadSize, s.loadSize+s.motorSize, s.loadSize, s.loadSize+s.motorSize).(*mat.Dense).Copy(motorJac)
	// omega is the first load state by convention
	for i := 0; i < s.motorSize; i++ {
		jac.Set(s.loadSize+i, 0, dOmega[i])
	}
	for i := 0; i < s.loadSize; i++ {
		for j := 0; j < s.motorSize; j++ {
			jac.Set(i, s.loadSize+j, dLoadDTorque[i]*dTorque[j])
		}
	}
	return jac
}

// observe collects the per-component observations in the fixed load, motor,
// converter, supply order and normalizes them by the limits vector.
func (s *System) observe(y State) []float64 {
	loadState := y[:s.loadSize]
	motorState := y[s.loadSize:]

	i := 0
	for _, part := range [][]float64{
		s.load.Observation(loadState),
		s.motor.Observation(motorState),
		s.converter.Observation(),
		s.supply.Observation(),
	} {
		i += copy(s.observation[i:], part)
	}

	normalized := make([]float64, len(s.observation))
	for i, raw := range s.observation {
		normalized[i] = raw / s.limits[i]
	}
	return normalized
}

// K returns the episode step counter.
func (s *System) K() int { return s.k }

// KCumulative returns the step counter across all episodes.
func (s *System) KCumulative() int { return s.kCumulative }

// T returns the episode time in seconds.
func (s *System) T() float64 { return s.t }

// Tau returns the control interval.
func (s *System) Tau() float64 { return s.tau }

// UsesJacobian reports whether the solver was handed the analytic Jacobian.
func (s *System) UsesJacobian() bool { return s.calcJacobian }

// ActionSpace returns the composed system's action space, declared by the
// converter.
func (s *System) ActionSpace() ActionSpace { return s.converter.ActionSpace() }

// Info returns the read-only description the orchestration collaborators
// receive instead of a back-reference to the system.
func (s *System) Info() SystemInfo {
	positions := make(map[string]int, len(s.stateNames))
	for i, name := range s.stateNames {
		positions[name] = i
	}
	return SystemInfo{
		Tau:            s.tau,
		StateNames:     append([]string(nil), s.stateNames...),
		StatePositions: positions,
		Limits:         append([]float64(nil), s.limits...),
		NominalState:   append([]float64(nil), s.nominal...),
		StateSpace:     s.obsSpace,
		ActionSpace:    s.converter.ActionSpace(),
	}
}

// SystemInfo is the descriptive metadata of a composed drive system:
// everything a reference generator, reward function or constraint monitor
// needs, without granting access to the system itself.
type SystemInfo struct {
	Tau            float64
	StateNames     []string
	StatePositions map[string]int
	Limits         []float64
	NominalState   []float64
	StateSpace     Box
	ActionSpace    ActionSpace
}
