package scml

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// State is a flat ODE state vector. The combined system state is the load
// segment followed by the motor segment; segment sizes are fixed at
// construction.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Action is the converter input for one control cycle. Finite control set
// converters read Switch, dynamically averaged ones read Duty.
type Action struct {
	Switch int
	Duty   []float64
}

// SwitchAction builds a finite control set action.
func SwitchAction(s int) Action { return Action{Switch: s} }

// DutyAction builds a continuous control set action.
func DutyAction(d ...float64) Action { return Action{Duty: d} }

// SystemFunc is the combined ODE right-hand-side f(t, y).
type SystemFunc func(t float64, y State) State

// JacobianFunc returns df/dy at (t, y) for implicit solvers.
type JacobianFunc func(t float64, y State) *mat.Dense
