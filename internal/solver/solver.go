// Package solver provides ODE solvers for the combined drive system state.
//
// All solvers implement [scml.Solver]. The explicit solvers ignore the
// analytic Jacobian; [ImplicitEuler] consumes it through a damped Newton
// iteration and falls back to a finite-difference Jacobian when none is
// installed.
package solver

import "github.com/drivesim/drivesim/internal/scml"

// base carries the state every solver shares: the current (y, t) pair and
// the installed system equation.
type base struct {
	y   scml.State
	t   float64
	rhs scml.SystemFunc
	jac scml.JacobianFunc
}

func (b *base) SetSystemEquation(rhs scml.SystemFunc, jac scml.JacobianFunc) {
	b.rhs = rhs
	b.jac = jac
}

func (b *base) SetInitialValue(y scml.State, t float64) {
	b.y = y.Clone()
	b.t = t
}

func (b *base) State() scml.State { return b.y }

func (b *base) Time() float64 { return b.t }
