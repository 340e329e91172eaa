package solver

import "github.com/drivesim/drivesim/internal/scml"

// RK4 integrates with the classic fourth-order Runge-Kutta scheme,
// subdividing each Integrate call into nsteps sub-steps.
type RK4 struct {
	base
	nsteps                 int
	k1, k2, k3, k4, scratch scml.State
}

func NewRK4(nsteps int) *RK4 {
	if nsteps < 1 {
		nsteps = 1
	}
	return &RK4{nsteps: nsteps}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(scml.State, n)
		r.k2 = make(scml.State, n)
		r.k3 = make(scml.State, n)
		r.k4 = make(scml.State, n)
		r.scratch = make(scml.State, n)
	}
}

func (r *RK4) Integrate(t float64) scml.State {
	n := len(r.y)
	r.ensureScratch(n)

	h := (t - r.t) / float64(r.nsteps)
	for s := 0; s < r.nsteps; s++ {
		copy(r.k1, r.rhs(r.t, r.y))

		for i := 0; i < n; i++ {
			r.scratch[i] = r.y[i] + h*0.5*r.k1[i]
		}
		copy(r.k2, r.rhs(r.t+h*0.5, r.scratch))

		for i := 0; i < n; i++ {
			r.scratch[i] = r.y[i] + h*0.5*r.k2[i]
		}
		copy(r.k3, r.rhs(r.t+h*0.5, r.scratch))

		for i := 0; i < n; i++ {
			r.scratch[i] = r.y[i] + h*r.k3[i]
		}
		copy(r.k4, r.rhs(r.t+h, r.scratch))

		h6 := h / 6.0
		for i := 0; i < n; i++ {
			r.y[i] += h6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
		}
		r.t += h
	}
	r.t = t
	return r.y
}
