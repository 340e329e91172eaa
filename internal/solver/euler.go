package solver

import "github.com/drivesim/drivesim/internal/scml"

// Euler integrates with the explicit Euler scheme, optionally subdividing
// each Integrate call into nsteps sub-steps for accuracy.
type Euler struct {
	base
	nsteps int
}

// NewEuler returns an explicit Euler solver with nsteps sub-steps per
// integration interval. nsteps < 1 is treated as 1.
func NewEuler(nsteps int) *Euler {
	if nsteps < 1 {
		nsteps = 1
	}
	return &Euler{nsteps: nsteps}
}

func (e *Euler) Integrate(t float64) scml.State {
	h := (t - e.t) / float64(e.nsteps)
	for i := 0; i < e.nsteps; i++ {
		dy := e.rhs(e.t, e.y)
		for j := range e.y {
			e.y[j] += h * dy[j]
		}
		e.t += h
	}
	e.t = t
	return e.y
}
