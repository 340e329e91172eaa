package solver

import (
	"math"

	"github.com/drivesim/drivesim/internal/scml"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an adaptive Dormand-Prince solver. Inside each Integrate call it
// sub-steps with error control; the caller still sees exactly one state per
// switching boundary.
type RK45 struct {
	base
	tol      float64
	safety   float64
	minScale float64
	maxScale float64
	h        float64
}

func NewRK45(tol float64) *RK45 {
	if tol <= 0 {
		tol = 1e-8
	}
	return &RK45{
		tol:      tol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Integrate(t float64) scml.State {
	if r.h <= 0 {
		r.h = t - r.t
	}
	for r.t < t {
		h := math.Min(r.h, t-r.t)
		yNew, errRatio := r.step(r.t, r.y, h)

		if errRatio > 1 {
			scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			r.h = h * scale
			continue
		}

		r.y = yNew
		r.t += h
		if errRatio > 0 {
			r.h = h * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
		} else {
			r.h = h * r.maxScale
		}
	}
	r.t = t
	return r.y
}

func (r *RK45) step(t float64, x scml.State, dt float64) (scml.State, float64) {
	n := len(x)

	k1 := make(scml.State, n)
	copy(k1, r.rhs(t, x))

	x2 := make(scml.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := make(scml.State, n)
	copy(k2, r.rhs(t+a2*dt, x2))

	x3 := make(scml.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := make(scml.State, n)
	copy(k3, r.rhs(t+a3*dt, x3))

	x4 := make(scml.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := make(scml.State, n)
	copy(k4, r.rhs(t+a4*dt, x4))

	x5 := make(scml.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := make(scml.State, n)
	copy(k5, r.rhs(t+a5*dt, x5))

	x6 := make(scml.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := make(scml.State, n)
	copy(k6, r.rhs(t+dt, x6))

	xNew := make(scml.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := make(scml.State, n)
	copy(k7, r.rhs(t+dt, xNew))

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(dt*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return xNew, errMax / r.tol
}
