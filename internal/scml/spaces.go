package scml

import "math/rand/v2"

// Box is a continuous observation or action region with per-dimension
// bounds.
type Box struct {
	Low  []float64
	High []float64
}

// UnitBox returns the signed normalized box [-1, 1]^n.
func UnitBox(n int) Box {
	b := Box{Low: make([]float64, n), High: make([]float64, n)}
	for i := range b.Low {
		b.Low[i] = -1
		b.High[i] = 1
	}
	return b
}

// PositiveUnitBox returns the unsigned normalized box [0, 1]^n.
func PositiveUnitBox(n int) Box {
	b := UnitBox(n)
	for i := range b.Low {
		b.Low[i] = 0
	}
	return b
}

func (b Box) Dim() int { return len(b.Low) }

func (b Box) Contains(v []float64) bool {
	if len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// ConcatBoxes joins boxes in order, the way the system observation joins the
// per-component observations.
func ConcatBoxes(boxes ...Box) Box {
	var out Box
	for _, b := range boxes {
		out.Low = append(out.Low, b.Low...)
		out.High = append(out.High, b.High...)
	}
	return out
}

// ActionSpace describes a converter's control input. N > 0 declares a finite
// control set with N switch states; otherwise Low/High bound the duty-cycle
// box.
type ActionSpace struct {
	N    int
	Low  []float64
	High []float64
}

// DiscreteSpace declares a finite control set of n switch states.
func DiscreteSpace(n int) ActionSpace { return ActionSpace{N: n} }

// BoxSpace declares a continuous duty-cycle set.
func BoxSpace(low, high []float64) ActionSpace { return ActionSpace{Low: low, High: high} }

func (s ActionSpace) Discrete() bool { return s.N > 0 }

func (s ActionSpace) Contains(a Action) bool {
	if s.Discrete() {
		return a.Switch >= 0 && a.Switch < s.N && len(a.Duty) == 0
	}
	if len(a.Duty) != len(s.Low) {
		return false
	}
	for i, d := range a.Duty {
		if d < s.Low[i] || d > s.High[i] {
			return false
		}
	}
	return true
}

// Sample draws a uniform action, used by the random-policy episode runner.
func (s ActionSpace) Sample(r *rand.Rand) Action {
	if s.Discrete() {
		return SwitchAction(r.IntN(s.N))
	}
	duty := make([]float64, len(s.Low))
	for i := range duty {
		duty[i] = s.Low[i] + r.Float64()*(s.High[i]-s.Low[i])
	}
	return DutyAction(duty...)
}

// Clamp projects a continuous action into the space, mirroring how averaged
// converters treat out-of-range duty cycles.
func (s ActionSpace) Clamp(a Action) Action {
	if s.Discrete() || len(a.Duty) != len(s.Low) {
		return a
	}
	duty := make([]float64, len(a.Duty))
	for i, d := range a.Duty {
		duty[i] = min(max(d, s.Low[i]), s.High[i])
	}
	return DutyAction(duty...)
}
