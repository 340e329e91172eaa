package converter

import (
	"fmt"

	"github.com/drivesim/drivesim/internal/scml"
)

// Cont1QC is a dynamically averaged one quadrant chopper. The action is the
// transistor duty cycle in [0, 1]; duties outside the range are clamped.
type Cont1QC struct {
	noObservation
	switching
	duty float64
}

func NewCont1QC(opts ...Option) *Cont1QC {
	return &Cont1QC{switching: buildSwitching(opts)}
}

func (c *Cont1QC) ActionSpace() scml.ActionSpace { return scml.BoxSpace([]float64{0}, []float64{1}) }

func (c *Cont1QC) SupplyShape() int { return 1 }

func (c *Cont1QC) OutputShape() int { return 1 }

func (c *Cont1QC) Reset() {
	c.duty = 0
	c.actionStart = 0
}

func (c *Cont1QC) SetAction(action scml.Action, t float64) ([]float64, error) {
	if len(action.Duty) != 1 {
		return nil, fmt.Errorf("%w: duty vector length %d, want 1", scml.ErrInvalidAction, len(action.Duty))
	}
	c.duty = clamp01(action.Duty[0])
	c.actionStart = t
	return []float64{t + c.tau}, nil
}

func (c *Cont1QC) Convert(t float64, iOut, uSup []float64) []float64 {
	// Negative currents close the free wheeling diode permanently.
	if iOut[0] < 0 {
		return []float64{uSup[0]}
	}
	return []float64{c.duty * uSup[0]}
}

func (c *Cont1QC) SupplyCurrent(iOut []float64) []float64 {
	return []float64{c.duty * iOut[0]}
}

// Cont2QC is a dynamically averaged asymmetric half bridge. The action is
// the duty cycle of the upper transistor; the lower transistor runs at its
// complement. The interlocking time shows up as a voltage discount against
// the current direction.
type Cont2QC struct {
	noObservation
	switching
	duty float64
}

func NewCont2QC(opts ...Option) *Cont2QC {
	return &Cont2QC{switching: buildSwitching(opts)}
}

func (c *Cont2QC) ActionSpace() scml.ActionSpace { return scml.BoxSpace([]float64{0}, []float64{1}) }

func (c *Cont2QC) SupplyShape() int { return 1 }

func (c *Cont2QC) OutputShape() int { return 1 }

func (c *Cont2QC) Reset() {
	c.duty = 0
	c.actionStart = 0
}

func (c *Cont2QC) SetAction(action scml.Action, t float64) ([]float64, error) {
	if len(action.Duty) != 1 {
		return nil, fmt.Errorf("%w: duty vector length %d, want 1", scml.ErrInvalidAction, len(action.Duty))
	}
	c.duty = clamp01(action.Duty[0])
	c.actionStart = t
	return []float64{t + c.tau}, nil
}

func (c *Cont2QC) Convert(t float64, iOut, uSup []float64) []float64 {
	d := c.duty - sign(iOut[0])*c.interlock/c.tau
	return []float64{clamp01(d) * uSup[0]}
}

func (c *Cont2QC) SupplyCurrent(iOut []float64) []float64 {
	interlockingCurrent := 0.0
	if iOut[0] < 0 {
		interlockingCurrent = 1
	}
	d := c.duty + c.interlock/c.tau*(interlockingCurrent-c.duty)
	return []float64{d * iOut[0]}
}

// ContDouble merges two continuous converters on a shared supply into one
// converter with a stacked duty vector and output, one entry per
// sub-converter. It feeds motors that draw more than one input voltage.
type ContDouble struct {
	noObservation
	switching
	sub  [2]scml.Converter
	uIn  [2]float64
	iSup [1]float64
}

func NewContDouble(first, second scml.Converter, opts ...Option) *ContDouble {
	return &ContDouble{
		switching: buildSwitching(opts),
		sub:       [2]scml.Converter{first, second},
	}
}

func (c *ContDouble) ActionSpace() scml.ActionSpace {
	a0 := c.sub[0].ActionSpace()
	a1 := c.sub[1].ActionSpace()
	low := append(append([]float64{}, a0.Low...), a1.Low...)
	high := append(append([]float64{}, a0.High...), a1.High...)
	return scml.BoxSpace(low, high)
}

func (c *ContDouble) SupplyShape() int { return 1 }

func (c *ContDouble) OutputShape() int {
	return c.sub[0].OutputShape() + c.sub[1].OutputShape()
}

func (c *ContDouble) Reset() {
	c.sub[0].Reset()
	c.sub[1].Reset()
}

func (c *ContDouble) SetAction(action scml.Action, t float64) ([]float64, error) {
	n0 := len(c.sub[0].ActionSpace().Low)
	if len(action.Duty) != n0+len(c.sub[1].ActionSpace().Low) {
		return nil, fmt.Errorf("%w: duty vector length %d, want %d",
			scml.ErrInvalidAction, len(action.Duty), n0+len(c.sub[1].ActionSpace().Low))
	}
	t0, err := c.sub[0].SetAction(scml.DutyAction(action.Duty[:n0]...), t)
	if err != nil {
		return nil, err
	}
	t1, err := c.sub[1].SetAction(scml.DutyAction(action.Duty[n0:]...), t)
	if err != nil {
		return nil, err
	}
	return mergeTimes(t0, t1), nil
}

func (c *ContDouble) Convert(t float64, iOut, uSup []float64) []float64 {
	n0 := c.sub[0].OutputShape()
	copy(c.uIn[:n0], c.sub[0].Convert(t, iOut[:n0], uSup))
	copy(c.uIn[n0:], c.sub[1].Convert(t, iOut[n0:], uSup))
	return c.uIn[:]
}

func (c *ContDouble) SupplyCurrent(iOut []float64) []float64 {
	n0 := c.sub[0].OutputShape()
	c.iSup[0] = c.sub[0].SupplyCurrent(iOut[:n0])[0] + c.sub[1].SupplyCurrent(iOut[n0:])[0]
	return c.iSup[:]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
