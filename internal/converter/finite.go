package converter

import (
	"fmt"
	"sort"

	"github.com/drivesim/drivesim/internal/scml"
)

// Finite1QC is a one quadrant chopper with a single transistor and a free
// wheeling diode. Switch positions: 0 transistor off, 1 transistor on. It
// can only impress positive currents; for negative currents the diode
// conducts and the full supply voltage appears at the output.
type Finite1QC struct {
	noObservation
	switching
	action int
}

func NewFinite1QC(opts ...Option) *Finite1QC {
	return &Finite1QC{switching: buildSwitching(opts)}
}

func (c *Finite1QC) ActionSpace() scml.ActionSpace { return scml.DiscreteSpace(2) }

func (c *Finite1QC) SupplyShape() int { return 1 }

func (c *Finite1QC) OutputShape() int { return 1 }

func (c *Finite1QC) Reset() {
	c.action = 0
	c.actionStart = 0
}

func (c *Finite1QC) SetAction(action scml.Action, t float64) ([]float64, error) {
	if action.Switch < 0 || action.Switch > 1 {
		return nil, fmt.Errorf("%w: switch position %d outside Discrete(2)", scml.ErrInvalidAction, action.Switch)
	}
	c.action = action.Switch
	c.actionStart = t
	return []float64{t + c.tau}, nil
}

func (c *Finite1QC) Convert(t float64, iOut, uSup []float64) []float64 {
	if iOut[0] < 0 {
		return []float64{uSup[0]}
	}
	return []float64{float64(c.action) * uSup[0]}
}

func (c *Finite1QC) SupplyCurrent(iOut []float64) []float64 {
	if c.action == 1 {
		return []float64{iOut[0]}
	}
	return []float64{0}
}

// Finite2QC is an asymmetric half bridge. Switch positions: 0 both
// transistors off, 1 upper transistor on, 2 lower transistor on. With a
// non-zero interlocking time, a transition between the conducting positions
// passes through position 0 first.
type Finite2QC struct {
	noObservation
	switching
	state   int
	pattern [2]int
	nsteps  int
}

func NewFinite2QC(opts ...Option) *Finite2QC {
	return &Finite2QC{switching: buildSwitching(opts), nsteps: 1}
}

func (c *Finite2QC) ActionSpace() scml.ActionSpace { return scml.DiscreteSpace(3) }

func (c *Finite2QC) SupplyShape() int { return 1 }

func (c *Finite2QC) OutputShape() int { return 1 }

func (c *Finite2QC) Reset() {
	c.state = 0
	c.pattern = [2]int{0, 0}
	c.nsteps = 1
	c.actionStart = 0
}

func (c *Finite2QC) SetAction(action scml.Action, t float64) ([]float64, error) {
	if action.Switch < 0 || action.Switch > 2 {
		return nil, fmt.Errorf("%w: switch position %d outside Discrete(3)", scml.ErrInvalidAction, action.Switch)
	}
	c.actionStart = t
	if action.Switch == 0 || c.state == 0 || action.Switch == c.state || c.interlock == 0 {
		c.pattern = [2]int{action.Switch, action.Switch}
		c.nsteps = 1
		return []float64{t + c.tau}, nil
	}
	c.pattern = [2]int{0, action.Switch}
	c.nsteps = 2
	return []float64{t + c.interlock, t + c.tau}, nil
}

func (c *Finite2QC) Convert(t float64, iOut, uSup []float64) []float64 {
	// Switch slightly before the interlocking boundary, adaptive solvers
	// may query marginally short of it.
	if c.nsteps == 2 && t-c.tau/1000 <= c.actionStart+c.interlock {
		c.state = c.pattern[0]
	} else {
		c.state = c.pattern[1]
	}
	switch c.state {
	case 0:
		if iOut[0] < 0 {
			return []float64{uSup[0]}
		}
		return []float64{0}
	case 1:
		return []float64{uSup[0]}
	default:
		return []float64{0}
	}
}

func (c *Finite2QC) SupplyCurrent(iOut []float64) []float64 {
	switch c.state {
	case 0:
		if iOut[0] < 0 {
			return []float64{iOut[0]}
		}
		return []float64{0}
	case 1:
		return []float64{iOut[0]}
	default:
		return []float64{0}
	}
}

// Finite4QC is a full bridge built from two half bridges on the same DC
// link. Switch positions: 0 short low side, 1 positive output, 2 negative
// output, 3 short high side.
type Finite4QC struct {
	noObservation
	switching
	sub [2]*Finite2QC
	neg [1]float64
}

func NewFinite4QC(opts ...Option) *Finite4QC {
	return &Finite4QC{
		switching: buildSwitching(opts),
		sub: [2]*Finite2QC{
			NewFinite2QC(opts...),
			NewFinite2QC(opts...),
		},
	}
}

func (c *Finite4QC) ActionSpace() scml.ActionSpace { return scml.DiscreteSpace(4) }

func (c *Finite4QC) SupplyShape() int { return 1 }

func (c *Finite4QC) OutputShape() int { return 1 }

func (c *Finite4QC) Reset() {
	c.sub[0].Reset()
	c.sub[1].Reset()
}

var (
	fourQCUpper = [4]int{1, 1, 2, 2}
	fourQCLower = [4]int{1, 2, 1, 2}
)

func (c *Finite4QC) SetAction(action scml.Action, t float64) ([]float64, error) {
	if action.Switch < 0 || action.Switch > 3 {
		return nil, fmt.Errorf("%w: switch position %d outside Discrete(4)", scml.ErrInvalidAction, action.Switch)
	}
	t0, err := c.sub[0].SetAction(scml.SwitchAction(fourQCUpper[action.Switch]), t)
	if err != nil {
		return nil, err
	}
	t1, err := c.sub[1].SetAction(scml.SwitchAction(fourQCLower[action.Switch]), t)
	if err != nil {
		return nil, err
	}
	return mergeTimes(t0, t1), nil
}

func (c *Finite4QC) Convert(t float64, iOut, uSup []float64) []float64 {
	c.neg[0] = -iOut[0]
	upper := c.sub[0].Convert(t, iOut, uSup)[0]
	lower := c.sub[1].Convert(t, c.neg[:], uSup)[0]
	return []float64{upper - lower}
}

func (c *Finite4QC) SupplyCurrent(iOut []float64) []float64 {
	c.neg[0] = -iOut[0]
	return []float64{c.sub[0].SupplyCurrent(iOut)[0] + c.sub[1].SupplyCurrent(c.neg[:])[0]}
}

// mergeTimes merges two sorted switching time lists, dropping duplicates.
func mergeTimes(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Float64s(out)
	dedup := out[:0]
	for i, v := range out {
		if i == 0 || v != dedup[len(dedup)-1] {
			dedup = append(dedup, v)
		}
	}
	return dedup
}
