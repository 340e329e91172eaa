package monitor

import (
	"math"

	"github.com/drivesim/drivesim/internal/scml"
)

// Limit is a hard limit constraint: the violation degree jumps to 1 as
// soon as any monitored state leaves its normalized range.
type Limit struct {
	names   []string
	indices []int
}

// NewLimit monitors the named states; no names means all states.
func NewLimit(names ...string) *Limit {
	return &Limit{names: names}
}

func (c *Limit) Configure(info scml.SystemInfo) error {
	indices, err := resolve(c.names, info)
	c.indices = indices
	return err
}

func (c *Limit) Violation(state []float64) float64 {
	for _, idx := range c.indices {
		if math.Abs(state[idx]) > 1 {
			return 1
		}
	}
	return 0
}

// Squared is a soft limit constraint: beyond the margin the violation
// degree grows quadratically and reaches 1 at the limit, so the monitor
// reports trouble before the hard limit trips.
type Squared struct {
	names   []string
	margin  float64
	indices []int
}

// NewSquared monitors the named states with the given soft margin in
// (0, 1); no names means all states.
func NewSquared(margin float64, names ...string) *Squared {
	if margin <= 0 || margin >= 1 {
		margin = 0.95
	}
	return &Squared{names: names, margin: margin}
}

func (c *Squared) Configure(info scml.SystemInfo) error {
	indices, err := resolve(c.names, info)
	c.indices = indices
	return err
}

func (c *Squared) Violation(state []float64) float64 {
	degree := 0.0
	for _, idx := range c.indices {
		over := math.Abs(state[idx]) - c.margin
		if over <= 0 {
			continue
		}
		v := over / (1 - c.margin)
		degree += v * v
	}
	return degree
}
