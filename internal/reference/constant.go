package reference

import "github.com/drivesim/drivesim/internal/scml"

// Constant holds a fixed setpoint. With a positive episode length it is
// exhaustible: after that many cycles it reports the end of the trajectory
// and the episode terminates.
type Constant struct {
	single

	setpoint      float64
	episodeLength int
	served        int
}

// NewConstant targets the named state with a fixed normalized setpoint.
// episodeLength <= 0 means the trajectory never runs out.
func NewConstant(stateName string, setpoint float64, episodeLength int) *Constant {
	c := &Constant{setpoint: setpoint, episodeLength: episodeLength}
	c.name = stateName
	return c
}

func (c *Constant) Configure(info scml.SystemInfo) error {
	if err := c.single.Configure(info); err != nil {
		return err
	}
	c.setpoint = c.clip(c.setpoint)
	return nil
}

func (c *Constant) Reset(initialState []float64) []float64 {
	c.value = c.setpoint
	c.served = 0
	return c.observe()
}

func (c *Constant) ReferenceObservation(state []float64) []float64 {
	c.served++
	return c.observe()
}

// Exhausted reports the end of a finite trajectory.
func (c *Constant) Exhausted() bool {
	return c.episodeLength > 0 && c.served >= c.episodeLength
}
