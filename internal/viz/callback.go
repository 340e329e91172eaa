package viz

import (
	"fmt"
	"strings"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/scml"
)

// TraceCallback records one state and its setpoint over the current
// episode and charts them when the environment renders. Each reset starts
// a fresh trace, so after a run it holds the last episode.
type TraceCallback struct {
	name  string
	index int

	states []float64
	refs   []float64
}

func NewTraceCallback(state string) *TraceCallback {
	return &TraceCallback{name: state}
}

func (c *TraceCallback) Configure(info scml.SystemInfo) error {
	index, ok := info.StatePositions[c.name]
	if !ok {
		return fmt.Errorf("%w: %s", env.ErrUnknownState, c.name)
	}
	c.index = index
	return nil
}

func (c *TraceCallback) OnResetBegin() {
	c.states = c.states[:0]
	c.refs = c.refs[:0]
}

func (c *TraceCallback) OnResetEnd(obs env.Observation) {
	c.append(obs)
}

func (c *TraceCallback) OnStepBegin(k int, action scml.Action) {}

func (c *TraceCallback) OnStepEnd(k int, result *env.StepResult) {
	c.append(result.Observation)
}

func (c *TraceCallback) OnClose() {}

func (c *TraceCallback) append(obs env.Observation) {
	if c.index < len(obs.State) {
		c.states = append(c.states, obs.State[c.index])
	}
	if len(obs.Reference) > 0 {
		c.refs = append(c.refs, obs.Reference[0])
	}
}

// View returns the charted trace, empty until two samples exist.
func (c *TraceCallback) View() string {
	if len(c.states) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString(Trace(c.states, c.name))
	b.WriteString("\n\n")
	b.WriteString(Trace(c.refs, "reference"))
	b.WriteString("\n")
	return b.String()
}

func (c *TraceCallback) Render() {
	if view := c.View(); view != "" {
		fmt.Println(view)
	}
}
