// Package env drives the composed physical system through the reset/step
// episode protocol and wires in the control-learning collaborators:
// reference generator, reward function, constraint monitor and callbacks.
//
// Collaborators never receive a handle to the environment or the system.
// They are configured once with the read-only [scml.SystemInfo] and from
// then on only see plain observation vectors.
package env

import (
	"fmt"

	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// ReferenceGenerator produces the setpoint trajectory the agent is asked to
// follow.
type ReferenceGenerator interface {
	// Configure binds the generator to the composed system's state layout.
	Configure(info scml.SystemInfo) error
	// ReferencedStates names the states this generator produces setpoints for.
	ReferencedStates() []string
	// ReferenceSpace bounds the compact reference observation.
	ReferenceSpace() scml.Box
	// Reset starts a new trajectory against the initial state and returns
	// the first compact reference observation.
	Reset(initialState []float64) []float64
	// Reference returns the current setpoints aligned with the full state
	// vector, zero at unreferenced positions.
	Reference(state []float64) []float64
	// ReferenceObservation advances the trajectory and returns the compact
	// reference the agent sees for the next cycle.
	ReferenceObservation(state []float64) []float64
}

// Exhaustible is an optional reference generator capability: trajectories of
// finite length report their end, which terminates the episode.
type Exhaustible interface {
	Exhausted() bool
}

// RewardFunction scores one cycle of the episode.
type RewardFunction interface {
	Configure(info scml.SystemInfo) error
	RewardRange() (low, high float64)
	Reward(state, reference []float64, k int, action scml.Action, violationDegree float64) float64
	Reset()
	Close()
}

// ConstraintMonitor maps a normalized state to a continuous violation
// degree: 0 fully within limits, >= 1 violated.
type ConstraintMonitor interface {
	Configure(info scml.SystemInfo) error
	CheckConstraints(state []float64) float64
}

// Callback observes the episode lifecycle. Hooks fire strictly in
// pre-hook, core computation, post-hook order.
type Callback interface {
	OnResetBegin()
	OnResetEnd(obs Observation)
	OnStepBegin(k int, action scml.Action)
	OnStepEnd(k int, result *StepResult)
	OnClose()
}

// Renderer is an optional callback capability invoked by Render.
type Renderer interface {
	Render()
}

// Configurable is an optional callback capability: callbacks that need the
// composed system's layout receive it at wiring time.
type Configurable interface {
	Configure(info scml.SystemInfo) error
}

// Observation pairs the normalized physical state with the compact
// reference the agent should steer towards.
type Observation struct {
	State     []float64
	Reference []float64
}

// StepResult is the outcome of one control cycle.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	Info        map[string]any
}

// Environment composes the physical system with its collaborators and
// enforces the episode state machine: step is only legal between a reset
// and the terminating step of the same episode.
type Environment struct {
	rng.Component

	sys       *scml.System
	refGen    ReferenceGenerator
	reward    RewardFunction
	monitor   ConstraintMonitor
	callbacks []Callback

	// done is true before the first reset and after a terminating step.
	done        bool
	rootEntropy uint64
}

// New wires the collaborators against the system's metadata and seeds the
// whole tree from OS entropy. Re-seed with Seed for a reproducible run.
func New(sys *scml.System, refGen ReferenceGenerator, reward RewardFunction, monitor ConstraintMonitor, callbacks ...Callback) (*Environment, error) {
	info := sys.Info()
	if err := refGen.Configure(info); err != nil {
		return nil, fmt.Errorf("env: configure reference generator: %w", err)
	}
	if err := reward.Configure(info); err != nil {
		return nil, fmt.Errorf("env: configure reward function: %w", err)
	}
	if err := monitor.Configure(info); err != nil {
		return nil, fmt.Errorf("env: configure constraint monitor: %w", err)
	}
	for _, cb := range callbacks {
		if c, ok := cb.(Configurable); ok {
			if err := c.Configure(info); err != nil {
				return nil, fmt.Errorf("env: configure callback: %w", err)
			}
		}
	}

	e := &Environment{
		sys:       sys,
		refGen:    refGen,
		reward:    reward,
		monitor:   monitor,
		callbacks: callbacks,
		done:      true,
	}
	e.Seed(nil)
	return e, nil
}

// Seed re-derives the whole entropy hierarchy: one child stream each for
// the system, the reference generator, the reward function, the constraint
// monitor and every callback, in that order. It returns the root entropy
// actually used, so a run seeded from OS entropy can be replayed.
func (e *Environment) Seed(seed *uint64) uint64 {
	tree := rng.NewTree(seed)
	e.rootEntropy = tree.Entropy()
	e.Component.Seed(tree)

	children := tree.Spawn(4 + len(e.callbacks))
	e.sys.Seed(children[0])
	targets := []any{e.refGen, e.reward, e.monitor}
	for _, cb := range e.callbacks {
		targets = append(targets, cb)
	}
	for i, target := range targets {
		if sd, ok := target.(rng.Seedable); ok {
			sd.Seed(children[i+1])
		}
	}
	return e.rootEntropy
}

// Reset starts a new episode and returns the initial observation.
func (e *Environment) Reset() Observation {
	for _, cb := range e.callbacks {
		cb.OnResetBegin()
	}

	state := e.sys.Reset()
	refObs := e.refGen.Reset(state)
	e.reward.Reset()

	obs := Observation{State: state, Reference: refObs}
	for _, cb := range e.callbacks {
		cb.OnResetEnd(obs)
	}
	e.done = false
	return obs
}

// Step advances the episode by one control cycle. It fails with
// ErrNotReady when called before the first reset or after a terminating
// step; the caller must reset first.
func (e *Environment) Step(action scml.Action) (*StepResult, error) {
	if e.done {
		return nil, fmt.Errorf("%w: reset the environment before stepping", ErrNotReady)
	}

	for _, cb := range e.callbacks {
		cb.OnStepBegin(e.sys.K(), action)
	}

	state, err := e.sys.Simulate(action)
	if err != nil {
		return nil, err
	}

	reference := e.refGen.Reference(state)
	violation := e.monitor.CheckConstraints(state)
	reward := e.reward.Reward(state, reference, e.sys.K(), action, violation)

	done := violation >= 1.0
	refObs := e.refGen.ReferenceObservation(state)
	if ex, ok := e.refGen.(Exhaustible); ok && ex.Exhausted() {
		done = true
	}

	result := &StepResult{
		Observation: Observation{State: state, Reference: refObs},
		Reward:      reward,
		Done:        done,
	}
	for _, cb := range e.callbacks {
		cb.OnStepEnd(e.sys.K(), result)
	}
	e.done = done
	return result, nil
}

// Render invokes every callback that can draw the current episode.
func (e *Environment) Render() {
	for _, cb := range e.callbacks {
		if r, ok := cb.(Renderer); ok {
			r.Render()
		}
	}
}

// Close shuts the environment down. Further steps require a new instance.
func (e *Environment) Close() {
	for _, cb := range e.callbacks {
		cb.OnClose()
	}
	e.reward.Close()
	e.sys.Close()
	e.done = true
}

// Done reports whether a reset is required before the next step.
func (e *Environment) Done() bool { return e.done }

// RootEntropy returns the entropy of the last Seed call.
func (e *Environment) RootEntropy() uint64 { return e.rootEntropy }

// System exposes the composed physical system, read-only by convention.
func (e *Environment) System() *scml.System { return e.sys }

// ObservationSpace returns the pair of boxes the observation lives in.
func (e *Environment) ObservationSpace() (state, reference scml.Box) {
	return e.sys.Info().StateSpace, e.refGen.ReferenceSpace()
}

// ActionSpace returns the action space declared by the converter.
func (e *Environment) ActionSpace() scml.ActionSpace { return e.sys.ActionSpace() }
