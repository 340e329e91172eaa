// Package scml simulates a Supply-Converter-Motor-Load drive system as a
// discrete-time-stepped physical process.
//
// The [System] composes one concrete variant of each role around an ODE
// solver:
//
//   - [Supply]: supply voltage for a given current draw
//   - [Converter]: action to output-voltage segments, with sub-interval switching
//   - [Motor]: electrical ODE state and torque output
//   - [Load]: mechanical ODE state driven by torque
//   - [Solver]: integration of the combined state vector
//
// One Simulate call advances the system by exactly one control interval and
// yields one limit-normalized observation, regardless of how often the
// converter switches inside the interval. Role compatibility is checked
// once, at construction, through the declared shapes.
package scml
