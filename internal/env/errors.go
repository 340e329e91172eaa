package env

import "errors"

// ErrNotReady is returned by Step before the first reset of an episode and
// after a terminating step.
var ErrNotReady = errors.New("env: environment not ready")

// ErrUnknownState is returned when a collaborator references a state name
// the composed system does not expose.
var ErrUnknownState = errors.New("env: unknown state name")
