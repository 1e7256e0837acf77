// Package dispatch implements vehicle selection and the journey state
// machine. A Manager owns at most one active session at a time: it scores
// the fleet against a pickup point, claims the winner, and drives the
// vehicle's simulated position through two route legs to completion,
// emitting lifecycle events along the way.
package dispatch
