// Package failsafe couples link health to a physical fail-safe output.
//
// The controlled hardware has no memory of link health, so the supervisor
// drives a dedicated output line (channel 0 by default) on every
// connection state transition:
//
//   - Assert drives the line true: the link is down, hardware must go to
//     its safe state.
//   - Clear drives the line false: a connection has just been confirmed.
//
// Both calls go straight to the I/O capability on the caller's goroutine.
// A failing capability is logged and reported but never panics, and the
// commanded state is recorded regardless so the next transition still
// issues its command.
package failsafe
