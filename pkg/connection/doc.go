// Package connection implements the device link supervisor.
//
// The Supervisor keeps one stream connection to the device alive until its
// context is cancelled:
//
//  1. Dial the endpoint with a bounded connect timeout (default 5s). On
//     success the state becomes Connected and the fail-safe output is
//     cleared.
//  2. While connected, run heartbeat cycles: send the payload, read one
//     reply within a shared operation budget (default 30s), log it as hex
//     and text, then wait the heartbeat interval (default 10s). A timed-out
//     cycle is logged and the next cycle starts; a close, reset or other
//     error ends the connection.
//  3. Classify the failure. If the link was Connected the state returns to
//     AttemptingConnect and the fail-safe output is asserted. Either way
//     one audit record is appended.
//  4. Wait the retry delay (default a fixed 10s) and start over.
//
// Every wait observes the context, so cancellation stops the loop promptly
// without further I/O.
//
// # Retry Delay
//
// The retry delay comes from Backoff. By default it is fixed. Setting a
// maximum above the initial delay switches to exponential growth with
// jitter, reset on every successful connection.
//
// # State Ownership
//
// Only the Run loop writes the connection state. State may be read from
// any goroutine.
package connection
