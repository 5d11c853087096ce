// Package transport provides the bounded stream I/O used by the link
// supervisor and the echo responder it is tested against.
//
// # Explicit Results
//
// Dial, Write and Read never return a bare error. Each returns a Result
// whose Status is one of:
//
//	OK        the operation completed; Data holds what was read
//	TimedOut  the deadline or the caller's context expired
//	Closed    the peer closed the stream gracefully (zero-byte read)
//	Aborted   the peer reset or aborted the connection
//	Error     anything else
//
// Result.Failure converts a non-OK Result into a disconnect.Failure for
// classification.
//
// # Deadlines and Cancellation
//
// Every blocking call takes an explicit deadline and a context. The
// effective deadline is the earlier of the two; cancelling the context
// interrupts a blocked Read or Write immediately by moving the socket
// deadline to now.
//
// # Heartbeat
//
// Exchange performs one heartbeat cycle: write the payload, then read one
// reply of up to BufferSize bytes. Both calls share a single operation
// budget. There is no framing: a reply is whatever the peer sends per read.
package transport
