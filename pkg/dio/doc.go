// Package dio defines the digital I/O capability driven by the link supervisor.
//
// The supervisor depends only on the Capability interface: one call to set a
// single-bit output line and one to read a single-bit input line. Backends
// are interchangeable:
//
//   - Simulated keeps line state in memory and mirrors every output onto the
//     input of the same channel. It is the default test double.
//   - Bitmapped drives a byte-organised I/O board through a PortDevice,
//     mapping channel N to bit N%8 of port N/8 with read-modify-write.
//   - LinePortDevice is a PortDevice speaking a small ASCII line protocol
//     over a serial port (go.bug.st/serial) or any io.ReadWriteCloser.
//
// # Fail-safe Channel
//
// Channel 0 (FailsafeChannel) is reserved as the fail-safe indicator: it is
// driven true while the supervised link is down and false once a connection
// is confirmed.
//
// # Error Policy
//
// Capability calls return errors instead of panicking. Callers on the
// fail-safe path log and continue; a failed assertion must never stop
// reconnection.
package dio
