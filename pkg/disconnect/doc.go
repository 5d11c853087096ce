// Package disconnect classifies link failures into a DisconnectReason.
//
// Transport operations report failures as an explicit Failure value rather
// than a raw error. The Classifier maps each Failure to exactly one Reason
// using a fixed precedence:
//
//  1. A timeout or cancellation is Timeout, whatever else is present.
//  2. A socket error code on the failure itself is mapped:
//     refused is PortBlocked, reset/aborted/broken pipe is DeviceClosed,
//     network down/unreachable is EthernetUnplugged, anything else Unknown.
//  3. A socket error code found deeper in the error chain is mapped the
//     same way.
//  4. A message saying the peer closed the socket is DeviceClosed.
//  5. No usable network interface at classification time is
//     EthernetUnplugged.
//  6. Anything else is Unknown.
//
// Step 5 is the only query outside the Failure value. Tests inject it
// through Classifier.NetworkAvailable.
//
// A graceful zero-byte close (Kind Closed, built by ClosedByPeer) and an
// abrupt reset (Code ConnectionReset) stay distinct inputs. Both classify
// as DeviceClosed, the first by its message and the second by its code.
package disconnect
