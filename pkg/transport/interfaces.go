package transport

import (
	"context"
	"net"
)

// LinkDialer opens supervised connections. Implemented by Dialer.
type LinkDialer interface {
	Dial(ctx context.Context, ep Endpoint) (*Conn, Result)
}

// EchoServer is the test counterpart of the supervisor.
// Implemented by Responder.
type EchoServer interface {
	// Start begins accepting connections.
	Start(ctx context.Context) error

	// Stop closes the listener and all connections.
	Stop() error

	// Addr returns the listen address.
	Addr() net.Addr

	// ConnectionCount returns the number of active connections.
	ConnectionCount() int
}

// Compile-time interface satisfaction checks.
var (
	_ LinkDialer = Dialer{}
	_ EchoServer = (*Responder)(nil)
)
