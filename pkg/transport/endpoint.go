package transport

import (
	"net"
	"strconv"
)

// DefaultPort is used when a configured port is out of range.
const DefaultPort = 5000

// Endpoint is the address of the supervised device.
type Endpoint struct {
	Address string
	Port    int
}

// ValidPort reports whether port is in (0, 65535].
func ValidPort(port int) bool {
	return port > 0 && port <= 65535
}

// NewEndpoint builds an Endpoint, substituting DefaultPort for an invalid
// port. fallback reports whether the substitution happened.
func NewEndpoint(address string, port int) (ep Endpoint, fallback bool) {
	if !ValidPort(port) {
		return Endpoint{Address: address, Port: DefaultPort}, true
	}
	return Endpoint{Address: address, Port: port}, false
}

// String returns host:port, bracketing IPv6 literals.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}
