package disconnect

import (
	"net"
	"strings"
)

// closedMarkers are message fragments that mean the peer closed the socket.
var closedMarkers = []string{
	"Disconnected",
	"socket closed",
	"connection was closed",
}

// Classifier maps a Failure to a Reason. The zero value is ready to use and
// queries the host's interfaces for the network availability rule.
type Classifier struct {
	// NetworkAvailable reports whether a usable network interface exists.
	// Nil selects NetworkAvailable.
	NetworkAvailable func() bool
}

// Classify returns exactly one Reason for f. It never panics.
func (c Classifier) Classify(f Failure) Reason {
	if f.Kind == KindTimeout {
		return Timeout
	}
	if f.Code != CodeNone {
		return reasonForCode(f.Code)
	}
	if f.WrappedCode != CodeNone {
		return reasonForCode(f.WrappedCode)
	}

	msg := f.Message
	if msg == "" && f.Kind == KindClosed {
		msg = closedByPeerMessage
	}
	for _, marker := range closedMarkers {
		if strings.Contains(msg, marker) {
			return DeviceClosed
		}
	}

	if !c.networkAvailable() {
		return EthernetUnplugged
	}
	return Unknown
}

// Classify uses the zero Classifier.
func Classify(f Failure) Reason {
	return Classifier{}.Classify(f)
}

func (c Classifier) networkAvailable() bool {
	if c.NetworkAvailable != nil {
		return c.NetworkAvailable()
	}
	return NetworkAvailable()
}

func reasonForCode(code Code) Reason {
	switch code {
	case CodeConnectionRefused:
		return PortBlocked
	case CodeConnectionReset, CodeConnectionAborted, CodeBrokenPipe:
		// A broken pipe is a write to a socket the peer already closed.
		return DeviceClosed
	case CodeNetworkDown, CodeNetworkUnreachable:
		return EthernetUnplugged
	default:
		return Unknown
	}
}

// NetworkAvailable reports whether any non-loopback interface is up and has
// an address. Interface enumeration errors count as unavailable.
func NetworkAvailable() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}
	return false
}
