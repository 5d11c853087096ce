package disconnect

import (
	"fmt"
	"strings"
)

// Reason is the classified root cause of a lost link or failed connect.
type Reason uint8

const (
	// Unknown means no rule matched.
	Unknown Reason = iota

	// DeviceClosed means the peer closed or reset the connection.
	DeviceClosed

	// PortBlocked means the connection was refused.
	PortBlocked

	// EthernetUnplugged means the local network is down or unreachable.
	EthernetUnplugged

	// Timeout means a connect or operation deadline expired.
	Timeout
)

var reasonNames = map[Reason]string{
	Unknown:           "Unknown",
	DeviceClosed:      "DeviceClosed",
	PortBlocked:       "PortBlocked",
	EthernetUnplugged: "EthernetUnplugged",
	Timeout:           "Timeout",
}

// Reasons lists every Reason in declaration order.
func Reasons() []Reason {
	return []Reason{Unknown, DeviceClosed, PortBlocked, EthernetUnplugged, Timeout}
}

// String returns the name written to the audit log.
func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", uint8(r))
}

// ParseReason maps an audit name back to a Reason. Matching ignores case.
func ParseReason(s string) (Reason, error) {
	s = strings.TrimSpace(s)
	for r, name := range reasonNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return Unknown, fmt.Errorf("unknown disconnect reason %q", s)
}
