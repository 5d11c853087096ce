package discovery

import (
	"errors"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of a heartbeat device.
	ServiceType = "_hostlink._tcp"

	// Domain is the mDNS domain.
	Domain = "local."

	// ProtocolVersion is advertised in the ver TXT record.
	ProtocolVersion = "1"

	// MaxInstanceNameLen is the DNS label limit for instance names.
	MaxInstanceNameLen = 63
)

// TXT record key constants.
const (
	TXTKeyVersion = "ver"
	TXTKeyAck     = "ack"
	TXTKeyModel   = "model"
	TXTKeySerial  = "serial"
)

// Timing constants.
const (
	// ResolveTimeout bounds Resolve when the caller's context has no deadline.
	ResolveTimeout = 10 * time.Second
)

// Errors
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrEmptyInstanceName   = errors.New("instance name is empty")
	ErrNotFound            = errors.New("service not found")
	ErrNoAddress           = errors.New("service has no address")
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// DeviceInfo is the advertised description of a device.
type DeviceInfo struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Port is the heartbeat TCP port.
	Port int

	// Version is the heartbeat protocol version.
	Version string

	// Ack is the acknowledgment the device replies with (optional).
	Ack string

	// Model and Serial identify the hardware (optional).
	Model  string
	Serial string
}

// Service is a device found on the network.
type Service struct {
	DeviceInfo

	// Host is the advertised host name.
	Host string

	// Addresses are the IPv4 then IPv6 addresses of the host.
	Addresses []string
}
