// Package discovery advertises and resolves hostlink devices over
// mDNS/DNS-SD.
//
// A device (or the hostlink-sim responder) registers an instance of
// _hostlink._tcp in the local. domain. The supervisor resolves an
// instance name to a transport.Endpoint when no IP address is configured.
//
// # TXT records
//
//   - ver: heartbeat protocol version
//   - ack: acknowledgment the device sends (optional)
//   - model: device model (optional)
//   - serial: device serial number (optional)
package discovery
