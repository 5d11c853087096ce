package transport

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// Heartbeat defaults.
const (
	// DefaultHeartbeat is the fixed payload sent every cycle.
	DefaultHeartbeat = "Hello Device"

	// DefaultOperationTimeout is the shared write+read budget per cycle.
	DefaultOperationTimeout = 30 * time.Second

	// DefaultHeartbeatInterval is the pause between successful cycles.
	DefaultHeartbeatInterval = 10 * time.Second

	// DefaultBufferSize is the maximum reply size read per cycle.
	DefaultBufferSize = 4096
)

// HeartbeatConfig configures the per-cycle exchange.
type HeartbeatConfig struct {
	// Payload is written once per cycle (default: "Hello Device").
	Payload string

	// OperationTimeout bounds the write and the read together.
	OperationTimeout time.Duration

	// Interval is the delay between successful cycles.
	Interval time.Duration

	// BufferSize is the read buffer size.
	BufferSize int
}

// DefaultHeartbeatConfig returns the default heartbeat configuration.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Payload:          DefaultHeartbeat,
		OperationTimeout: DefaultOperationTimeout,
		Interval:         DefaultHeartbeatInterval,
		BufferSize:       DefaultBufferSize,
	}
}

// WithDefaults fills zero fields from DefaultHeartbeatConfig.
func (c HeartbeatConfig) WithDefaults() HeartbeatConfig {
	d := DefaultHeartbeatConfig()
	if c.Payload == "" {
		c.Payload = d.Payload
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = d.OperationTimeout
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	return c
}

// Exchange runs one heartbeat cycle on conn: write the payload, then read
// a single reply. The write and the read share one OperationTimeout budget.
// The returned Result is the write's on write failure, otherwise the read's,
// with Elapsed covering the whole cycle.
func Exchange(ctx context.Context, conn *Conn, cfg HeartbeatConfig) Result {
	cfg = cfg.WithDefaults()
	start := time.Now()
	deadline := start.Add(cfg.OperationTimeout)

	w := conn.Write(ctx, []byte(cfg.Payload), deadline)
	if !w.OK() {
		w.Elapsed = time.Since(start)
		return w
	}

	buf := make([]byte, cfg.BufferSize)
	r := conn.Read(ctx, buf, deadline)
	r.Elapsed = time.Since(start)
	return r
}

// HexString renders b as dash-separated uppercase hex pairs, e.g. "41-43-4B".
func HexString(b []byte) string {
	const digits = "0123456789ABCDEF"
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(b)*3 - 1)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(digits[v>>4])
		sb.WriteByte(digits[v&0x0F])
	}
	return sb.String()
}

// DecodeText renders b as UTF-8 text with invalid sequences replaced and
// surrounding whitespace trimmed.
func DecodeText(b []byte) string {
	s := string(b)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return strings.TrimSpace(s)
}
