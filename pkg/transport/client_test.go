package transport_test

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratchanon22/hostlink/pkg/disconnect"
	"github.com/Ratchanon22/hostlink/pkg/transport"
)

func startResponder(t *testing.T, cfg transport.ResponderConfig) (*transport.Responder, transport.Endpoint) {
	t.Helper()
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:0"
	}
	cfg.Logger = zerolog.Nop()

	r := transport.NewResponder(cfg)
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(func() { _ = r.Stop() })

	host, portStr, err := net.SplitHostPort(r.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return r, transport.Endpoint{Address: host, Port: port}
}

func dial(t *testing.T, ep transport.Endpoint) *transport.Conn {
	t.Helper()
	conn, res := transport.Dialer{Timeout: time.Second}.Dial(context.Background(), ep)
	require.True(t, res.OK(), "dial: %v", res.Err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func fastHeartbeat() transport.HeartbeatConfig {
	return transport.HeartbeatConfig{
		OperationTimeout: 300 * time.Millisecond,
		Interval:         10 * time.Millisecond,
	}
}

func TestExchangeAck(t *testing.T) {
	var mu sync.Mutex
	var received []string
	_, ep := startResponder(t, transport.ResponderConfig{
		OnMessage: func(_ *transport.ResponderConn, msg []byte) {
			mu.Lock()
			received = append(received, string(msg))
			mu.Unlock()
		},
	})
	conn := dial(t, ep)
	assert.NotEmpty(t, conn.ID())
	assert.Equal(t, net.JoinHostPort(ep.Address, strconv.Itoa(ep.Port)), conn.RemoteAddr().String())
	assert.NotEqual(t, conn.RemoteAddr().String(), conn.LocalAddr().String())

	res := transport.Exchange(context.Background(), conn, fastHeartbeat())
	require.True(t, res.OK(), "exchange: %v %v", res.Status, res.Err)
	assert.Equal(t, []byte("ACK"), res.Data)
	assert.Equal(t, "41-43-4B", transport.HexString(res.Data))
	assert.Equal(t, disconnect.StageRead, res.Stage)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Hello Device"}, received)
}

func TestExchangeCustomAck(t *testing.T) {
	r, ep := startResponder(t, transport.ResponderConfig{Ack: "OK"})
	conn := dial(t, ep)

	res := transport.Exchange(context.Background(), conn, fastHeartbeat())
	require.True(t, res.OK())
	assert.Equal(t, "OK", string(res.Data))

	r.SetAck("READY")
	assert.Equal(t, "READY", r.Ack())
	res = transport.Exchange(context.Background(), conn, fastHeartbeat())
	require.True(t, res.OK())
	assert.Equal(t, "READY", string(res.Data))
}

func TestExchangeMuteTimesOut(t *testing.T) {
	r, ep := startResponder(t, transport.ResponderConfig{})
	r.SetMode(transport.ModeMute)
	conn := dial(t, ep)

	start := time.Now()
	res := transport.Exchange(context.Background(), conn, fastHeartbeat())
	assert.Equal(t, transport.StatusTimedOut, res.Status)
	assert.Equal(t, disconnect.StageRead, res.Stage)
	assert.Less(t, time.Since(start), 2*time.Second)

	c := disconnect.Classifier{NetworkAvailable: func() bool { return true }}
	assert.Equal(t, disconnect.Timeout, c.Classify(res.Failure()))

	// The connection stays usable after a timed-out cycle.
	r.SetMode(transport.ModeAck)
	res = transport.Exchange(context.Background(), conn, fastHeartbeat())
	assert.True(t, res.OK(), "status %v", res.Status)
}

func TestExchangeHangupIsClosed(t *testing.T) {
	r, ep := startResponder(t, transport.ResponderConfig{})
	r.SetMode(transport.ModeHangup)
	conn := dial(t, ep)

	res := transport.Exchange(context.Background(), conn, fastHeartbeat())
	assert.Equal(t, transport.StatusClosed, res.Status)

	f := res.Failure()
	assert.Equal(t, disconnect.KindClosed, f.Kind)
	assert.Contains(t, f.Message, "connection was closed")
	c := disconnect.Classifier{NetworkAvailable: func() bool { return true }}
	assert.Equal(t, disconnect.DeviceClosed, c.Classify(f))
}

func TestExchangeResetIsAborted(t *testing.T) {
	r, ep := startResponder(t, transport.ResponderConfig{})
	r.SetMode(transport.ModeReset)
	conn := dial(t, ep)

	res := transport.Exchange(context.Background(), conn, fastHeartbeat())
	assert.Equal(t, transport.StatusAborted, res.Status, "err: %v", res.Err)

	c := disconnect.Classifier{NetworkAvailable: func() bool { return false }}
	assert.Equal(t, disconnect.DeviceClosed, c.Classify(res.Failure()))
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	conn, res := transport.Dialer{Timeout: time.Second}.Dial(context.Background(),
		transport.Endpoint{Address: "127.0.0.1", Port: addr.Port})
	assert.Nil(t, conn)
	assert.False(t, res.OK())
	assert.Equal(t, disconnect.StageConnect, res.Stage)

	c := disconnect.Classifier{NetworkAvailable: func() bool { return true }}
	assert.Equal(t, disconnect.PortBlocked, c.Classify(res.Failure()))
}

func TestDialTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	conn, res := transport.Dialer{}.Dial(ctx, transport.Endpoint{Address: "127.0.0.1", Port: 1})
	assert.Nil(t, conn)
	assert.Equal(t, transport.StatusTimedOut, res.Status)
	assert.Equal(t, disconnect.Timeout, disconnect.Classify(res.Failure()))
}

func TestReadCancelledPromptly(t *testing.T) {
	r, ep := startResponder(t, transport.ResponderConfig{})
	r.SetMode(transport.ModeMute)
	conn := dial(t, ep)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := conn.Read(ctx, make([]byte, 16), time.Now().Add(time.Minute))
	assert.Equal(t, transport.StatusTimedOut, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConnClosedLocally(t *testing.T) {
	_, ep := startResponder(t, transport.ResponderConfig{})
	conn := dial(t, ep)

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.False(t, conn.Open())

	res := conn.Write(context.Background(), []byte("x"), time.Now().Add(time.Second))
	assert.Equal(t, transport.StatusError, res.Status)
	assert.ErrorIs(t, res.Err, transport.ErrConnectionClosed)
}
