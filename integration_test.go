package hostlink_test

import (
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ratchanon22/hostlink/pkg/audit"
	"github.com/Ratchanon22/hostlink/pkg/connection"
	"github.com/Ratchanon22/hostlink/pkg/dio"
	"github.com/Ratchanon22/hostlink/pkg/disconnect"
	"github.com/Ratchanon22/hostlink/pkg/discovery"
	"github.com/Ratchanon22/hostlink/pkg/log"
	"github.com/Ratchanon22/hostlink/pkg/transport"
)

// e2eConfig keeps the heartbeat fast enough for a test run.
func e2eConfig() connection.Config {
	return connection.Config{
		ConnectTimeout: time.Second,
		Heartbeat: transport.HeartbeatConfig{
			Payload:          transport.DefaultHeartbeat,
			BufferSize:       transport.DefaultBufferSize,
			Interval:         20 * time.Millisecond,
			OperationTimeout: 200 * time.Millisecond,
		},
		RetryDelay: 20 * time.Millisecond,
	}
}

type e2eFixture struct {
	responder *transport.Responder
	backend   *dio.Simulated
	auditPath string

	mu      sync.Mutex
	states  []connection.State
	drops   []connection.Disconnect
	stateCh chan connection.State
}

func newE2EFixture(t *testing.T) *e2eFixture {
	t.Helper()

	f := &e2eFixture{
		responder: transport.NewResponder(transport.ResponderConfig{Address: "127.0.0.1:0"}),
		backend:   dio.NewSimulated(zerolog.Nop()),
		auditPath: filepath.Join(t.TempDir(), "disconnect_log.txt"),
		stateCh:   make(chan connection.State, 64),
	}
	if err := f.responder.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start responder: %v", err)
	}
	t.Cleanup(func() { _ = f.responder.Stop() })
	return f
}

func (f *e2eFixture) endpoint() transport.Endpoint {
	addr := f.responder.Addr().(*net.TCPAddr)
	return transport.Endpoint{Address: "127.0.0.1", Port: addr.Port}
}

func (f *e2eFixture) run(t *testing.T, ctx context.Context, opts ...connection.Option) <-chan error {
	t.Helper()

	opts = append([]connection.Option{
		connection.WithConfig(e2eConfig()),
		connection.WithAuditWriter(audit.NewFileWriter(f.auditPath)),
		connection.OnStateChange(func(_, newState connection.State) {
			f.mu.Lock()
			f.states = append(f.states, newState)
			f.mu.Unlock()
			select {
			case f.stateCh <- newState:
			default:
			}
		}),
		connection.OnDisconnect(func(d connection.Disconnect) {
			f.mu.Lock()
			f.drops = append(f.drops, d)
			f.mu.Unlock()
		}),
	}, opts...)

	done := make(chan error, 1)
	go func() {
		done <- connection.Run(ctx, f.endpoint(), f.backend, opts...)
	}()
	return done
}

func (f *e2eFixture) waitState(t *testing.T, want connection.State) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-f.stateCh:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for state %s", want)
		}
	}
}

// waitFailsafe waits until the fail-safe output has been written with want.
func (f *e2eFixture) waitFailsafe(t *testing.T, want bool) {
	t.Helper()
	waitFor(t, func() bool {
		state, written := f.backend.Output(dio.FailsafeChannel)
		return written && state == want
	}, "Fail-safe output never reached the expected level")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

// TestE2E_DeviceDropAndRecover exercises a full drop cycle: the device
// closes the link, the fail-safe asserts, the drop is audited and the
// supervisor reconnects and clears the output again.
func TestE2E_DeviceDropAndRecover(t *testing.T) {
	f := newE2EFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := f.run(t, ctx)

	f.waitState(t, connection.StateConnected)
	f.waitFailsafe(t, false)
	waitFor(t, func() bool { return f.responder.ConnectionCount() == 1 }, "Responder never saw the connection")

	if n := f.responder.CloseAll(); n != 1 {
		t.Fatalf("Expected to close 1 connection, closed %d", n)
	}

	f.waitState(t, connection.StateAttemptingConnect)
	f.waitState(t, connection.StateConnected)
	f.waitFailsafe(t, false)
	if writes := f.backend.Writes(); writes < 3 {
		t.Fatalf("Expected clear, assert and clear writes, got %d", writes)
	}

	result, err := audit.ReadFile(f.auditPath, audit.Filter{})
	if err != nil {
		t.Fatalf("Failed to read audit file: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(result.Records))
	}
	if result.Records[0].Reason != disconnect.DeviceClosed {
		t.Errorf("Expected DeviceClosed, got %s", result.Records[0].Reason)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Unexpected run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Supervisor did not stop after cancel")
	}
}

// TestE2E_ResetIsDeviceClosed checks that an aborted connection is
// classified the same as a graceful close.
func TestE2E_ResetIsDeviceClosed(t *testing.T) {
	f := newE2EFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	f.waitState(t, connection.StateConnected)
	f.responder.SetMode(transport.ModeReset)
	f.waitState(t, connection.StateAttemptingConnect)
	f.responder.SetMode(transport.ModeAck)
	f.waitState(t, connection.StateConnected)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.drops) == 0 {
		t.Fatal("Expected at least one disconnect")
	}
	if d := f.drops[0]; d.Reason != disconnect.DeviceClosed || !d.WasConnected {
		t.Errorf("Expected connected DeviceClosed drop, got %+v", d)
	}
}

// TestE2E_MutedDeviceKeepsLink checks that unanswered heartbeats time out
// without dropping the connection.
func TestE2E_MutedDeviceKeepsLink(t *testing.T) {
	f := newE2EFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	f.waitState(t, connection.StateConnected)
	f.waitFailsafe(t, false)
	f.responder.SetMode(transport.ModeMute)
	time.Sleep(3 * e2eConfig().Heartbeat.OperationTimeout)

	f.mu.Lock()
	drops := len(f.drops)
	f.mu.Unlock()
	if drops != 0 {
		t.Fatalf("Expected no disconnects while muted, got %d", drops)
	}
	if state, _ := f.backend.Output(dio.FailsafeChannel); state {
		t.Fatal("Fail-safe should stay cleared while muted")
	}
}

// TestE2E_EventCapture records a session to a capture file and reads it
// back.
func TestE2E_EventCapture(t *testing.T) {
	f := newE2EFixture(t)
	path := filepath.Join(t.TempDir(), "link.clog")

	fl, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("Failed to open capture file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := f.run(t, ctx, connection.WithEventLogger(fl))

	f.waitState(t, connection.StateConnected)
	time.Sleep(5 * e2eConfig().Heartbeat.Interval)
	cancel()
	<-done
	if err := fl.Close(); err != nil {
		t.Fatalf("Failed to close capture file: %v", err)
	}

	r, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer r.Close()

	counts := map[log.Category]int{}
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		counts[e.Category]++
	}

	if counts[log.CategoryMessage] < 2 {
		t.Errorf("Expected heartbeat frames in capture, got %d", counts[log.CategoryMessage])
	}
	if counts[log.CategoryState] == 0 {
		t.Error("Expected state events in capture")
	}
	if counts[log.CategoryOutput] == 0 {
		t.Error("Expected output events in capture")
	}
}

// TestE2E_Discovery resolves an advertised responder over mDNS and
// supervises it.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	f := newE2EFixture(t)
	port := f.responder.Addr().(*net.TCPAddr).Port

	adv, err := discovery.Advertise("hostlink-e2e", port, discovery.TXTRecordMap{
		discovery.TXTKeyAck: f.responder.Ack(),
	})
	if err != nil {
		t.Skipf("mDNS not available: %v", err)
	}
	defer adv.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ep, err := discovery.Resolve(ctx, "hostlink-e2e")
	if err != nil {
		t.Skipf("mDNS resolve failed: %v", err)
	}
	if ep.Port != port {
		t.Fatalf("Expected port %d, got %d", port, ep.Port)
	}
}
