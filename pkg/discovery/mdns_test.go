package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratchanon22/hostlink/pkg/transport"
)

func newEntry(instance string, port int, text []string, addrs ...string) *zeroconf.ServiceEntry {
	e := &zeroconf.ServiceEntry{}
	e.Instance = instance
	e.HostName = instance + ".local."
	e.Port = port
	e.Text = text
	for _, a := range addrs {
		ip := net.ParseIP(a)
		if ip.To4() != nil {
			e.AddrIPv4 = append(e.AddrIPv4, ip)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, ip)
		}
	}
	return e
}

func TestEntryToService(t *testing.T) {
	t.Run("Device", func(t *testing.T) {
		e := newEntry("press-line-3", 5000, []string{"ver=1", "ack=ACK", "model=NAV-8"},
			"fe80::1", "192.168.1.50")

		svc := entryToService(e)
		require.NotNil(t, svc)
		assert.Equal(t, "press-line-3", svc.Instance)
		assert.Equal(t, "press-line-3.local.", svc.Host)
		assert.Equal(t, 5000, svc.Port)
		assert.Equal(t, "ACK", svc.Ack)
		assert.Equal(t, "NAV-8", svc.Model)
		assert.Equal(t, []string{"192.168.1.50", "fe80::1"}, svc.Addresses)

		ep, err := svc.Endpoint()
		require.NoError(t, err)
		assert.Equal(t, transport.Endpoint{Address: "192.168.1.50", Port: 5000}, ep)
	})

	t.Run("NotHostlink", func(t *testing.T) {
		e := newEntry("printer", 631, []string{"rp=ipp"}, "192.168.1.9")
		assert.Nil(t, entryToService(e))
	})
}

func TestServiceEndpoint(t *testing.T) {
	t.Run("NoAddress", func(t *testing.T) {
		svc := &Service{DeviceInfo: DeviceInfo{Instance: "x", Port: 5000}}
		_, err := svc.Endpoint()
		assert.ErrorIs(t, err, ErrNoAddress)
	})

	t.Run("InvalidPortFallsBack", func(t *testing.T) {
		svc := &Service{
			DeviceInfo: DeviceInfo{Instance: "x", Port: 0},
			Addresses:  []string{"10.0.0.2"},
		}
		ep, err := svc.Endpoint()
		require.NoError(t, err)
		assert.Equal(t, transport.DefaultPort, ep.Port)
	})
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	merged := mergeAddresses([]string{"10.0.0.2"}, []string{"10.0.0.2", "fe80::2"})
	assert.Equal(t, []string{"10.0.0.2", "fe80::2"}, merged)

	left := removeAddresses(merged, newEntry("x", 5000, nil, "fe80::2"))
	assert.Equal(t, []string{"10.0.0.2"}, left)
}

func TestAdvertiserErrors(t *testing.T) {
	a := NewAdvertiser(AdvertiserConfig{Logger: zerolog.Nop()})

	assert.ErrorIs(t, a.Advertise(&DeviceInfo{}), ErrEmptyInstanceName)
	assert.ErrorIs(t, a.Update(&DeviceInfo{Instance: "missing"}), ErrNotFound)
	assert.ErrorIs(t, a.Stop("missing"), ErrNotFound)
	a.StopAll()
}

func TestAdvertiseRejectsEmptyInstance(t *testing.T) {
	_, err := Advertise("", 5000, nil)
	assert.ErrorIs(t, err, ErrEmptyInstanceName)
}

func TestWithVersion(t *testing.T) {
	txt := withVersion(TXTRecordMap{"ver": "", "ack": "OK"})
	assert.Equal(t, TXTRecordMap{"ver": ProtocolVersion, "ack": "OK"}, txt)

	txt = withVersion(TXTRecordMap{"ver": "2"})
	assert.Equal(t, "2", txt["ver"])
}

func TestResolveTimesOut(t *testing.T) {
	if testing.Short() {
		t.Skip("uses the network")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := Resolve(ctx, "no-such-hostlink-device")
	assert.ErrorIs(t, err, ErrNotFound)
}
