package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		port     int
		want     int
		fallback bool
	}{
		{"valid", 6000, 6000, false},
		{"max", 65535, 65535, false},
		{"one", 1, 1, false},
		{"zero", 0, DefaultPort, true},
		{"negative", -1, DefaultPort, true},
		{"too large", 99999, DefaultPort, true},
		{"just over", 65536, DefaultPort, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, fallback := NewEndpoint("192.168.1.10", tt.port)
			assert.Equal(t, tt.want, ep.Port)
			assert.Equal(t, tt.fallback, fallback)
			assert.Equal(t, "192.168.1.10", ep.Address)
		})
	}
}

func TestEndpointString(t *testing.T) {
	assert.Equal(t, "127.0.0.1:5000", Endpoint{Address: "127.0.0.1", Port: 5000}.String())
	assert.Equal(t, "[::1]:5000", Endpoint{Address: "::1", Port: 5000}.String())
}
