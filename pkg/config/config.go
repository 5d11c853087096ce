// Package config loads the hostlink configuration file.
//
// The file is YAML. Since YAML is a superset of JSON, an appsettings.json
// with the same section names is accepted unchanged:
//
//	{
//	  "DeviceConnection": { "IpAddress": "192.168.1.50", "Port": 5000 },
//	  "IOSettings": { "UseMockIO": true }
//	}
//
// Durations are Go duration strings such as "10s" or "250ms".
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ratchanon22/hostlink/pkg/audit"
	"github.com/Ratchanon22/hostlink/pkg/connection"
	"github.com/Ratchanon22/hostlink/pkg/dio"
	"github.com/Ratchanon22/hostlink/pkg/transport"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "appsettings.json"

// Validation errors.
var (
	ErrNoDevice        = errors.New("device address or service name is required")
	ErrNegativeTimeout = errors.New("durations must not be negative")
	ErrBufferSize      = errors.New("buffer size must be positive")
	ErrEmptyHeartbeat  = errors.New("heartbeat payload must not be empty")
)

// DeviceConnection locates the supervised device.
type DeviceConnection struct {
	IpAddress string `yaml:"IpAddress"`
	Port      int    `yaml:"Port"`

	// ServiceName is resolved over mDNS when IpAddress is empty.
	ServiceName string `yaml:"ServiceName"`
}

// SimulatorConnection configures the echo responder.
type SimulatorConnection struct {
	IpAddress string `yaml:"IpAddress"`
	Port      int    `yaml:"Port"`
	Ack       string `yaml:"Ack"`
}

// IOSettings selects the digital I/O backend.
type IOSettings struct {
	UseMockIO    bool          `yaml:"UseMockIO"`
	DevicePort   string        `yaml:"DevicePort"`
	BaudRate     int           `yaml:"BaudRate"`
	ReplyTimeout time.Duration `yaml:"ReplyTimeout"`
}

// Supervisor holds link timing.
type Supervisor struct {
	ConnectTimeout    time.Duration `yaml:"ConnectTimeout"`
	OperationTimeout  time.Duration `yaml:"OperationTimeout"`
	HeartbeatInterval time.Duration `yaml:"HeartbeatInterval"`
	RetryDelay        time.Duration `yaml:"RetryDelay"`
	MaxRetryDelay     time.Duration `yaml:"MaxRetryDelay"`
	Heartbeat         string        `yaml:"Heartbeat"`
	BufferSize        int           `yaml:"BufferSize"`
}

// Audit configures the disconnect audit file.
type Audit struct {
	Path string `yaml:"Path"`

	// Echo mirrors every audit line to the console.
	Echo bool `yaml:"Echo"`
}

// EventLog configures link-event capture. Empty Path disables it.
type EventLog struct {
	Path string `yaml:"Path"`
}

// Metrics configures the Prometheus listener. Empty Address disables it.
type Metrics struct {
	Address string `yaml:"Address"`
}

// Logging configures operational logs.
type Logging struct {
	Level string `yaml:"Level"`
	JSON  bool   `yaml:"JSON"`
}

// Config is the root configuration.
type Config struct {
	DeviceConnection    DeviceConnection    `yaml:"DeviceConnection"`
	SimulatorConnection SimulatorConnection `yaml:"SimulatorConnection"`
	IOSettings          IOSettings          `yaml:"IOSettings"`
	Supervisor          Supervisor          `yaml:"Supervisor"`
	Audit               Audit               `yaml:"Audit"`
	EventLog            EventLog            `yaml:"EventLog"`
	Metrics             Metrics             `yaml:"Metrics"`
	Logging             Logging             `yaml:"Logging"`

	// Source is the file the configuration was read from, empty when
	// only defaults apply.
	Source string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DeviceConnection: DeviceConnection{
			Port: transport.DefaultPort,
		},
		SimulatorConnection: SimulatorConnection{
			Port: transport.DefaultPort,
			Ack:  transport.DefaultAck,
		},
		IOSettings: IOSettings{
			UseMockIO:    true,
			BaudRate:     dio.DefaultBaudRate,
			ReplyTimeout: dio.DefaultReplyTimeout,
		},
		Supervisor: Supervisor{
			ConnectTimeout:    transport.DefaultConnectTimeout,
			OperationTimeout:  transport.DefaultOperationTimeout,
			HeartbeatInterval: transport.DefaultHeartbeatInterval,
			RetryDelay:        connection.DefaultRetryDelay,
			Heartbeat:         transport.DefaultHeartbeat,
			BufferSize:        transport.DefaultBufferSize,
		},
		Audit: Audit{
			Path: audit.DefaultPath,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are returned with an empty Source.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	cleanPath := filepath.Clean(path)
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err = Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", cleanPath, err)
	}
	cfg.Source = cleanPath
	return cfg, nil
}

// Parse decodes data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.FillMissingDefaults()
	return cfg, nil
}

// FillMissingDefaults replaces zero values that have a default. A port of
// zero is left alone so Endpoint can report the fallback.
func (c *Config) FillMissingDefaults() {
	d := Default()

	if c.SimulatorConnection.Ack == "" {
		c.SimulatorConnection.Ack = d.SimulatorConnection.Ack
	}
	if c.IOSettings.BaudRate <= 0 {
		c.IOSettings.BaudRate = d.IOSettings.BaudRate
	}
	if c.IOSettings.ReplyTimeout == 0 {
		c.IOSettings.ReplyTimeout = d.IOSettings.ReplyTimeout
	}

	s := &c.Supervisor
	if s.ConnectTimeout == 0 {
		s.ConnectTimeout = d.Supervisor.ConnectTimeout
	}
	if s.OperationTimeout == 0 {
		s.OperationTimeout = d.Supervisor.OperationTimeout
	}
	if s.HeartbeatInterval == 0 {
		s.HeartbeatInterval = d.Supervisor.HeartbeatInterval
	}
	if s.RetryDelay == 0 {
		s.RetryDelay = d.Supervisor.RetryDelay
	}
	if s.Heartbeat == "" {
		s.Heartbeat = d.Supervisor.Heartbeat
	}
	if s.BufferSize == 0 {
		s.BufferSize = d.Supervisor.BufferSize
	}

	if c.Audit.Path == "" {
		c.Audit.Path = d.Audit.Path
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// Validate reports values that cannot fall back to a default.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DeviceConnection.IpAddress) == "" &&
		strings.TrimSpace(c.DeviceConnection.ServiceName) == "" {
		return ErrNoDevice
	}

	s := c.Supervisor
	for _, d := range []time.Duration{
		s.ConnectTimeout, s.OperationTimeout, s.HeartbeatInterval,
		s.RetryDelay, s.MaxRetryDelay, c.IOSettings.ReplyTimeout,
	} {
		if d < 0 {
			return ErrNegativeTimeout
		}
	}
	if s.BufferSize <= 0 {
		return ErrBufferSize
	}
	if s.Heartbeat == "" {
		return ErrEmptyHeartbeat
	}
	if !c.IOSettings.UseMockIO && c.IOSettings.DevicePort == "" {
		return dio.ErrNoDevicePort
	}
	return nil
}

// Endpoint returns the device endpoint. fallback reports that the
// configured port was out of range and transport.DefaultPort was used.
func (c Config) Endpoint() (ep transport.Endpoint, fallback bool) {
	return transport.NewEndpoint(c.DeviceConnection.IpAddress, c.DeviceConnection.Port)
}

// ListenAddress returns the responder's host:port before the bind probe.
func (c Config) ListenAddress() (ip string, port int) {
	return c.SimulatorConnection.IpAddress, c.SimulatorConnection.Port
}

// SupervisorConfig converts the Supervisor section.
func (c Config) SupervisorConfig() connection.Config {
	s := c.Supervisor
	return connection.Config{
		ConnectTimeout: s.ConnectTimeout,
		Heartbeat: transport.HeartbeatConfig{
			Payload:          s.Heartbeat,
			OperationTimeout: s.OperationTimeout,
			Interval:         s.HeartbeatInterval,
			BufferSize:       s.BufferSize,
		},
		RetryDelay:    s.RetryDelay,
		MaxRetryDelay: s.MaxRetryDelay,
	}
}

// DIOSettings converts the IOSettings section for dio.New.
func (c Config) DIOSettings() dio.Settings {
	return dio.Settings{
		Simulated:    c.IOSettings.UseMockIO,
		DevicePort:   c.IOSettings.DevicePort,
		BaudRate:     c.IOSettings.BaudRate,
		ReplyTimeout: c.IOSettings.ReplyTimeout,
	}
}
