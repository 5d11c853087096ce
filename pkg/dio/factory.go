package dio

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaudRate is used when Settings.BaudRate is zero.
const DefaultBaudRate = 115200

// Settings selects and configures a backend.
type Settings struct {
	// Simulated selects the in-memory backend.
	Simulated bool

	// DevicePort is the serial port of the I/O board (e.g. /dev/ttyUSB0).
	DevicePort string

	// BaudRate of the serial link.
	BaudRate int

	// ReplyTimeout bounds each device request.
	ReplyTimeout time.Duration
}

// ErrNoDevicePort is returned when hardware I/O is selected without a port.
var ErrNoDevicePort = errors.New("no device port configured")

// New creates the backend described by settings.
func New(settings Settings, logger zerolog.Logger) (Backend, error) {
	if settings.Simulated {
		logger.Info().Msg("using simulated I/O")
		return NewSimulated(logger), nil
	}

	if settings.DevicePort == "" {
		return nil, ErrNoDevicePort
	}
	baud := settings.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	dev, err := OpenSerial(settings.DevicePort, baud, settings.ReplyTimeout)
	if err != nil {
		return nil, fmt.Errorf("hardware I/O: %w", err)
	}
	logger.Info().Str("port", settings.DevicePort).Int("baud", baud).Msg("using hardware I/O")
	return NewBitmapped(dev, settings.DevicePort, logger), nil
}
