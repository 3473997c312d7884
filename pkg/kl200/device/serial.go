package device

import (
	"fmt"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// Mode converts the config into 8N1 serial mode.
func (c *Config) Mode() (*serial.Mode, error) {
	if c.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if _, ok := BaudRateCode(c.BaudRate); !ok {
		glog.Warningf("baud rate %d is not supported by KL200", c.BaudRate)
	}
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}, nil
}

// Opener opens a serial port, replaceable in tests.
type Opener func(path string, mode *serial.Mode) (Port, error)

// OpenPort is the Opener used by Open.
var OpenPort Opener = func(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Open opens and configures the serial port. The port is closed if
// configuration fails.
func Open(c *Config) (Port, error) {
	mode, err := c.Mode()
	if err != nil {
		return nil, &ConfigError{Path: c.Path, Op: "mode", Err: err}
	}
	port, err := OpenPort(c.Path, mode)
	if err != nil {
		return nil, &ConfigError{Path: c.Path, Op: "open", Err: err}
	}
	if c.ReadTimeout > 0 {
		if err = port.SetReadTimeout(c.ReadTimeout); err != nil {
			port.Close()
			return nil, &ConfigError{Path: c.Path, Op: "timeout", Err: err}
		}
	}
	glog.Infof("serial %s opened at %d baud", c.Path, c.BaudRate)
	return port, nil
}
