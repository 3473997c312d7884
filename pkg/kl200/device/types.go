// Package device opens the serial port a KL200 module is attached to.
package device

import (
	"fmt"
	"io"
	"time"
)

// Port is an opened serial port.
type Port interface {
	io.ReadWriteCloser
	// SetReadTimeout makes Read return with no data after the timeout.
	SetReadTimeout(time.Duration) error
}

// ConfigError indicates the port can't be opened or configured.
type ConfigError struct {
	Path string
	Op   string
	Err  error
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("serial %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// baudRates are the line speeds selected by KL200 baud rate codes.
var baudRates = [...]int{1200, 2400, 4800, 9600, 14400, 19200, 38400, 56000, 57600, 115200}

// DefaultBaudRate is the factory line speed of the module.
const DefaultBaudRate = 9600

// BaudRate returns the line speed for a baud rate code 0-9.
func BaudRate(code uint8) (int, bool) {
	if int(code) >= len(baudRates) {
		return 0, false
	}
	return baudRates[code], true
}

// BaudRateCode returns the code for a line speed.
func BaudRateCode(rate int) (uint8, bool) {
	for code, r := range baudRates {
		if r == rate {
			return uint8(code), true
		}
	}
	return 0, false
}
