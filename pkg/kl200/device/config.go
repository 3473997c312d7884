package device

import (
	"flag"
	"os"
	"time"
)

// Config defines how the serial port is opened.
type Config struct {
	Path        string
	BaudRate    int
	ReadTimeout time.Duration
}

// DefaultReadTimeout is how long a read waits for a reply.
const DefaultReadTimeout = 500 * time.Millisecond

var defaultConfig = Config{
	Path:        "/dev/ttyUSB0",
	BaudRate:    DefaultBaudRate,
	ReadTimeout: DefaultReadTimeout,
}

func init() {
	if val := os.Getenv("KL200_DEVICE"); val != "" {
		defaultConfig.Path = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Path, "device", defaultConfig.Path, "Serial port the sensor is attached to.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial port baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Timeout waiting for a reply.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the port using the config.
func (c *Config) Open() (Port, error) {
	return Open(c)
}
