package sensor

import (
	"flag"
	"time"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/kl200"
	"github.com/robotalks/kl200/pkg/kl200/device"
	env "github.com/robotalks/kl200/pkg/l1/env/controller"
)

// Config defines the configurations for the controller.
// Negative modes and zero interval leave the sensor setting unchanged.
type Config struct {
	PollInterval   time.Duration
	RetryInterval  time.Duration
	AutoUpload     bool
	UploadInterval int
	LEDMode        int
	RelayMode      int
	CommMode       int
	Verbose        bool
}

// Defaults
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultRetryInterval = time.Second
)

var defaultConfig = Config{
	PollInterval:  DefaultPollInterval,
	RetryInterval: DefaultRetryInterval,
	LEDMode:       -1,
	RelayMode:     -1,
	CommMode:      -1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.PollInterval, "poll-interval", defaultConfig.PollInterval, "Distance polling interval, 0 to disable.")
	flag.DurationVar(&defaultConfig.RetryInterval, "retry-interval", defaultConfig.RetryInterval, "Interval to retry opening the device.")
	flag.BoolVar(&defaultConfig.AutoUpload, "auto-upload", defaultConfig.AutoUpload, "Enable automatic upload on the sensor.")
	flag.IntVar(&defaultConfig.UploadInterval, "upload-interval", defaultConfig.UploadInterval, "Automatic upload interval 1-100, 0 to leave unchanged.")
	flag.IntVar(&defaultConfig.LEDMode, "led-mode", defaultConfig.LEDMode, "LED mode 0-3, -1 to leave unchanged.")
	flag.IntVar(&defaultConfig.RelayMode, "relay-mode", defaultConfig.RelayMode, "Relay mode 0-1, -1 to leave unchanged.")
	flag.IntVar(&defaultConfig.CommMode, "comm-mode", defaultConfig.CommMode, "Communication mode 0-1, -1 to leave unchanged.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Log every distance reading.")
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

// NewController creates a controller using the config and the device
// config.
func (c *Config) NewController(e *env.Env, dev *device.Config) *Controller {
	ctl := NewController(e)
	ctl.Config = *c
	ctl.Device = *dev
	return ctl
}

// Validate checks the sensor settings before anything is sent.
func (c *Config) Validate() error {
	var errs fx.AggregatedError
	if c.UploadInterval != 0 {
		errs.Add(checkRange(kl200.CmdSetUploadInterval, c.UploadInterval, kl200.MinUploadInterval, kl200.MaxUploadInterval))
	}
	if c.LEDMode >= 0 {
		errs.Add(checkRange(kl200.CmdSetLEDMode, c.LEDMode, 0, kl200.MaxLEDMode))
	}
	if c.RelayMode >= 0 {
		errs.Add(checkRange(kl200.CmdSetRelayMode, c.RelayMode, 0, kl200.MaxRelayMode))
	}
	if c.CommMode >= 0 {
		errs.Add(checkRange(kl200.CmdSetCommunicationMode, c.CommMode, 0, kl200.MaxCommMode))
	}
	return errs.Aggregate()
}

func checkRange(id kl200.CommandID, val int, min, max uint8) error {
	if val < int(min) || val > int(max) {
		return &kl200.RangeError{Command: id, Value: int64(val), Min: uint32(min), Max: uint32(max)}
	}
	return nil
}
