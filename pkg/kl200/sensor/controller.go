// Package sensor runs a KL200 module as an L1 controller: the distance is
// polled in the loop and published as events, and remote commands
// configure the module.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/kl200"
	"github.com/robotalks/kl200/pkg/kl200/device"
	"github.com/robotalks/kl200/pkg/kl200/msgs"
	"github.com/robotalks/kl200/pkg/l1"
	env "github.com/robotalks/kl200/pkg/l1/env/controller"
	l1msgs "github.com/robotalks/kl200/pkg/l1/msgs"
)

// ErrNotConnected indicates the device is not opened yet.
var ErrNotConnected = errors.New("sensor not connected")

// Opener opens the endpoint of the sensor.
type Opener func(conf *device.Config) (kl200.Endpoint, error)

// OpenDevice is the default Opener using the serial port.
func OpenDevice(conf *device.Config) (kl200.Endpoint, error) {
	return conf.Open()
}

// Controller owns a kl200.Session. All session access happens on the
// loop goroutine, so polling and remote commands never interleave on
// the wire.
type Controller struct {
	Env    *env.Env
	Config Config
	Device device.Config
	Open   Opener

	session  *kl200.Session
	reopenCh chan device.Config
	nextPoll time.Time
	status   msgs.SensorStatus
}

// NewController creates a Controller.
func NewController(e *env.Env) *Controller {
	return &Controller{
		Env:      e,
		Config:   defaultConfig,
		Device:   *device.Default(),
		Open:     OpenDevice,
		reopenCh: make(chan device.Config, 1),
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c)
	loop.AddController(fx.PrLvSense, fx.ControlFunc(c.poll))
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.publish))
}

// Run implements Runnable. It opens the device, and reopens it when
// requested by the loop, until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	var ep kl200.Endpoint
	defer func() {
		closeEndpoint(ep)
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	conf := c.Device
	openTimer := time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case conf = <-c.reopenCh:
			closeEndpoint(ep)
			ep = nil
			openTimer = time.After(0)
		case <-openTimer:
			openTimer = nil
			var err error
			if ep, err = c.Open(&conf); err != nil {
				glog.Warningf("open %s: %v", conf.Path, err)
				openTimer = time.After(c.retryInterval())
				continue
			}
			glog.Infof("sensor %s opened at %d baud", conf.Path, conf.BaudRate)
			loopCtl.PostMessage(&endpointMsg{ep: ep, conf: conf})
			loopCtl.TriggerNext()
		}
	}
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *endpointMsg:
			mctx.MessageTaken()
			if err := c.attach(cc.Time(), msg); err != nil {
				glog.Warningf("sensor setup: %v", err)
			}
		case *l1.CommandMsg:
			if reply := c.handleCommand(msg.Command.Msg()); reply != nil {
				mctx.MessageTaken()
				if err := msg.Command.Done(reply); err != nil {
					glog.Warningf("reply %T: %v", reply, err)
				}
			}
		}
	}))
	return nil
}

// Status returns a snapshot of the sensor status.
func (c *Controller) Status() *msgs.SensorStatus {
	status := c.status
	if s := c.session; s != nil {
		status.Available = s.Available()
	}
	return &status
}

func (c *Controller) retryInterval() time.Duration {
	if c.Config.RetryInterval > 0 {
		return c.Config.RetryInterval
	}
	return DefaultRetryInterval
}

func (c *Controller) attach(now time.Time, msg *endpointMsg) error {
	c.session = kl200.NewSession(msg.ep)
	c.status.Device = msg.conf.Path
	c.status.BaudRate = uint32(msg.conf.BaudRate)
	c.nextPoll = now
	return c.setup()
}

// setup applies the configured settings right after the device is opened.
func (c *Controller) setup() error {
	conf := &c.Config
	if err := conf.Validate(); err != nil {
		return err
	}
	steps := []fx.Message{&msgs.SetUploadMode{Auto: conf.AutoUpload}}
	if conf.UploadInterval != 0 {
		steps = append(steps, &msgs.SetUploadInterval{Interval: uint32(conf.UploadInterval)})
	}
	if conf.LEDMode >= 0 {
		steps = append(steps, &msgs.SetLEDMode{Mode: uint32(conf.LEDMode)})
	}
	if conf.RelayMode >= 0 {
		steps = append(steps, &msgs.SetRelayMode{Mode: uint32(conf.RelayMode)})
	}
	if conf.CommMode >= 0 {
		steps = append(steps, &msgs.SetCommMode{Mode: uint32(conf.CommMode)})
	}
	var errs fx.AggregatedError
	for _, step := range steps {
		if c.session == nil {
			break
		}
		if err := c.configure(step); err != nil {
			errs.Add(fmt.Errorf("%T: %w", step, err))
		}
	}
	return errs.Aggregate()
}

func (c *Controller) poll(cc fx.ControlContext) error {
	if c.session == nil || c.Config.PollInterval <= 0 {
		return nil
	}
	now := cc.Time()
	if now.Before(c.nextPoll) {
		return nil
	}
	c.nextPoll = now.Add(c.Config.PollInterval)
	c.readDistance()
	return nil
}

func (c *Controller) readDistance() error {
	s := c.session
	c.status.Polls++
	d, err := s.ReadDistanceErr()
	c.status.Distance = uint32(d)
	c.status.LastReceived = uint32(s.LastReceivedDistance())
	if err != nil {
		c.status.Dropped++
		if isFrameError(err) {
			glog.V(2).Infof("distance dropped: %v", err)
		} else {
			c.linkFailed(err)
		}
	}
	return err
}

func (c *Controller) publish(cc fx.ControlContext) error {
	if c.session == nil || !c.session.Available() {
		return nil
	}
	ev := &msgs.DistanceEvent{
		Distance:     uint32(c.session.Distance()),
		LastReceived: uint32(c.session.LastReceivedDistance()),
	}
	if c.Config.Verbose {
		glog.Infof("distance %d mm", ev.Distance)
	}
	return c.Env.Registrar.SendEvent(cc.Context(), ev)
}

// linkFailed drops the session and asks Run to reopen the device.
func (c *Controller) linkFailed(err error) {
	glog.Warningf("sensor link failed: %v", err)
	c.reopen(c.Device)
}

func (c *Controller) reopen(conf device.Config) {
	c.session = nil
	c.Device = conf
	select {
	case c.reopenCh <- conf:
	default:
		// replace the pending request.
		select {
		case <-c.reopenCh:
		default:
		}
		c.reopenCh <- conf
	}
}

func (c *Controller) handleCommand(msg fx.Message) fx.Message {
	switch m := msg.(type) {
	case *msgs.StatusQuery:
		return &msgs.StatusReply{Status: c.Status()}
	case *msgs.ReadDistance:
		if c.session == nil {
			return l1msgs.NewCommandErr(ErrNotConnected)
		}
		err := c.readDistance()
		reply := &msgs.DistanceReply{
			Distance:     c.status.Distance,
			LastReceived: c.status.LastReceived,
			Valid:        err == nil,
		}
		if err != nil && !isFrameError(err) {
			return l1msgs.NewCommandErr(err)
		}
		return reply
	case *msgs.RestoreFactory, *msgs.ChangeAddress, *msgs.ChangeBaudRate,
		*msgs.SetUploadMode, *msgs.SetUploadInterval, *msgs.SetLEDMode,
		*msgs.SetRelayMode, *msgs.SetCommMode:
		if c.session == nil {
			return l1msgs.NewCommandErr(ErrNotConnected)
		}
		if err := c.configure(m); err != nil {
			return l1msgs.NewCommandErr(err)
		}
		return l1msgs.NewCommandOK()
	}
	return nil
}

// configure sends a configuration command and records the setting.
func (c *Controller) configure(msg fx.Message) error {
	s := c.session
	var err error
	switch m := msg.(type) {
	case *msgs.RestoreFactory:
		if err = s.RestoreFactorySettings(!m.Soft); err == nil {
			c.status.AutoUpload, c.status.UploadInterval = false, 0
			c.status.LedMode, c.status.RelayMode, c.status.CommMode = 0, 0, 0
		}
	case *msgs.ChangeAddress:
		var addr uint16
		if addr, err = toUint16(kl200.CmdChangeAddress, m.Address, kl200.MaxAddress); err == nil {
			if err = s.ChangeAddress(addr); err == nil {
				c.status.Address = m.Address
			}
		}
	case *msgs.ChangeBaudRate:
		var code uint8
		if code, err = toUint8(kl200.CmdChangeBaudRate, m.Code, 0, kl200.MaxBaudRateCode); err == nil {
			if err = s.ChangeBaudRate(code); err == nil {
				conf := c.Device
				conf.BaudRate, _ = device.BaudRate(code)
				glog.Infof("sensor baud rate changed to %d, reopening", conf.BaudRate)
				c.reopen(conf)
				return nil
			}
		}
	case *msgs.SetUploadMode:
		if err = s.SetUploadMode(m.Auto); err == nil {
			c.status.AutoUpload = m.Auto
		}
	case *msgs.SetUploadInterval:
		var val uint8
		if val, err = toUint8(kl200.CmdSetUploadInterval, m.Interval, kl200.MinUploadInterval, kl200.MaxUploadInterval); err == nil {
			if err = s.SetUploadInterval(val); err == nil {
				c.status.UploadInterval = m.Interval
			}
		}
	case *msgs.SetLEDMode:
		var val uint8
		if val, err = toUint8(kl200.CmdSetLEDMode, m.Mode, 0, kl200.MaxLEDMode); err == nil {
			if err = s.SetLEDMode(val); err == nil {
				c.status.LedMode = m.Mode
			}
		}
	case *msgs.SetRelayMode:
		var val uint8
		if val, err = toUint8(kl200.CmdSetRelayMode, m.Mode, 0, kl200.MaxRelayMode); err == nil {
			if err = s.SetRelayMode(val); err == nil {
				c.status.RelayMode = m.Mode
			}
		}
	case *msgs.SetCommMode:
		var val uint8
		if val, err = toUint8(kl200.CmdSetCommunicationMode, m.Mode, 0, kl200.MaxCommMode); err == nil {
			if err = s.SetCommunicationMode(val); err == nil {
				c.status.CommMode = m.Mode
			}
		}
	default:
		return l1msgs.ErrUnsupportedCommand
	}
	if err != nil && !errors.Is(err, kl200.ErrParameterOutOfRange) {
		c.linkFailed(err)
	}
	return err
}

func toUint8(id kl200.CommandID, val uint32, min, max uint8) (uint8, error) {
	if val < uint32(min) || val > uint32(max) {
		return 0, &kl200.RangeError{Command: id, Value: int64(val), Min: uint32(min), Max: uint32(max)}
	}
	return uint8(val), nil
}

func toUint16(id kl200.CommandID, val uint32, max uint16) (uint16, error) {
	if val > uint32(max) {
		return 0, &kl200.RangeError{Command: id, Value: int64(val), Max: uint32(max)}
	}
	return uint16(val), nil
}

// isFrameError reports a reply was dropped while the link is fine.
func isFrameError(err error) bool {
	return errors.Is(err, kl200.ErrShortRead) ||
		errors.Is(err, kl200.ErrMalformed) ||
		errors.Is(err, kl200.ErrChecksumMismatch)
}

func closeEndpoint(ep kl200.Endpoint) {
	if ep == nil {
		return
	}
	closer, ok := ep.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		glog.Warningf("close sensor: %v", err)
	}
}

type endpointMsg struct {
	ep   kl200.Endpoint
	conf device.Config
}

func (m *endpointMsg) NewMessage() fx.Message { return &endpointMsg{} }
