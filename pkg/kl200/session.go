package kl200

import (
	"io"

	"github.com/golang/glog"
)

// Endpoint is the byte stream connected to the module.
// Read is expected to return with no data after a timeout instead of
// blocking forever; this is configured on the stream (see package device).
type Endpoint interface {
	io.Reader
	io.Writer
}

// Session owns an Endpoint and keeps the latest distance.
// It's not safe for concurrent use: the protocol has no correlation id,
// so commands must be serialized by the caller.
type Session struct {
	ep Endpoint

	distance     uint16
	lastReceived uint16
	available    bool
}

// NewSession creates a Session over the endpoint.
func NewSession(ep Endpoint) *Session {
	return &Session{ep: ep}
}

// Endpoint gets the wrapped Endpoint.
func (s *Session) Endpoint() Endpoint {
	return s.ep
}

// Close releases the endpoint if it's an io.Closer.
func (s *Session) Close() error {
	if closer, ok := s.ep.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Send writes the command without waiting for a reply.
func (s *Session) Send(cmd Command) error {
	f := cmd.Frame()
	if glog.V(2) {
		glog.Infof("TX %s %s", cmd.ID, f)
	}
	_, err := f.WriteTo(s.ep)
	return err
}

func (s *Session) sendOrReject(cmd Command, err error) error {
	if err != nil {
		return err
	}
	return s.Send(cmd)
}

// RestoreFactorySettings resets the module, hard or soft.
func (s *Session) RestoreFactorySettings(hard bool) error {
	return s.Send(RestoreFactory(hard))
}

// ChangeAddress changes the module address, up to 0xFFFE.
// Frames are still sent to the broadcast address afterwards.
func (s *Session) ChangeAddress(addr uint16) error {
	return s.sendOrReject(ChangeAddress(addr))
}

// ChangeBaudRate changes the module baud rate with code 0-9.
// The local port speed must be changed separately.
func (s *Session) ChangeBaudRate(code uint8) error {
	return s.sendOrReject(ChangeBaudRate(code))
}

// SetUploadMode enables or disables automatic upload.
func (s *Session) SetUploadMode(auto bool) error {
	return s.Send(SetUploadMode(auto))
}

// SetUploadInterval sets the automatic upload interval, 1-100.
func (s *Session) SetUploadInterval(interval uint8) error {
	return s.sendOrReject(SetUploadInterval(interval))
}

// SetLEDMode sets LED mode, 0-3.
func (s *Session) SetLEDMode(mode uint8) error {
	return s.sendOrReject(SetLEDMode(mode))
}

// SetRelayMode sets relay mode, 0-1.
func (s *Session) SetRelayMode(mode uint8) error {
	return s.sendOrReject(SetRelayMode(mode))
}

// SetCommunicationMode sets communication mode, 0-1.
func (s *Session) SetCommunicationMode(mode uint8) error {
	return s.sendOrReject(SetCommunicationMode(mode))
}

// ReadDistance queries the distance and returns the latest validated
// value. A missing or invalid reply is silently dropped and the previous
// value is returned.
func (s *Session) ReadDistance() uint16 {
	d, _ := s.ReadDistanceErr()
	return d
}

// ReadDistanceErr is ReadDistance also reporting why a reply was dropped.
// State is updated exactly the same way as ReadDistance.
func (s *Session) ReadDistanceErr() (uint16, error) {
	if err := s.Send(ReadDistance()); err != nil {
		return s.distance, err
	}
	buf, err := ReadFrame(s.ep)
	if err != nil {
		return s.distance, err
	}
	f, err := DecodeFrame(CmdReadDistance, buf)
	if err != nil {
		glog.V(2).Infof("RX dropped %x: %v", buf, err)
		return s.distance, err
	}
	if glog.V(2) {
		glog.Infof("RX %s", f)
	}
	d := f.Distance()
	s.distance, s.lastReceived, s.available = d, d, true
	return d, nil
}

// Available indicates a new distance hasn't been consumed by Distance.
func (s *Session) Available() bool {
	return s.available
}

// Distance returns the latest validated distance (mm) and marks it consumed.
func (s *Session) Distance() uint16 {
	s.available = false
	return s.distance
}

// LastReceivedDistance returns the latest validated distance (mm)
// without consuming it.
func (s *Session) LastReceivedDistance() uint16 {
	return s.lastReceived
}
