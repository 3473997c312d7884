package kl200

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEndpoint replies with queued responses, one per Read.
type testEndpoint struct {
	written   bytes.Buffer
	responses [][]byte
	writeErr  error
	closed    bool
}

func (e *testEndpoint) Read(p []byte) (int, error) {
	if len(e.responses) == 0 {
		return 0, nil
	}
	n := copy(p, e.responses[0])
	e.responses = e.responses[1:]
	return n, nil
}

func (e *testEndpoint) Write(p []byte) (int, error) {
	if e.writeErr != nil {
		return 0, e.writeErr
	}
	return e.written.Write(p)
}

func (e *testEndpoint) Close() error {
	e.closed = true
	return nil
}

func (e *testEndpoint) reply(f Frame) *testEndpoint {
	e.responses = append(e.responses, f[:])
	return e
}

func TestSessionConfigCommands(t *testing.T) {
	testCases := []struct {
		name   string
		call   func(*Session) error
		expect Command
	}{
		{"reset hard", func(s *Session) error { return s.RestoreFactorySettings(true) }, RestoreFactory(true)},
		{"reset soft", func(s *Session) error { return s.RestoreFactorySettings(false) }, RestoreFactory(false)},
		{"address", func(s *Session) error { return s.ChangeAddress(0x1234) }, Command{ID: CmdChangeAddress, Params: [3]byte{0x12, 0x34}}},
		{"address max", func(s *Session) error { return s.ChangeAddress(0xfffe) }, Command{ID: CmdChangeAddress, Params: [3]byte{0xff, 0xfe}}},
		{"baud", func(s *Session) error { return s.ChangeBaudRate(9) }, Command{ID: CmdChangeBaudRate, Params: [3]byte{9}}},
		{"upload auto", func(s *Session) error { return s.SetUploadMode(true) }, Command{ID: CmdSetUploadMode, Params: [3]byte{1}}},
		{"upload query", func(s *Session) error { return s.SetUploadMode(false) }, Command{ID: CmdSetUploadMode}},
		{"interval min", func(s *Session) error { return s.SetUploadInterval(1) }, Command{ID: CmdSetUploadInterval, Params: [3]byte{1}}},
		{"interval max", func(s *Session) error { return s.SetUploadInterval(100) }, Command{ID: CmdSetUploadInterval, Params: [3]byte{100}}},
		{"led", func(s *Session) error { return s.SetLEDMode(3) }, Command{ID: CmdSetLEDMode, Params: [3]byte{3}}},
		{"relay", func(s *Session) error { return s.SetRelayMode(1) }, Command{ID: CmdSetRelayMode, Params: [3]byte{1}}},
		{"comm", func(s *Session) error { return s.SetCommunicationMode(0) }, Command{ID: CmdSetCommunicationMode}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ep := &testEndpoint{}
			s := NewSession(ep)
			require.NoError(t, tc.call(s))
			f := tc.expect.Frame()
			require.Equal(t, f[:], ep.written.Bytes())
			require.False(t, s.Available())
		})
	}
}

func TestSessionRangeGuards(t *testing.T) {
	testCases := []struct {
		name string
		call func(*Session) error
	}{
		{"interval 0", func(s *Session) error { return s.SetUploadInterval(0) }},
		{"interval 101", func(s *Session) error { return s.SetUploadInterval(101) }},
		{"led 4", func(s *Session) error { return s.SetLEDMode(4) }},
		{"relay 2", func(s *Session) error { return s.SetRelayMode(2) }},
		{"comm 2", func(s *Session) error { return s.SetCommunicationMode(2) }},
		{"address ffff", func(s *Session) error { return s.ChangeAddress(0xffff) }},
		{"baud 10", func(s *Session) error { return s.ChangeBaudRate(10) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ep := &testEndpoint{}
			s := NewSession(ep)
			err := tc.call(s)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrParameterOutOfRange))
			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr))
			require.Zero(t, ep.written.Len())
		})
	}
}

func TestSessionWriteError(t *testing.T) {
	writeErr := errors.New("port gone")
	s := NewSession(&testEndpoint{writeErr: writeErr})
	require.Equal(t, writeErr, s.SetLEDMode(1))
	d, err := s.ReadDistanceErr()
	require.Equal(t, writeErr, err)
	require.Zero(t, d)
	require.False(t, s.Available())
}

func TestSessionReadDistance(t *testing.T) {
	ep := (&testEndpoint{}).reply(replyFrame(100))
	s := NewSession(ep)
	require.False(t, s.Available())

	require.Equal(t, uint16(100), s.ReadDistance())
	query := ReadDistance().Frame()
	require.Equal(t, query[:], ep.written.Bytes())

	require.True(t, s.Available())
	require.Equal(t, uint16(100), s.LastReceivedDistance())
	require.True(t, s.Available())
	require.Equal(t, uint16(100), s.Distance())
	require.False(t, s.Available())
	require.Equal(t, uint16(100), s.Distance())
	require.False(t, s.Available())
	require.Equal(t, uint16(100), s.LastReceivedDistance())
}

func TestSessionReadDistanceEndToEnd(t *testing.T) {
	resp := []byte{0x62, 0x33, 0x09, 0xff, 0xff, 0x00, 0x64, 0x00, 0x00}
	resp[8] = Checksum(resp[:8])
	ep := &testEndpoint{responses: [][]byte{resp}}
	s := NewSession(ep)
	s.ReadDistance()
	require.Equal(t, uint16(100), s.Distance())
}

func TestSessionReadDistanceDropped(t *testing.T) {
	good := replyFrame(100)
	corrupted := replyFrame(200)
	corrupted[8] ^= 0xff
	wrongID := EncodeFrame(CmdSetLEDMode, [3]byte{0, 200})

	testCases := []struct {
		name   string
		resp   []byte
		expect error
	}{
		{"no reply", nil, ErrShortRead},
		{"short reply", good[:5], ErrShortRead},
		{"corrupted checksum", corrupted[:], ErrChecksumMismatch},
		{"wrong command", wrongID[:], ErrMalformed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ep := (&testEndpoint{}).reply(good)
			s := NewSession(ep)
			require.Equal(t, uint16(100), s.ReadDistance())
			require.Equal(t, uint16(100), s.Distance())
			require.False(t, s.Available())

			if tc.resp != nil {
				ep.responses = append(ep.responses, tc.resp)
			}
			d, err := s.ReadDistanceErr()
			require.True(t, errors.Is(err, tc.expect), "got %v", err)
			require.Equal(t, uint16(100), d)
			require.False(t, s.Available())
			require.Equal(t, uint16(100), s.Distance())
			require.Equal(t, uint16(100), s.LastReceivedDistance())
		})
	}
}

func TestSessionClose(t *testing.T) {
	ep := &testEndpoint{}
	require.NoError(t, NewSession(ep).Close())
	require.True(t, ep.closed)

	var buf bytes.Buffer
	require.NoError(t, NewSession(&buf).Close())
}
