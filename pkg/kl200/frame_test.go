package kl200

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func replyFrame(distance uint16) Frame {
	return EncodeFrame(CmdReadDistance, [3]byte{byte(distance >> 8), byte(distance)})
}

func TestChecksum(t *testing.T) {
	require.Equal(t, byte(0), Checksum(nil))
	require.Equal(t, byte(0x5a), Checksum([]byte{0x5a}))
	require.Equal(t, byte(0), Checksum([]byte{0x5a, 0x5a}))
	require.Equal(t, byte(0x62^0x33^0x09), Checksum([]byte{0x62, 0x33, 0x09, 0xff, 0xff}))
}

func TestEncodeFrame(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    Command
		expect []byte
	}{
		{"read distance", ReadDistance(), []byte{0x62, 0x33, 0x09, 0xff, 0xff, 0, 0, 0, 0x62 ^ 0x33 ^ 0x09}},
		{"upload mode", SetUploadMode(true), []byte{0x62, 0x34, 0x09, 0xff, 0xff, 1, 0, 0, 0x62 ^ 0x34 ^ 0x09 ^ 1}},
		{"hard reset", RestoreFactory(true), []byte{0x62, 0x39, 0x09, 0xff, 0xff, 0xff, 0xff, 0xfe, 0x62 ^ 0x39 ^ 0x09 ^ 0xfe}},
		{"soft reset", RestoreFactory(false), []byte{0x62, 0x39, 0x09, 0xff, 0xff, 0xff, 0xff, 0xfd, 0x62 ^ 0x39 ^ 0x09 ^ 0xfd}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.cmd.Frame()
			require.Equal(t, tc.expect, f[:])
			require.True(t, f.Valid())
			require.Equal(t, tc.cmd.ID, f.CommandID())
			require.Equal(t, tc.cmd.Params, f.Params())
		})
	}
}

func TestEncodeFrameChecksumAllParams(t *testing.T) {
	ids := []CommandID{
		CmdChangeBaudRate, CmdSetCommunicationMode, CmdChangeAddress, CmdReadDistance,
		CmdSetUploadMode, CmdSetUploadInterval, CmdSetLEDMode, CmdSetRelayMode, CmdRestoreFactory,
	}
	for _, id := range ids {
		for p := 0; p < 256; p++ {
			f := EncodeFrame(id, [3]byte{byte(p), byte(255 - p), byte(p * 7)})
			require.Len(t, f[:], FrameSize)
			require.Equal(t, Checksum(f[:8]), f[8])
			require.Equal(t, byte(0xff), f[3])
			require.Equal(t, byte(0xff), f[4])
		}
	}
}

func TestDecodeFrameRoundTrip(t *testing.T) {
	for d := 0; d <= 0xffff; d++ {
		f := replyFrame(uint16(d))
		decoded, err := DecodeFrame(CmdReadDistance, f[:])
		require.NoError(t, err)
		require.Equal(t, uint16(d), decoded.Distance())
	}
}

func TestDecodeFrameRejects(t *testing.T) {
	good := replyFrame(100)
	require.Equal(t, []byte{0x62, 0x33, 0x09, 0xff, 0xff, 0x00, 0x64, 0x00}, good[:8])

	badSum := good
	badSum[8] ^= 0x01
	badID := EncodeFrame(CmdSetLEDMode, good.Params())

	testCases := []struct {
		name   string
		buf    []byte
		expect error
	}{
		{"empty", nil, ErrShortRead},
		{"short", good[:8], ErrShortRead},
		{"long", append(good[:], 0), ErrMalformed},
		{"wrong command", badID[:], ErrMalformed},
		{"bad checksum", badSum[:], ErrChecksumMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFrame(CmdReadDistance, tc.buf)
			require.True(t, errors.Is(err, tc.expect), "got %v", err)
		})
	}
}

func TestDecodeFrameRejectsAnyChecksumError(t *testing.T) {
	f := replyFrame(0x1234)
	for v := 0; v < 256; v++ {
		if byte(v) == f[8] {
			continue
		}
		buf := f
		buf[8] = byte(v)
		_, err := DecodeFrame(CmdReadDistance, buf[:])
		var csErr *ChecksumError
		require.True(t, errors.As(err, &csErr))
		require.Equal(t, f[8], csErr.Expected)
		require.Equal(t, byte(v), csErr.Actual)
	}
}

type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestReadFrame(t *testing.T) {
	f := replyFrame(42)

	buf, err := ReadFrame(&chunkReader{chunks: [][]byte{f[:4], f[4:]}})
	require.NoError(t, err)
	require.Equal(t, f[:], buf)

	buf, err = ReadFrame(&chunkReader{chunks: [][]byte{f[:4]}})
	require.NoError(t, err)
	require.Equal(t, f[:4], buf)

	buf, err = ReadFrame(bytes.NewReader(f[:3]))
	require.NoError(t, err)
	require.Len(t, buf, 3)

	_, err = ReadFrame(bytes.NewReader(nil))
	require.Equal(t, io.EOF, err)
}

func TestFrameWriteTo(t *testing.T) {
	var buf bytes.Buffer
	f := ReadDistance().Frame()
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, FrameSize, n)
	require.Equal(t, f[:], buf.Bytes())
	require.Equal(t, "623309ffff00000058", f.String())
}
