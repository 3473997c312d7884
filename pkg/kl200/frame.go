package kl200

import (
	"encoding/binary"
	"encoding/hex"
	"io"
)

// FrameSize is the fixed size of all frames.
const FrameSize = 9

const (
	frameTag       byte = 0x09
	broadcastHigh  byte = 0xff
	broadcastLow   byte = 0xff
	checksumOffset      = FrameSize - 1
)

// Frame is a raw frame on the wire.
type Frame [FrameSize]byte

// Checksum calculates XOR of all bytes.
func Checksum(b []byte) (sum byte) {
	for _, v := range b {
		sum ^= v
	}
	return
}

// EncodeFrame builds a frame for the command id with parameters.
func EncodeFrame(id CommandID, params [3]byte) (f Frame) {
	binary.BigEndian.PutUint16(f[0:2], uint16(id))
	f[2], f[3], f[4] = frameTag, broadcastHigh, broadcastLow
	copy(f[5:8], params[:])
	f[checksumOffset] = Checksum(f[:checksumOffset])
	return
}

// DecodeFrame validates the bytes received as the reply of command expect.
// The frame is rejected as a whole on any mismatch.
func DecodeFrame(expect CommandID, buf []byte) (f Frame, err error) {
	if len(buf) < FrameSize {
		return f, ErrShortRead
	}
	if len(buf) > FrameSize {
		return f, ErrMalformed
	}
	copy(f[:], buf)
	if f.CommandID() != expect {
		return f, ErrMalformed
	}
	if sum := Checksum(f[:checksumOffset]); sum != f[checksumOffset] {
		return f, &ChecksumError{Expected: sum, Actual: f[checksumOffset]}
	}
	return f, nil
}

// CommandID returns the command id in the first two bytes.
func (f Frame) CommandID() CommandID {
	return CommandID(binary.BigEndian.Uint16(f[0:2]))
}

// Params returns the 3 parameter bytes.
func (f Frame) Params() (p [3]byte) {
	copy(p[:], f[5:8])
	return
}

// Valid checks the checksum.
func (f Frame) Valid() bool {
	return Checksum(f[:checksumOffset]) == f[checksumOffset]
}

// Distance decodes the distance (mm) from a ReadDistance reply.
func (f Frame) Distance() uint16 {
	return binary.BigEndian.Uint16(f[5:7])
}

// String returns hex dump.
func (f Frame) String() string {
	return hex.EncodeToString(f[:])
}

// WriteTo writes the encoded frame.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f[:])
	if err == nil && n < FrameSize {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// ReadFrame reads up to FrameSize bytes. It stops early when the reader
// returns no data (read timeout on a serial port) or an error, and
// returns whatever was received.
func ReadFrame(r io.Reader) ([]byte, error) {
	buf := make([]byte, FrameSize)
	n := 0
	for n < FrameSize {
		nr, err := r.Read(buf[n:])
		n += nr
		if err != nil {
			if err == io.EOF && n > 0 {
				err = nil
			}
			return buf[:n], err
		}
		if nr == 0 {
			break
		}
	}
	return buf[:n], nil
}
