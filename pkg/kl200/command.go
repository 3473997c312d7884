package kl200

import "fmt"

// CommandID is the 2-byte command prefix of a frame.
type CommandID uint16

// Command IDs. They are fixed by the module firmware.
const (
	CmdChangeBaudRate       CommandID = 0x6230
	CmdSetCommunicationMode CommandID = 0x6231
	CmdChangeAddress        CommandID = 0x6232
	CmdReadDistance         CommandID = 0x6233
	CmdSetUploadMode        CommandID = 0x6234
	CmdSetUploadInterval    CommandID = 0x6235
	CmdSetLEDMode           CommandID = 0x6237
	CmdSetRelayMode         CommandID = 0x6238
	CmdRestoreFactory       CommandID = 0x6239
)

var commandNames = map[CommandID]string{
	CmdChangeBaudRate:       "ChangeBaudRate",
	CmdSetCommunicationMode: "SetCommunicationMode",
	CmdChangeAddress:        "ChangeAddress",
	CmdReadDistance:         "ReadDistance",
	CmdSetUploadMode:        "SetUploadMode",
	CmdSetUploadInterval:    "SetUploadInterval",
	CmdSetLEDMode:           "SetLEDMode",
	CmdSetRelayMode:         "SetRelayMode",
	CmdRestoreFactory:       "RestoreFactory",
}

// String implements fmt.Stringer.
func (id CommandID) String() string {
	if name, ok := commandNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Command(%04x)", uint16(id))
}

// Parameter limits.
const (
	MaxAddress        uint16 = 0xfffe
	MaxBaudRateCode   uint8  = 9
	MinUploadInterval uint8  = 1
	MaxUploadInterval uint8  = 100
	MaxLEDMode        uint8  = 3
	MaxRelayMode      uint8  = 1
	MaxCommMode       uint8  = 1
)

const (
	resetHard byte = 0xfe
	resetSoft byte = 0xfd
)

// Command is a command ready to be encoded.
type Command struct {
	ID     CommandID
	Params [3]byte
}

// Frame encodes the command.
func (c Command) Frame() Frame {
	return EncodeFrame(c.ID, c.Params)
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("%s[%02x %02x %02x]", c.ID, c.Params[0], c.Params[1], c.Params[2])
}

func byteParam(id CommandID, val, min, max uint8) (Command, error) {
	if val < min || val > max {
		return Command{ID: id}, &RangeError{Command: id, Value: int64(val), Min: uint32(min), Max: uint32(max)}
	}
	return Command{ID: id, Params: [3]byte{val}}, nil
}

func boolParam(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// RestoreFactory builds the factory reset command.
func RestoreFactory(hard bool) Command {
	sel := resetSoft
	if hard {
		sel = resetHard
	}
	return Command{ID: CmdRestoreFactory, Params: [3]byte{0xff, 0xff, sel}}
}

// ChangeAddress builds the command to change the module address.
func ChangeAddress(addr uint16) (Command, error) {
	if addr > MaxAddress {
		return Command{ID: CmdChangeAddress}, &RangeError{Command: CmdChangeAddress, Value: int64(addr), Max: uint32(MaxAddress)}
	}
	return Command{ID: CmdChangeAddress, Params: [3]byte{byte(addr >> 8), byte(addr)}}, nil
}

// ChangeBaudRate builds the command to change the baud rate using code 0-9.
func ChangeBaudRate(code uint8) (Command, error) {
	return byteParam(CmdChangeBaudRate, code, 0, MaxBaudRateCode)
}

// SetUploadMode builds the command switching between automatic upload
// and query mode.
func SetUploadMode(auto bool) Command {
	return Command{ID: CmdSetUploadMode, Params: [3]byte{boolParam(auto)}}
}

// SetUploadInterval builds the command for automatic upload interval.
func SetUploadInterval(interval uint8) (Command, error) {
	return byteParam(CmdSetUploadInterval, interval, MinUploadInterval, MaxUploadInterval)
}

// SetLEDMode builds the command for LED mode.
func SetLEDMode(mode uint8) (Command, error) {
	return byteParam(CmdSetLEDMode, mode, 0, MaxLEDMode)
}

// SetRelayMode builds the command for relay mode.
func SetRelayMode(mode uint8) (Command, error) {
	return byteParam(CmdSetRelayMode, mode, 0, MaxRelayMode)
}

// SetCommunicationMode builds the command for communication mode
// (0 is UART).
func SetCommunicationMode(mode uint8) (Command, error) {
	return byteParam(CmdSetCommunicationMode, mode, 0, MaxCommMode)
}

// ReadDistance builds the distance query.
func ReadDistance() Command {
	return Command{ID: CmdReadDistance}
}
