package msgs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1/msgs"
)

func TestMessageKinds(t *testing.T) {
	testCases := []struct {
		msg     msgs.SerializableMessage
		command bool
		reply   bool
	}{
		{&DistanceEvent{}, false, false},
		{&StatusQuery{}, true, false},
		{&StatusReply{}, true, true},
		{&ReadDistance{}, true, false},
		{&DistanceReply{}, true, true},
		{&RestoreFactory{}, true, false},
		{&ChangeAddress{}, true, false},
		{&ChangeBaudRate{}, true, false},
		{&SetUploadMode{}, true, false},
		{&SetUploadInterval{}, true, false},
		{&SetLEDMode{}, true, false},
		{&SetRelayMode{}, true, false},
		{&SetCommMode{}, true, false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%T", tc.msg), func(t *testing.T) {
			typed, err := msgs.TypedFrom(tc.msg)
			require.NoError(t, err)
			require.Equal(t, tc.command, typed.IsCommand())
			require.Equal(t, !tc.command, typed.IsEvent())
			require.Equal(t, tc.reply, typed.IsReply())
			require.Equal(t, msgs.GroupSensor, typed.TypeID&msgs.TypeIDMaskGroup)
			registered, ok := msgs.MessageTypes[typed.TypeID]
			require.True(t, ok)
			require.IsType(t, tc.msg, registered)
		})
	}
}

func roundTrip(t *testing.T, msg fx.Message) fx.Message {
	typed, err := msgs.TypedFrom(msg)
	require.NoError(t, err)
	data, err := typed.Encode()
	require.NoError(t, err)
	decodedTyped, err := msgs.DecodeTyped(data)
	require.NoError(t, err)
	decoded, err := decodedTyped.Decode()
	require.NoError(t, err)
	return decoded
}

func TestStatusReplyEncoding(t *testing.T) {
	reply := &StatusReply{Status: &SensorStatus{
		Device:         "/dev/ttyUSB0",
		BaudRate:       9600,
		Distance:       100,
		LastReceived:   100,
		AutoUpload:     true,
		UploadInterval: 5,
		LedMode:        2,
		Polls:          12,
		Dropped:        1,
	}}
	decoded := roundTrip(t, reply)
	require.Equal(t, reply, decoded)
}

func TestCommandEncoding(t *testing.T) {
	require.Equal(t, &SetLEDMode{Mode: 3}, roundTrip(t, &SetLEDMode{Mode: 3}))
	require.Equal(t, &RestoreFactory{Soft: true}, roundTrip(t, &RestoreFactory{Soft: true}))
	require.Equal(t, &ChangeAddress{Address: 0xfffe}, roundTrip(t, &ChangeAddress{Address: 0xfffe}))
	require.Equal(t, &DistanceEvent{Distance: 1234, LastReceived: 1234}, roundTrip(t, &DistanceEvent{Distance: 1234, LastReceived: 1234}))
}
