package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/kl200/pkg/framework"
	"github.com/robotalks/kl200/pkg/l1/msgs"
)

// DistanceEvent is published when a new distance is consumed from the sensor.
type DistanceEvent struct {
	Distance     uint32 `protobuf:"varint,1,opt,name=distance,proto3" json:"distance,omitempty"`
	LastReceived uint32 `protobuf:"varint,2,opt,name=last_received,proto3" json:"last_received,omitempty"`
}

// NewMessage implements Message.
func (m *DistanceEvent) NewMessage() fx.Message { return &DistanceEvent{} }

// TypeID implements SerializableMessage.
func (m *DistanceEvent) TypeID() uint32 { return DistanceEventTypeID }

// Serializable implements SerializableMessage.
func (m *DistanceEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DistanceEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DistanceEvent) Reset() { *m = DistanceEvent{} }

// String implements proto.Message.
func (m *DistanceEvent) String() string { return proto.CompactTextString(m) }

// StatusQuery queries the sensor status.
type StatusQuery struct {
}

// NewMessage implements Message.
func (m *StatusQuery) NewMessage() fx.Message { return &StatusQuery{} }

// TypeID implements SerializableMessage.
func (m *StatusQuery) TypeID() uint32 { return StatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *StatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *StatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusQuery) Reset() { *m = StatusQuery{} }

// String implements proto.Message.
func (m *StatusQuery) String() string { return proto.CompactTextString(m) }

// StatusReply is the response for StatusQuery.
type StatusReply struct {
	Status *SensorStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *StatusReply) NewMessage() fx.Message { return &StatusReply{} }

// TypeID implements SerializableMessage.
func (m *StatusReply) TypeID() uint32 { return StatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *StatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *StatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatusReply) Reset() { *m = StatusReply{} }

// String implements proto.Message.
func (m *StatusReply) String() string { return proto.CompactTextString(m) }

// ReadDistance queries the distance immediately instead of waiting for the next poll.
type ReadDistance struct {
}

// NewMessage implements Message.
func (m *ReadDistance) NewMessage() fx.Message { return &ReadDistance{} }

// TypeID implements SerializableMessage.
func (m *ReadDistance) TypeID() uint32 { return ReadDistanceTypeID }

// Serializable implements SerializableMessage.
func (m *ReadDistance) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ReadDistance) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ReadDistance) Reset() { *m = ReadDistance{} }

// String implements proto.Message.
func (m *ReadDistance) String() string { return proto.CompactTextString(m) }

// DistanceReply is the response for ReadDistance.
type DistanceReply struct {
	Distance     uint32 `protobuf:"varint,1,opt,name=distance,proto3" json:"distance,omitempty"`
	LastReceived uint32 `protobuf:"varint,2,opt,name=last_received,proto3" json:"last_received,omitempty"`
	Valid        bool   `protobuf:"varint,3,opt,name=valid,proto3" json:"valid,omitempty"`
}

// NewMessage implements Message.
func (m *DistanceReply) NewMessage() fx.Message { return &DistanceReply{} }

// TypeID implements SerializableMessage.
func (m *DistanceReply) TypeID() uint32 { return DistanceReplyTypeID }

// Serializable implements SerializableMessage.
func (m *DistanceReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DistanceReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DistanceReply) Reset() { *m = DistanceReply{} }

// String implements proto.Message.
func (m *DistanceReply) String() string { return proto.CompactTextString(m) }

// RestoreFactory restores factory settings, hard reset unless Soft is set.
type RestoreFactory struct {
	Soft bool `protobuf:"varint,1,opt,name=soft,proto3" json:"soft,omitempty"`
}

// NewMessage implements Message.
func (m *RestoreFactory) NewMessage() fx.Message { return &RestoreFactory{} }

// TypeID implements SerializableMessage.
func (m *RestoreFactory) TypeID() uint32 { return RestoreFactoryTypeID }

// Serializable implements SerializableMessage.
func (m *RestoreFactory) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *RestoreFactory) ProtoMessage() {}

// Reset implements proto.Message.
func (m *RestoreFactory) Reset() { *m = RestoreFactory{} }

// String implements proto.Message.
func (m *RestoreFactory) String() string { return proto.CompactTextString(m) }

// ChangeAddress changes the module address.
type ChangeAddress struct {
	Address uint32 `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
}

// NewMessage implements Message.
func (m *ChangeAddress) NewMessage() fx.Message { return &ChangeAddress{} }

// TypeID implements SerializableMessage.
func (m *ChangeAddress) TypeID() uint32 { return ChangeAddressTypeID }

// Serializable implements SerializableMessage.
func (m *ChangeAddress) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ChangeAddress) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ChangeAddress) Reset() { *m = ChangeAddress{} }

// String implements proto.Message.
func (m *ChangeAddress) String() string { return proto.CompactTextString(m) }

// ChangeBaudRate changes the module baud rate by code.
type ChangeBaudRate struct {
	Code uint32 `protobuf:"varint,1,opt,name=code,proto3" json:"code,omitempty"`
}

// NewMessage implements Message.
func (m *ChangeBaudRate) NewMessage() fx.Message { return &ChangeBaudRate{} }

// TypeID implements SerializableMessage.
func (m *ChangeBaudRate) TypeID() uint32 { return ChangeBaudRateTypeID }

// Serializable implements SerializableMessage.
func (m *ChangeBaudRate) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ChangeBaudRate) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ChangeBaudRate) Reset() { *m = ChangeBaudRate{} }

// String implements proto.Message.
func (m *ChangeBaudRate) String() string { return proto.CompactTextString(m) }

// SetUploadMode switches between automatic upload and query mode.
type SetUploadMode struct {
	Auto bool `protobuf:"varint,1,opt,name=auto,proto3" json:"auto,omitempty"`
}

// NewMessage implements Message.
func (m *SetUploadMode) NewMessage() fx.Message { return &SetUploadMode{} }

// TypeID implements SerializableMessage.
func (m *SetUploadMode) TypeID() uint32 { return SetUploadModeTypeID }

// Serializable implements SerializableMessage.
func (m *SetUploadMode) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SetUploadMode) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetUploadMode) Reset() { *m = SetUploadMode{} }

// String implements proto.Message.
func (m *SetUploadMode) String() string { return proto.CompactTextString(m) }

// SetUploadInterval sets the automatic upload interval.
type SetUploadInterval struct {
	Interval uint32 `protobuf:"varint,1,opt,name=interval,proto3" json:"interval,omitempty"`
}

// NewMessage implements Message.
func (m *SetUploadInterval) NewMessage() fx.Message { return &SetUploadInterval{} }

// TypeID implements SerializableMessage.
func (m *SetUploadInterval) TypeID() uint32 { return SetUploadIntervalTypeID }

// Serializable implements SerializableMessage.
func (m *SetUploadInterval) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SetUploadInterval) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetUploadInterval) Reset() { *m = SetUploadInterval{} }

// String implements proto.Message.
func (m *SetUploadInterval) String() string { return proto.CompactTextString(m) }

// SetLEDMode sets the LED mode.
type SetLEDMode struct {
	Mode uint32 `protobuf:"varint,1,opt,name=mode,proto3" json:"mode,omitempty"`
}

// NewMessage implements Message.
func (m *SetLEDMode) NewMessage() fx.Message { return &SetLEDMode{} }

// TypeID implements SerializableMessage.
func (m *SetLEDMode) TypeID() uint32 { return SetLEDModeTypeID }

// Serializable implements SerializableMessage.
func (m *SetLEDMode) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SetLEDMode) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetLEDMode) Reset() { *m = SetLEDMode{} }

// String implements proto.Message.
func (m *SetLEDMode) String() string { return proto.CompactTextString(m) }

// SetRelayMode sets the relay mode.
type SetRelayMode struct {
	Mode uint32 `protobuf:"varint,1,opt,name=mode,proto3" json:"mode,omitempty"`
}

// NewMessage implements Message.
func (m *SetRelayMode) NewMessage() fx.Message { return &SetRelayMode{} }

// TypeID implements SerializableMessage.
func (m *SetRelayMode) TypeID() uint32 { return SetRelayModeTypeID }

// Serializable implements SerializableMessage.
func (m *SetRelayMode) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SetRelayMode) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetRelayMode) Reset() { *m = SetRelayMode{} }

// String implements proto.Message.
func (m *SetRelayMode) String() string { return proto.CompactTextString(m) }

// SetCommMode sets the communication mode.
type SetCommMode struct {
	Mode uint32 `protobuf:"varint,1,opt,name=mode,proto3" json:"mode,omitempty"`
}

// NewMessage implements Message.
func (m *SetCommMode) NewMessage() fx.Message { return &SetCommMode{} }

// TypeID implements SerializableMessage.
func (m *SetCommMode) TypeID() uint32 { return SetCommModeTypeID }

// Serializable implements SerializableMessage.
func (m *SetCommMode) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *SetCommMode) ProtoMessage() {}

// Reset implements proto.Message.
func (m *SetCommMode) Reset() { *m = SetCommMode{} }

// String implements proto.Message.
func (m *SetCommMode) String() string { return proto.CompactTextString(m) }

// SensorStatus reflects the sensor state known by the controller.
type SensorStatus struct {
	Device         string `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	BaudRate       uint32 `protobuf:"varint,2,opt,name=baud_rate,proto3" json:"baud_rate,omitempty"`
	Distance       uint32 `protobuf:"varint,3,opt,name=distance,proto3" json:"distance,omitempty"`
	LastReceived   uint32 `protobuf:"varint,4,opt,name=last_received,proto3" json:"last_received,omitempty"`
	Available      bool   `protobuf:"varint,5,opt,name=available,proto3" json:"available,omitempty"`
	AutoUpload     bool   `protobuf:"varint,6,opt,name=auto_upload,proto3" json:"auto_upload,omitempty"`
	UploadInterval uint32 `protobuf:"varint,7,opt,name=upload_interval,proto3" json:"upload_interval,omitempty"`
	LedMode        uint32 `protobuf:"varint,8,opt,name=led_mode,proto3" json:"led_mode,omitempty"`
	RelayMode      uint32 `protobuf:"varint,9,opt,name=relay_mode,proto3" json:"relay_mode,omitempty"`
	CommMode       uint32 `protobuf:"varint,10,opt,name=comm_mode,proto3" json:"comm_mode,omitempty"`
	Address        uint32 `protobuf:"varint,11,opt,name=address,proto3" json:"address,omitempty"`
	Polls          uint64 `protobuf:"varint,12,opt,name=polls,proto3" json:"polls,omitempty"`
	Dropped        uint64 `protobuf:"varint,13,opt,name=dropped,proto3" json:"dropped,omitempty"`
}

// GroupKL200 defines the sensor group.
const GroupKL200 = msgs.GroupSensor

// TypeIDs
const (
	DistanceEventTypeID     uint32 = GroupKL200 | msgs.TypeIDKindEvent | 0x0000
	StatusQueryTypeID       uint32 = GroupKL200 | 0x0000
	StatusReplyTypeID       uint32 = GroupKL200 | msgs.TypeIDMaskReply | 0x0000
	ReadDistanceTypeID      uint32 = GroupKL200 | 0x0001
	DistanceReplyTypeID     uint32 = GroupKL200 | msgs.TypeIDMaskReply | 0x0001
	RestoreFactoryTypeID    uint32 = GroupKL200 | 0x0002
	ChangeAddressTypeID     uint32 = GroupKL200 | 0x0003
	ChangeBaudRateTypeID    uint32 = GroupKL200 | 0x0004
	SetUploadModeTypeID     uint32 = GroupKL200 | 0x0005
	SetUploadIntervalTypeID uint32 = GroupKL200 | 0x0006
	SetLEDModeTypeID        uint32 = GroupKL200 | 0x0007
	SetRelayModeTypeID      uint32 = GroupKL200 | 0x0008
	SetCommModeTypeID       uint32 = GroupKL200 | 0x0009
)

func init() {
	msgs.MessageTypes[DistanceEventTypeID] = (*DistanceEvent)(nil)
	msgs.MessageTypes[StatusQueryTypeID] = (*StatusQuery)(nil)
	msgs.MessageTypes[StatusReplyTypeID] = (*StatusReply)(nil)
	msgs.MessageTypes[ReadDistanceTypeID] = (*ReadDistance)(nil)
	msgs.MessageTypes[DistanceReplyTypeID] = (*DistanceReply)(nil)
	msgs.MessageTypes[RestoreFactoryTypeID] = (*RestoreFactory)(nil)
	msgs.MessageTypes[ChangeAddressTypeID] = (*ChangeAddress)(nil)
	msgs.MessageTypes[ChangeBaudRateTypeID] = (*ChangeBaudRate)(nil)
	msgs.MessageTypes[SetUploadModeTypeID] = (*SetUploadMode)(nil)
	msgs.MessageTypes[SetUploadIntervalTypeID] = (*SetUploadInterval)(nil)
	msgs.MessageTypes[SetLEDModeTypeID] = (*SetLEDMode)(nil)
	msgs.MessageTypes[SetRelayModeTypeID] = (*SetRelayMode)(nil)
	msgs.MessageTypes[SetCommModeTypeID] = (*SetCommMode)(nil)
}
