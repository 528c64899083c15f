package hci

// HeaderSize is the size of the command/event code plus the length field.
const HeaderSize = 4

// Command and event codes. Events sent by the device have the top bit set.
const (
	SetInfo       uint16 = 0x0001
	GetInfo       uint16 = 0x0002
	GetInfoResult uint16 = 0x8003

	TxSDU     uint16 = 0x0202 // host to device data
	RxSDU     uint16 = 0x8203 // device to host data
	RxSDUAggr uint16 = 0x8204 // batch of RxSDU messages

	ModemReport uint16 = 0x8325
	SDUTxFlow   uint16 = 0x8514

	// Indications generated by the host itself.
	FSMUpdate uint16 = 0x8F01
	IfUpDown  uint16 = 0x8F02
)

// IfUpDown payload values.
const (
	IfUp   byte = 1
	IfDown byte = 2
)

// SDUTxFlow flag values.
const (
	FlowStop   byte = 0
	FlowResume byte = 1
)

// TLV types and their fixed value lengths.
const (
	TypeMACAddress byte = 0x00
	TypeCapability byte = 0x1a

	MACAddressLen = 6
	CapabilityLen = 4
)

// Capability bits announced with SetInfo(TypeCapability).
const (
	CapMultiCS     uint32 = 1 << 0
	CapWiMAX       uint32 = 1 << 1
	CapQoS         uint32 = 1 << 2
	CapAggregation uint32 = 1 << 3
)

const (
	tlvExtendedLen byte = 0x82
	tlvMaxShortLen      = 0x81

	// Aggregated sub-frames are padded to aggrAlign and followed by a
	// reserved trailer.
	aggrAlign    = 4
	aggrReserved = 4
)

var codeNames = map[uint16]string{
	SetInfo:       "SetInfo",
	GetInfo:       "GetInfo",
	GetInfoResult: "GetInfoResult",
	TxSDU:         "TxSDU",
	RxSDU:         "RxSDU",
	RxSDUAggr:     "RxSDUAggr",
	ModemReport:   "ModemReport",
	SDUTxFlow:     "SDUTxFlow",
	FSMUpdate:     "FSMUpdate",
	IfUpDown:      "IfUpDown",
}
