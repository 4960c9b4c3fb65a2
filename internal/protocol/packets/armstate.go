package packets

import (
	"fmt"

	"github.com/danmuck/armwire/internal/protocol"
)

const ArmStateSize = 9

type ArmStatePacket [ArmStateSize]byte

// ArmStateKind is the arm state discriminant.
type ArmStateKind uint8

const (
	ArmReady   ArmStateKind = 0
	ArmWorking ArmStateKind = 1
	ArmWaiting ArmStateKind = 2
)

func (k ArmStateKind) String() string {
	switch k {
	case ArmReady:
		return "ready"
	case ArmWorking:
		return "working"
	case ArmWaiting:
		return "waiting"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ArmState reports what one arm is doing. Value is only carried by
// ArmWorking and is zero for every other kind.
type ArmState struct {
	Kind  ArmStateKind `json:"kind"`
	Value uint32       `json:"value"`
	ArmID uint32       `json:"arm_id"`
}

func Ready(armID uint32) ArmState {
	return ArmState{Kind: ArmReady, ArmID: armID}
}

func Working(armID, value uint32) ArmState {
	return ArmState{Kind: ArmWorking, Value: value, ArmID: armID}
}

func Waiting(armID uint32) ArmState {
	return ArmState{Kind: ArmWaiting, ArmID: armID}
}

func (s ArmState) String() string {
	if s.Kind == ArmWorking {
		return fmt.Sprintf("arm=%d state=%s value=%d", s.ArmID, s.Kind, s.Value)
	}
	return fmt.Sprintf("arm=%d state=%s", s.ArmID, s.Kind)
}

func EncodeArmState(s ArmState) ArmStatePacket {
	var p ArmStatePacket
	p[0] = byte(s.Kind)
	value := uint32(0)
	if s.Kind == ArmWorking {
		value = s.Value
	}
	protocol.PutUint32s(p[:], 1, value, s.ArmID)
	return p
}

func DecodeArmState(p ArmStatePacket) (ArmState, error) {
	return decodeArmState(p[:])
}

// ParseArmState decodes a slice that must be exactly ArmStateSize bytes.
func ParseArmState(b []byte) (ArmState, error) {
	if err := protocol.CheckLen(b, ArmStateSize); err != nil {
		return ArmState{}, err
	}
	return decodeArmState(b)
}

func decodeArmState(b []byte) (ArmState, error) {
	kind := ArmStateKind(b[0])
	switch kind {
	case ArmReady, ArmWorking, ArmWaiting:
	default:
		return ArmState{}, protocol.UnknownByte(b[0])
	}

	var value, armID uint32
	if err := protocol.NewCursor(b[1:]).Uint32s(&value, &armID); err != nil {
		return ArmState{}, err
	}
	if kind != ArmWorking {
		value = 0
	}
	return ArmState{Kind: kind, Value: value, ArmID: armID}, nil
}

// ArmStateCodec is the slice-level codec for arm state packets.
var ArmStateCodec protocol.Codec[ArmState] = protocol.FuncCodec[ArmState]{
	N: ArmStateSize,
	Enc: func(s ArmState) []byte {
		p := EncodeArmState(s)
		return p[:]
	},
	Dec: decodeArmState,
}
