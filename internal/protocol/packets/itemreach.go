package packets

import (
	"fmt"

	"github.com/danmuck/armwire/internal/protocol"
)

const ItemReachSize = 13

type ItemReachPacket [ItemReachSize]byte

// Reach is the item reach discriminant.
type Reach uint8

const (
	InReach  Reach = 0
	OutReach Reach = 1
)

func (r Reach) String() string {
	switch r {
	case InReach:
		return "in_reach"
	case OutReach:
		return "out_reach"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// ItemStatus reports an item entering or leaving an arm's reach.
type ItemStatus struct {
	Reach Reach  `json:"reach"`
	Index uint32 `json:"index"`
	PosX  uint32 `json:"pos_x"`
	PosY  uint32 `json:"pos_y"`
}

func (s ItemStatus) String() string {
	return fmt.Sprintf("item=%d %s pos=(%d,%d)", s.Index, s.Reach, s.PosX, s.PosY)
}

func EncodeItemReach(s ItemStatus) ItemReachPacket {
	var p ItemReachPacket
	p[0] = byte(s.Reach)
	protocol.PutUint32s(p[:], 1, s.Index, s.PosX, s.PosY)
	return p
}

func DecodeItemReach(p ItemReachPacket) (ItemStatus, error) {
	return decodeItemReach(p[:])
}

// ParseItemReach decodes a slice that must be exactly ItemReachSize bytes.
func ParseItemReach(b []byte) (ItemStatus, error) {
	if err := protocol.CheckLen(b, ItemReachSize); err != nil {
		return ItemStatus{}, err
	}
	return decodeItemReach(b)
}

func decodeItemReach(b []byte) (ItemStatus, error) {
	reach := Reach(b[0])
	if reach != InReach && reach != OutReach {
		return ItemStatus{}, protocol.UnknownByte(b[0])
	}
	s := ItemStatus{Reach: reach}
	if err := protocol.NewCursor(b[1:]).Uint32s(&s.Index, &s.PosX, &s.PosY); err != nil {
		return ItemStatus{}, err
	}
	return s, nil
}

var ItemReachCodec protocol.Codec[ItemStatus] = protocol.FuncCodec[ItemStatus]{
	N: ItemReachSize,
	Enc: func(s ItemStatus) []byte {
		p := EncodeItemReach(s)
		return p[:]
	},
	Dec: decodeItemReach,
}
