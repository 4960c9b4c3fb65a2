package packets

import (
	"fmt"

	"github.com/danmuck/armwire/internal/protocol"
)

const (
	NewItemSize    = 8
	TakeItemSize   = 4
	PickUpItemSize = 4
)

type (
	NewItemPacket    [NewItemSize]byte
	TakeItemPacket   [TakeItemSize]byte
	PickUpItemPacket [PickUpItemSize]byte
)

// NewItem announces an item placed at a location.
type NewItem struct {
	ID       uint32 `json:"id"`
	Location uint32 `json:"location"`
}

func (n NewItem) String() string {
	return fmt.Sprintf("new item=%d location=%d", n.ID, n.Location)
}

// TakeItem asks an arm to take an item.
type TakeItem struct {
	ID uint32 `json:"id"`
}

func (t TakeItem) String() string {
	return fmt.Sprintf("take item=%d", t.ID)
}

// PickUpItem reports that an item was picked up.
type PickUpItem struct {
	ID uint32 `json:"id"`
}

func (p PickUpItem) String() string {
	return fmt.Sprintf("pick up item=%d", p.ID)
}

func EncodeNewItem(n NewItem) NewItemPacket {
	var p NewItemPacket
	protocol.PutUint32s(p[:], 0, n.ID, n.Location)
	return p
}

func DecodeNewItem(p NewItemPacket) (NewItem, error) {
	return decodeNewItem(p[:])
}

func ParseNewItem(b []byte) (NewItem, error) {
	if err := protocol.CheckLen(b, NewItemSize); err != nil {
		return NewItem{}, err
	}
	return decodeNewItem(b)
}

func decodeNewItem(b []byte) (NewItem, error) {
	var n NewItem
	if err := protocol.NewCursor(b).Uint32s(&n.ID, &n.Location); err != nil {
		return NewItem{}, err
	}
	return n, nil
}

func EncodeTakeItem(t TakeItem) TakeItemPacket {
	var p TakeItemPacket
	protocol.PutUint32s(p[:], 0, t.ID)
	return p
}

func DecodeTakeItem(p TakeItemPacket) (TakeItem, error) {
	return decodeTakeItem(p[:])
}

func ParseTakeItem(b []byte) (TakeItem, error) {
	if err := protocol.CheckLen(b, TakeItemSize); err != nil {
		return TakeItem{}, err
	}
	return decodeTakeItem(b)
}

func decodeTakeItem(b []byte) (TakeItem, error) {
	id, err := protocol.NewCursor(b).Uint32()
	if err != nil {
		return TakeItem{}, err
	}
	return TakeItem{ID: id}, nil
}

func EncodePickUpItem(p PickUpItem) PickUpItemPacket {
	var out PickUpItemPacket
	protocol.PutUint32s(out[:], 0, p.ID)
	return out
}

func DecodePickUpItem(p PickUpItemPacket) (PickUpItem, error) {
	return decodePickUpItem(p[:])
}

func ParsePickUpItem(b []byte) (PickUpItem, error) {
	if err := protocol.CheckLen(b, PickUpItemSize); err != nil {
		return PickUpItem{}, err
	}
	return decodePickUpItem(b)
}

func decodePickUpItem(b []byte) (PickUpItem, error) {
	id, err := protocol.NewCursor(b).Uint32()
	if err != nil {
		return PickUpItem{}, err
	}
	return PickUpItem{ID: id}, nil
}

var (
	NewItemCodec protocol.Codec[NewItem] = protocol.FuncCodec[NewItem]{
		N: NewItemSize,
		Enc: func(n NewItem) []byte {
			p := EncodeNewItem(n)
			return p[:]
		},
		Dec: decodeNewItem,
	}
	TakeItemCodec protocol.Codec[TakeItem] = protocol.FuncCodec[TakeItem]{
		N: TakeItemSize,
		Enc: func(t TakeItem) []byte {
			p := EncodeTakeItem(t)
			return p[:]
		},
		Dec: decodeTakeItem,
	}
	PickUpItemCodec protocol.Codec[PickUpItem] = protocol.FuncCodec[PickUpItem]{
		N: PickUpItemSize,
		Enc: func(p PickUpItem) []byte {
			out := EncodePickUpItem(p)
			return out[:]
		},
		Dec: decodePickUpItem,
	}
)
