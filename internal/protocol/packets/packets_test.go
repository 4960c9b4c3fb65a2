package packets

import (
	"bytes"
	"errors"
	"testing"
	"testing/quick"

	"github.com/danmuck/armwire/internal/protocol"
)

func TestArmStateRoundTrip(t *testing.T) {
	prop := func(kind uint8, value, armID uint32) bool {
		var in ArmState
		switch kind % 3 {
		case 0:
			in = Ready(armID)
		case 1:
			in = Working(armID, value)
		default:
			in = Waiting(armID)
		}
		out, err := DecodeArmState(EncodeArmState(in))
		return err == nil && out == in
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("arm state round trip: %v", err)
	}
}

func TestArmStateLayout(t *testing.T) {
	p := EncodeArmState(Working(3, 0x01020304))
	want := ArmStatePacket{1, 1, 2, 3, 4, 0, 0, 0, 3}
	if p != want {
		t.Fatalf("unexpected layout: got=%v want=%v", p, want)
	}

	// value is not carried outside the working variant
	p = EncodeArmState(ArmState{Kind: ArmWaiting, Value: 99, ArmID: 1})
	want = ArmStatePacket{2, 0, 0, 0, 0, 0, 0, 0, 1}
	if p != want {
		t.Fatalf("unexpected waiting layout: got=%v want=%v", p, want)
	}
}

func TestArmStateDecodeIgnoresValueOutsideWorking(t *testing.T) {
	s, err := DecodeArmState(ArmStatePacket{0, 0, 0, 0, 9, 0, 0, 0, 4})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != Ready(4) {
		t.Fatalf("unexpected state: %+v", s)
	}
}

func TestArmStateUnknownByte(t *testing.T) {
	for _, b := range []byte{3, 7, 0xff} {
		_, err := DecodeArmState(ArmStatePacket{b})
		var ub *protocol.UnknownByteError
		if !errors.As(err, &ub) || ub.Value != b {
			t.Fatalf("byte %d: expected UnknownByteError, got %v", b, err)
		}
	}
}

func TestItemReachRoundTrip(t *testing.T) {
	prop := func(in bool, index, x, y uint32) bool {
		s := ItemStatus{Reach: OutReach, Index: index, PosX: x, PosY: y}
		if in {
			s.Reach = InReach
		}
		out, err := DecodeItemReach(EncodeItemReach(s))
		return err == nil && out == s
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("item reach round trip: %v", err)
	}
}

func TestItemReachUnknownByte(t *testing.T) {
	_, err := DecodeItemReach(ItemReachPacket{2})
	var ub *protocol.UnknownByteError
	if !errors.As(err, &ub) || ub.Value != 2 {
		t.Fatalf("expected UnknownByteError{2}, got %v", err)
	}
}

func TestItemReachLegacyFiveBytePacket(t *testing.T) {
	// the earlier 5 byte revision is rejected on length before the tag is read
	_, err := ParseItemReach([]byte{2, 0, 0, 0, 0})
	var lenErr *protocol.LengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected LengthError, got %v", err)
	}
	if lenErr.Expected != ItemReachSize || lenErr.Actual != 5 {
		t.Fatalf("unexpected length error: %+v", lenErr)
	}

	// zero padded to the current size the bad tag is reported
	buf := make([]byte, ItemReachSize)
	copy(buf, []byte{2, 0, 0, 0, 0})
	_, err = ParseItemReach(buf)
	var ub *protocol.UnknownByteError
	if !errors.As(err, &ub) || ub.Value != 2 {
		t.Fatalf("expected UnknownByteError{2}, got %v", err)
	}
}

func TestNewItemKnownBytes(t *testing.T) {
	p := EncodeNewItem(NewItem{ID: 7, Location: 42})
	want := []byte{0, 0, 0, 7, 0, 0, 0, 42}
	if !bytes.Equal(p[:], want) {
		t.Fatalf("unexpected bytes: got=%v want=%v", p, want)
	}
	n, err := ParseNewItem(want)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n != (NewItem{ID: 7, Location: 42}) {
		t.Fatalf("unexpected item: %+v", n)
	}
}

func TestNewItemRoundTrip(t *testing.T) {
	prop := func(id, loc uint32) bool {
		out, err := DecodeNewItem(EncodeNewItem(NewItem{ID: id, Location: loc}))
		return err == nil && out.ID == id && out.Location == loc
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("new item round trip: %v", err)
	}
}

func TestSingleIDFormatsRoundTrip(t *testing.T) {
	prop := func(id uint32) bool {
		take, err := DecodeTakeItem(EncodeTakeItem(TakeItem{ID: id}))
		if err != nil || take.ID != id {
			return false
		}
		pick, err := DecodePickUpItem(EncodePickUpItem(PickUpItem{ID: id}))
		return err == nil && pick.ID == id
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("id round trip: %v", err)
	}
}

func TestParseLengthChecks(t *testing.T) {
	cases := []struct {
		name  string
		size  int
		parse func([]byte) error
	}{
		{"arm_state", ArmStateSize, func(b []byte) error { _, err := ParseArmState(b); return err }},
		{"item_reach", ItemReachSize, func(b []byte) error { _, err := ParseItemReach(b); return err }},
		{"new_item", NewItemSize, func(b []byte) error { _, err := ParseNewItem(b); return err }},
		{"take_item", TakeItemSize, func(b []byte) error { _, err := ParseTakeItem(b); return err }},
		{"pick_up_item", PickUpItemSize, func(b []byte) error { _, err := ParsePickUpItem(b); return err }},
	}
	for _, tc := range cases {
		for _, n := range []int{0, tc.size - 1, tc.size + 1} {
			err := tc.parse(make([]byte, n))
			var lenErr *protocol.LengthError
			if !errors.As(err, &lenErr) {
				t.Fatalf("%s len=%d: expected LengthError, got %v", tc.name, n, err)
			}
			if lenErr.Expected != tc.size || lenErr.Actual != n {
				t.Fatalf("%s len=%d: unexpected length error %+v", tc.name, n, lenErr)
			}
		}
		if err := tc.parse(make([]byte, tc.size)); err != nil {
			t.Fatalf("%s: zero packet of exact size should parse: %v", tc.name, err)
		}
	}
}

func TestCodecsMatchFixedEntryPoints(t *testing.T) {
	s := Working(2, 77)
	out, err := ArmStateCodec.Decode(ArmStateCodec.Encode(s))
	if err != nil || out != s {
		t.Fatalf("arm state codec: out=%+v err=%v", out, err)
	}
	r := ItemStatus{Reach: InReach, Index: 1, PosX: 10, PosY: 20}
	outR, err := ItemReachCodec.Decode(ItemReachCodec.Encode(r))
	if err != nil || outR != r {
		t.Fatalf("item reach codec: out=%+v err=%v", outR, err)
	}
	if _, err := NewItemCodec.Decode([]byte{1}); !errors.Is(err, protocol.ErrInvalidLength) {
		t.Fatalf("expected invalid length, got %v", err)
	}
	sizes := map[int]int{
		ArmStateCodec.Size():   ArmStateSize,
		ItemReachCodec.Size():  ItemReachSize,
		NewItemCodec.Size():    NewItemSize,
		TakeItemCodec.Size():   TakeItemSize,
		PickUpItemCodec.Size(): PickUpItemSize,
	}
	for got, want := range sizes {
		if got != want {
			t.Fatalf("codec size mismatch: got=%d want=%d", got, want)
		}
	}
}
