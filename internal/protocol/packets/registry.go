package packets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/armwire/internal/protocol"
)

var (
	ErrFormatExists     = errors.New("packets: format already exists")
	ErrFormatNotFound   = errors.New("packets: format not found")
	ErrInvalidFormat    = errors.New("packets: invalid format")
	ErrUnknownVariant   = errors.New("packets: unknown variant")
	ErrUnknownField     = errors.New("packets: unknown field")
	ErrValueTypeInvalid = errors.New("packets: value type does not match format")
)

// Format describes one wire format with its codec erased to any so that
// listeners and tools can be selected by name at runtime.
type Format struct {
	Name     string
	Size     int
	Variants []string
	Fields   []string
	Decode   protocol.Decoder[any]
	Encode   func(v any) ([]byte, error)
	Build    func(variant string, fields map[string]uint32) (any, error)
}

// Registry stores formats by name.
type Registry struct {
	items map[string]Format
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Format)}
}

// DefaultRegistry returns a fresh registry holding every format of this package.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range builtinFormats() {
		if err := r.Register(f); err != nil {
			panic(fmt.Sprintf("packets: builtin format %q: %v", f.Name, err))
		}
	}
	return r
}

func (r *Registry) Register(f Format) error {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	if name == "" || f.Size <= 0 || f.Decode == nil || f.Encode == nil {
		return fmt.Errorf("%w: name, size, decode and encode are required", ErrInvalidFormat)
	}
	if _, ok := r.items[name]; ok {
		return ErrFormatExists
	}
	f.Name = name
	r.items[name] = f
	return nil
}

func (r *Registry) Lookup(name string) (Format, error) {
	f, ok := r.items[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrFormatNotFound, name)
	}
	return f, nil
}

// Names returns registered format names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.items))
	for name := range r.items {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func erasedEncode[T any](codec protocol.Codec[T]) func(any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		typed, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrValueTypeInvalid, v)
		}
		return codec.Encode(typed), nil
	}
}

func checkFields(fields map[string]uint32, allowed ...string) error {
	for name := range fields {
		found := false
		for _, a := range allowed {
			if name == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	return nil
}

func builtinFormats() []Format {
	return []Format{
		{
			Name:     "arm_state",
			Size:     ArmStateSize,
			Variants: []string{ArmReady.String(), ArmWorking.String(), ArmWaiting.String()},
			Fields:   []string{"value", "arm_id"},
			Decode:   protocol.Erase(ArmStateCodec.Decode),
			Encode:   erasedEncode(ArmStateCodec),
			Build: func(variant string, fields map[string]uint32) (any, error) {
				if err := checkFields(fields, "value", "arm_id"); err != nil {
					return nil, err
				}
				switch variant {
				case ArmReady.String():
					return Ready(fields["arm_id"]), nil
				case ArmWorking.String():
					return Working(fields["arm_id"], fields["value"]), nil
				case ArmWaiting.String():
					return Waiting(fields["arm_id"]), nil
				default:
					return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
				}
			},
		},
		{
			Name:     "item_reach",
			Size:     ItemReachSize,
			Variants: []string{InReach.String(), OutReach.String()},
			Fields:   []string{"index", "pos_x", "pos_y"},
			Decode:   protocol.Erase(ItemReachCodec.Decode),
			Encode:   erasedEncode(ItemReachCodec),
			Build: func(variant string, fields map[string]uint32) (any, error) {
				if err := checkFields(fields, "index", "pos_x", "pos_y"); err != nil {
					return nil, err
				}
				s := ItemStatus{Index: fields["index"], PosX: fields["pos_x"], PosY: fields["pos_y"]}
				switch variant {
				case InReach.String():
					s.Reach = InReach
				case OutReach.String():
					s.Reach = OutReach
				default:
					return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
				}
				return s, nil
			},
		},
		{
			Name:   "new_item",
			Size:   NewItemSize,
			Fields: []string{"id", "location"},
			Decode: protocol.Erase(NewItemCodec.Decode),
			Encode: erasedEncode(NewItemCodec),
			Build: func(_ string, fields map[string]uint32) (any, error) {
				if err := checkFields(fields, "id", "location"); err != nil {
					return nil, err
				}
				return NewItem{ID: fields["id"], Location: fields["location"]}, nil
			},
		},
		{
			Name:   "take_item",
			Size:   TakeItemSize,
			Fields: []string{"id"},
			Decode: protocol.Erase(TakeItemCodec.Decode),
			Encode: erasedEncode(TakeItemCodec),
			Build: func(_ string, fields map[string]uint32) (any, error) {
				if err := checkFields(fields, "id"); err != nil {
					return nil, err
				}
				return TakeItem{ID: fields["id"]}, nil
			},
		},
		{
			Name:   "pick_up_item",
			Size:   PickUpItemSize,
			Fields: []string{"id"},
			Decode: protocol.Erase(PickUpItemCodec.Decode),
			Encode: erasedEncode(PickUpItemCodec),
			Build: func(_ string, fields map[string]uint32) (any, error) {
				if err := checkFields(fields, "id"); err != nil {
					return nil, err
				}
				return PickUpItem{ID: fields["id"]}, nil
			},
		},
	}
}
