package protocol

// Decoder turns one raw packet buffer into a typed value or a decode failure.
type Decoder[T any] func(b []byte) (T, error)

// Encoder turns a typed value into its fixed-width wire bytes.
type Encoder[T any] func(v T) []byte

// Codec pairs a fixed packet size with both directions of conversion.
// For every representable v, Decode(Encode(v)) == v.
type Codec[T any] interface {
	Size() int
	Encode(v T) []byte
	Decode(b []byte) (T, error)
}

// FuncCodec adapts a size and a pair of functions into a Codec.
type FuncCodec[T any] struct {
	N   int
	Enc Encoder[T]
	Dec Decoder[T]
}

func (c FuncCodec[T]) Size() int {
	return c.N
}

func (c FuncCodec[T]) Encode(v T) []byte {
	return c.Enc(v)
}

// Decode validates the length before handing the bytes to the decoder.
func (c FuncCodec[T]) Decode(b []byte) (T, error) {
	if err := CheckLen(b, c.N); err != nil {
		var zero T
		return zero, err
	}
	return c.Dec(b)
}

// Erase widens a typed codec to a Decoder[any] for configuration-driven callers.
func Erase[T any](dec Decoder[T]) Decoder[any] {
	return func(b []byte) (any, error) {
		v, err := dec(b)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
