package protocol

import "encoding/binary"

// Cursor reads successive big-endian u32 fields from a byte slice.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Uint32 consumes the next four bytes. It fails without advancing when fewer
// than four bytes remain.
func (c *Cursor) Uint32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(c.buf[c.off : c.off+4])
	c.off += 4
	return v, nil
}

// Uint32s fills dst in order, stopping at the first short read.
func (c *Cursor) Uint32s(dst ...*uint32) error {
	for _, d := range dst {
		v, err := c.Uint32()
		if err != nil {
			return err
		}
		*d = v
	}
	return nil
}

func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

func (c *Cursor) Offset() int {
	return c.off
}

// PutUint32s writes vals big-endian into b starting at off and returns the
// offset after the last write. b must be large enough.
func PutUint32s(b []byte, off int, vals ...uint32) int {
	for _, v := range vals {
		binary.BigEndian.PutUint32(b[off:off+4], v)
		off += 4
	}
	return off
}
