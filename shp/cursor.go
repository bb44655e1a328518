package shp

import (
	"encoding/binary"
	"math"
)

// Cursor is a forward-only reader over a byte slice.
//
// Every read either consumes exactly the bytes it needs or fails with a
// *DecodeError and leaves the cursor where it was.
type Cursor struct {
	buf  []byte
	off  int
	base int64 // absolute offset of buf[0], used in errors
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.off }

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if _, err := c.next(n); err != nil {
		return err
	}
	return nil
}

// Bytes consumes n bytes and returns them without copying.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.next(n)
}

// Uint32LE reads a little-endian uint32.
func (c *Cursor) Uint32LE() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint32BE reads a big-endian uint32.
func (c *Cursor) Uint32BE() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32LE reads a little-endian int32.
func (c *Cursor) Int32LE() (int32, error) {
	v, err := c.Uint32LE()
	return int32(v), err
}

// Int32BE reads a big-endian int32.
func (c *Cursor) Int32BE() (int32, error) {
	v, err := c.Uint32BE()
	return int32(v), err
}

// Float64LE reads a little-endian IEEE-754 double.
func (c *Cursor) Float64LE() (float64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, &DecodeError{Offset: c.base + int64(c.off), Need: n, Have: c.Remaining()}
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}
