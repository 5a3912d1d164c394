// notebook/wire/cursor.go

// Package wire implements the byte-level primitives of the notebook file:
// a seekable little-endian cursor over an in-memory buffer and the
// whole-file CRC32 guard.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// ByteOrder is the integer byte order of every field in the file.
var ByteOrder = binary.LittleEndian

// Cursor reads and writes fixed-width values at an explicit position.
// Writing past the end grows the buffer; writing before the end overwrites.
type Cursor struct {
	buf []byte
	pos int
}

// NewReader returns a cursor positioned at the start of buf.
func NewReader(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// NewWriter returns an empty cursor with room for sizeHint bytes.
func NewWriter(sizeHint int) *Cursor {
	return &Cursor{buf: make([]byte, 0, sizeHint)}
}

func (c *Cursor) Bytes() []byte  { return c.buf }
func (c *Cursor) Len() int       { return len(c.buf) }
func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Seek moves to an absolute offset within [0, Len()].
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("seek to %d of %d: %w", pos, len(c.buf), ErrTruncated)
	}
	c.pos = pos
	return nil
}

// SeekEnd moves to the end of the buffer.
func (c *Cursor) SeekEnd() {
	c.pos = len(c.buf)
}

func (c *Cursor) grow(n int) []byte {
	end := c.pos + n
	if end > len(c.buf) {
		if end > cap(c.buf) {
			nb := make([]byte, len(c.buf), 2*cap(c.buf)+n)
			copy(nb, c.buf)
			c.buf = nb
		}
		c.buf = c.buf[:end]
	}
	b := c.buf[c.pos:end]
	c.pos = end
	return b
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("read %d bytes at %d of %d: %w", n, c.pos, len(c.buf), ErrTruncated)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) WriteU8(v uint8) { c.grow(1)[0] = v }

func (c *Cursor) WriteU16(v uint16) { ByteOrder.PutUint16(c.grow(2), v) }

func (c *Cursor) WriteU32(v uint32) { ByteOrder.PutUint32(c.grow(4), v) }

func (c *Cursor) WriteU64(v uint64) { ByteOrder.PutUint64(c.grow(8), v) }

func (c *Cursor) WriteBool(v bool) {
	if v {
		c.WriteU8(1)
		return
	}
	c.WriteU8(0)
}

// WriteTime stores t as signed Unix milliseconds.
func (c *Cursor) WriteTime(t time.Time) {
	c.WriteU64(uint64(t.UnixMilli()))
}

// WriteRaw copies b without a length prefix.
func (c *Cursor) WriteRaw(b []byte) { copy(c.grow(len(b)), b) }

// WriteBlock writes a u32 byte count followed by b.
func (c *Cursor) WriteBlock(b []byte) error {
	if uint64(len(b)) > math.MaxUint32 {
		return fmt.Errorf("block of %d bytes: %w", len(b), ErrTooLarge)
	}
	c.WriteU32(uint32(len(b)))
	c.WriteRaw(b)
	return nil
}

func (c *Cursor) WriteString(s string) error {
	return c.WriteBlock([]byte(s))
}

// BeginLength writes a zero u32 placeholder and returns its offset, to be
// passed to EndLength once the variable-length content has been written.
func (c *Cursor) BeginLength() int {
	mark := c.pos
	c.WriteU32(0)
	return mark
}

// EndLength seeks back to the placeholder at mark, stores the number of bytes
// written after it, and returns to where writing left off.
func (c *Cursor) EndLength(mark int) error {
	end := c.pos
	n := end - mark - 4
	if n < 0 {
		return fmt.Errorf("length mark %d after position %d: %w", mark, end, ErrTruncated)
	}
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("section of %d bytes: %w", n, ErrTooLarge)
	}
	if err := c.Seek(mark); err != nil {
		return err
	}
	c.WriteU32(uint32(n))
	return c.Seek(end)
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint16(b), nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint32(b), nil
}

func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return ByteOrder.Uint64(b), nil
}

func (c *Cursor) ReadBool() (bool, error) {
	v, err := c.ReadU8()
	return v != 0, err
}

func (c *Cursor) ReadTime() (time.Time, error) {
	v, err := c.ReadU64()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(v)).UTC(), nil
}

// ReadRaw returns the next n bytes. The result aliases the buffer.
func (c *Cursor) ReadRaw(n int) ([]byte, error) {
	return c.take(n)
}

// ReadBlock reads a u32 byte count and that many bytes. The result aliases
// the buffer.
func (c *Cursor) ReadBlock() ([]byte, error) {
	n, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(c.Remaining()) {
		return nil, fmt.Errorf("block of %d bytes at %d of %d: %w", n, c.pos, len(c.buf), ErrTruncated)
	}
	return c.take(int(n))
}

func (c *Cursor) ReadString() (string, error) {
	b, err := c.ReadBlock()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadSection reads a length-prefixed block and returns a cursor confined to
// it. Whatever the section cursor leaves unread is skipped.
func (c *Cursor) ReadSection() (*Cursor, error) {
	b, err := c.ReadBlock()
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}
