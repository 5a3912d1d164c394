package wire

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCursorPrimitives(t *testing.T) {
	w := NewWriter(0)
	w.WriteU8(0xAB)
	w.WriteU16(0x1234)
	w.WriteU32(0xDEADBEEF)
	w.WriteU64(1 << 40)
	w.WriteBool(true)
	ts := time.UnixMilli(1700000000123).UTC()
	w.WriteTime(ts)
	if err := w.WriteString("héllo"); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if err := w.WriteBlock(nil); err != nil {
		t.Fatalf("WriteBlock failed: %v", err)
	}

	r := NewReader(w.Bytes())
	u8, _ := r.ReadU8()
	u16, _ := r.ReadU16()
	u32, _ := r.ReadU32()
	u64, _ := r.ReadU64()
	b, _ := r.ReadBool()
	gotTime, _ := r.ReadTime()
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	empty, err := r.ReadBlock()
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}

	if u8 != 0xAB || u16 != 0x1234 || u32 != 0xDEADBEEF || u64 != 1<<40 || !b {
		t.Errorf("primitives = %x %x %x %x %v", u8, u16, u32, u64, b)
	}
	if !gotTime.Equal(ts) {
		t.Errorf("ReadTime = %v, want %v", gotTime, ts)
	}
	if s != "héllo" {
		t.Errorf("ReadString = %q, want %q", s, "héllo")
	}
	if len(empty) != 0 {
		t.Errorf("ReadBlock = %v, want empty", empty)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestCursorLittleEndian(t *testing.T) {
	w := NewWriter(4)
	w.WriteU32(0x01020304)
	if diff := cmp.Diff([]byte{4, 3, 2, 1}, w.Bytes()); diff != "" {
		t.Errorf("WriteU32 bytes (-want +got):\n%s", diff)
	}
}

func TestCursorBackpatch(t *testing.T) {
	w := NewWriter(0)
	w.WriteU8(7)
	mark := w.BeginLength()
	w.WriteRaw([]byte("abcde"))
	if err := w.EndLength(mark); err != nil {
		t.Fatalf("EndLength failed: %v", err)
	}
	w.WriteU8(9)

	want := []byte{7, 5, 0, 0, 0, 'a', 'b', 'c', 'd', 'e', 9}
	if diff := cmp.Diff(want, w.Bytes()); diff != "" {
		t.Errorf("backpatched buffer (-want +got):\n%s", diff)
	}
	if w.Pos() != w.Len() {
		t.Errorf("Pos = %d after backpatch, want end %d", w.Pos(), w.Len())
	}
}

func TestCursorNestedBackpatch(t *testing.T) {
	w := NewWriter(0)
	outer := w.BeginLength()
	inner := w.BeginLength()
	w.WriteU16(1)
	w.EndLength(inner)
	w.WriteU8(2)
	w.EndLength(outer)

	r := NewReader(w.Bytes())
	sec, err := r.ReadSection()
	if err != nil {
		t.Fatalf("ReadSection failed: %v", err)
	}
	if sec.Len() != 7 {
		t.Fatalf("outer section length = %d, want 7", sec.Len())
	}
	in, _ := sec.ReadSection()
	if in.Len() != 2 {
		t.Errorf("inner section length = %d, want 2", in.Len())
	}
}

func TestCursorTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*Cursor) error
	}{
		{"u16", []byte{1}, func(c *Cursor) error { _, err := c.ReadU16(); return err }},
		{"u32", []byte{1, 2, 3}, func(c *Cursor) error { _, err := c.ReadU32(); return err }},
		{"u64", []byte{1, 2, 3, 4}, func(c *Cursor) error { _, err := c.ReadU64(); return err }},
		{"block", []byte{9, 0, 0, 0, 'x'}, func(c *Cursor) error { _, err := c.ReadBlock(); return err }},
		{"huge block", []byte{0xff, 0xff, 0xff, 0xff}, func(c *Cursor) error { _, err := c.ReadBlock(); return err }},
		{"seek", []byte{1}, func(c *Cursor) error { return c.Seek(2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(tt.data))
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestSectionSkipsTrailingBytes(t *testing.T) {
	w := NewWriter(0)
	mark := w.BeginLength()
	w.WriteU32(42)
	w.WriteRaw([]byte("future fields"))
	w.EndLength(mark)
	w.WriteU8(0xEE)

	r := NewReader(w.Bytes())
	sec, _ := r.ReadSection()
	v, _ := sec.ReadU32()
	if v != 42 {
		t.Errorf("section value = %d, want 42", v)
	}
	next, err := r.ReadU8()
	if err != nil || next != 0xEE {
		t.Errorf("byte after section = %x, %v; want ee", next, err)
	}
}
