// notebook/wire/checksum.go
package wire

import (
	"fmt"
	"hash/crc32"
)

// ChecksumSize is the width of the trailing CRC32 field.
const ChecksumSize = 4

// Checksum returns the IEEE CRC32 of b.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// AppendChecksum appends the CRC32 of b to b.
func AppendChecksum(b []byte) []byte {
	return ByteOrder.AppendUint32(b, Checksum(b))
}

// VerifyChecksum recomputes the CRC32 over everything but the trailing
// checksum field and compares it with that field.
func VerifyChecksum(b []byte) error {
	if len(b) < ChecksumSize {
		return fmt.Errorf("checksum of %d-byte buffer: %w", len(b), ErrTruncated)
	}
	body := b[:len(b)-ChecksumSize]
	stored := ByteOrder.Uint32(b[len(body):])
	if got := Checksum(body); got != stored {
		return fmt.Errorf("%w: stored %08x, computed %08x", ErrIntegrity, stored, got)
	}
	return nil
}
