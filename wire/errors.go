// notebook/wire/errors.go
package wire

import "errors"

var (
	// ErrTruncated indicates a read or seek past the end of the buffer.
	ErrTruncated = errors.New("truncated data")

	// ErrIntegrity indicates a CRC32 mismatch.
	ErrIntegrity = errors.New("checksum mismatch")

	// ErrTooLarge indicates a block that does not fit a u32 length prefix.
	ErrTooLarge = errors.New("block exceeds 4 GiB")
)
