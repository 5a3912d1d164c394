// notebook/compression/compression.go

// Package compression packs the inner data block with zlib. A compressed
// block is a little-endian u32 holding the uncompressed size followed by the
// zlib stream.
package compression

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	// LevelStore means no compression; callers skip Compress entirely.
	LevelStore   = 0
	LevelFastest = 1
	LevelDefault = 6
	LevelBest    = 9

	// MaxBlockSize caps the declared uncompressed size accepted by Decompress.
	MaxBlockSize = 1 << 30

	// A deflate stream expands at most maxRatio times; maxSlack covers the
	// zlib header and trailer of tiny blocks.
	maxRatio = 1032
	maxSlack = 64
)

var (
	// ErrLevel indicates a level outside 1..9.
	ErrLevel = errors.New("compression level out of range")

	// ErrCorrupt indicates a block that does not decompress to its declared size.
	ErrCorrupt = errors.New("corrupt compressed block")
)

// ValidLevel reports whether level can be stored in a file header.
func ValidLevel(level int) bool {
	return level >= LevelStore && level <= LevelBest
}

// Compress deflates data at level (1..9).
func Compress(data []byte, level int) ([]byte, error) {
	if level < LevelFastest || level > LevelBest {
		return nil, fmt.Errorf("compress at level %d: %w", level, ErrLevel)
	}
	if uint64(len(data)) > MaxBlockSize {
		return nil, fmt.Errorf("compress %d bytes: %w", len(data), ErrCorrupt)
	}

	var buf bytes.Buffer
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(data)))
	buf.Write(size[:])

	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a block produced by Compress.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("decompress %d bytes: %w", len(data), ErrCorrupt)
	}
	size := binary.LittleEndian.Uint32(data)
	if size > MaxBlockSize {
		return nil, fmt.Errorf("decompress: declared size %d: %w", size, ErrCorrupt)
	}
	if uint64(size) > uint64(len(data)-4)*maxRatio+maxSlack {
		return nil, fmt.Errorf("decompress: declared size %d from %d bytes: %w", size, len(data)-4, ErrCorrupt)
	}

	zr, err := zlib.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w: %v", ErrCorrupt, err)
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("decompress: %w: %v", ErrCorrupt, err)
	}
	// The stream must end, checksum included, exactly at the declared size.
	rest, err := io.ReadAll(io.LimitReader(zr, 1))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w: %v", ErrCorrupt, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decompress: %w: more than %d bytes", ErrCorrupt, size)
	}
	return out, nil
}
