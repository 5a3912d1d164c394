// notebook/codec/header.go
package codec

import (
	"bytes"
	"fmt"

	"github.com/vinizap/lumi/notebook/domain"
	"github.com/vinizap/lumi/notebook/wire"
)

// Signature opens every notebook file.
const Signature = "LUMINOTES"

const minFileSize = len(Signature) + wire.ChecksumSize

// Header is the outer frame of a notebook file.
type Header struct {
	Version          domain.Version
	CompressionLevel uint8
	CipherID         uint8
	HashID           uint8
	SecureHashID     uint8
	PasswordCheck    []byte

	// Data is the inner block as stored: compressed and/or encrypted
	// according to the fields above.
	Data []byte
}

// Encrypted reports whether the inner block needs a password.
func (h *Header) Encrypted() bool { return h.CipherID != 0 }

// ReadHeader checks size, checksum and signature of a whole file and parses
// its outer frame. The checksum is verified before anything else is looked
// at, signature included.
func ReadHeader(file []byte) (*Header, error) {
	if len(file) < minFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooSmall, len(file))
	}
	if err := wire.VerifyChecksum(file); err != nil {
		return nil, err
	}
	if !bytes.Equal(file[:len(Signature)], []byte(Signature)) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedSignature, file[:len(Signature)])
	}

	r := wire.NewReader(file[:len(file)-wire.ChecksumSize])
	if err := r.Seek(len(Signature)); err != nil {
		return nil, err
	}

	h := &Header{}
	v, err := r.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	h.Version = domain.VersionFromUint16(v)
	if h.CompressionLevel, err = r.ReadU8(); err != nil {
		return nil, fmt.Errorf("read compression level: %w", err)
	}
	if h.CipherID, err = r.ReadU8(); err != nil {
		return nil, fmt.Errorf("read cipher id: %w", err)
	}
	if h.Encrypted() {
		if h.HashID, err = r.ReadU8(); err != nil {
			return nil, fmt.Errorf("read hash id: %w", err)
		}
		if h.SecureHashID, err = r.ReadU8(); err != nil {
			return nil, fmt.Errorf("read secure hash id: %w", err)
		}
		if h.PasswordCheck, err = r.ReadBlock(); err != nil {
			return nil, fmt.Errorf("read password check: %w", err)
		}
	}
	if h.Data, err = r.ReadBlock(); err != nil {
		return nil, fmt.Errorf("read data block: %w", err)
	}
	if r.Remaining() != 0 {
		return nil, malformed("%d stray bytes before checksum", r.Remaining())
	}
	return h, nil
}

func writeHeader(h *Header) ([]byte, error) {
	w := wire.NewWriter(minFileSize + 64 + len(h.Data))
	w.WriteRaw([]byte(Signature))
	w.WriteU16(h.Version.Uint16())
	w.WriteU8(h.CompressionLevel)
	w.WriteU8(h.CipherID)
	if h.Encrypted() {
		w.WriteU8(h.HashID)
		w.WriteU8(h.SecureHashID)
		if err := w.WriteBlock(h.PasswordCheck); err != nil {
			return nil, err
		}
	}
	if err := w.WriteBlock(h.Data); err != nil {
		return nil, err
	}
	return wire.AppendChecksum(w.Bytes()), nil
}
