// notebook/codec/errors.go
package codec

import (
	"errors"
	"fmt"

	"github.com/vinizap/lumi/notebook/crypt"
	"github.com/vinizap/lumi/notebook/wire"
)

// File framing errors
var (
	// ErrFileTooSmall indicates a file shorter than signature plus checksum.
	ErrFileTooSmall = errors.New("file too small")

	// ErrMalformedSignature indicates a file that does not start with Signature.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrIntegrity indicates a CRC32 mismatch over the file.
	ErrIntegrity = wire.ErrIntegrity

	// ErrTruncated indicates a section or field that runs past its buffer.
	ErrTruncated = wire.ErrTruncated

	// ErrUnsupportedVersion indicates a file with a newer major version.
	ErrUnsupportedVersion = errors.New("unsupported file version")

	// ErrMalformedData indicates structurally invalid content: dangling or
	// duplicate references, orphaned items, bad discriminants or settings.
	ErrMalformedData = errors.New("malformed document data")
)

// Policy errors
var (
	// ErrAborted indicates the user declined to continue or cancelled the
	// password prompt.
	ErrAborted = errors.New("operation aborted")
)

// Cipher errors
var (
	// ErrUnsupportedAlgorithm indicates an unknown cipher or hash ID.
	ErrUnsupportedAlgorithm = crypt.ErrUnsupportedAlgorithm

	// ErrCipher indicates decryption produced no usable plaintext.
	ErrCipher = crypt.ErrCipher

	// ErrInputEmpty indicates empty input to a cipher or hash operation.
	ErrInputEmpty = crypt.ErrInputEmpty
)

// IOError reports a failure reading or writing the notebook file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("notebook: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedData, fmt.Sprintf(format, args...))
}
