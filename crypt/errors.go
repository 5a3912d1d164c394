// notebook/crypt/errors.go
package crypt

import "errors"

var (
	// ErrUnsupportedAlgorithm indicates an unknown cipher or hash ID.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInputEmpty indicates empty data, key or password.
	ErrInputEmpty = errors.New("input is empty")

	// ErrCipher indicates that decryption produced no usable plaintext.
	ErrCipher = errors.New("cipher failure")
)
