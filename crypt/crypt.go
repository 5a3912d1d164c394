// notebook/crypt/crypt.go

// Package crypt encrypts the inner data block of a notebook file and derives
// the key and the password check value from a password. Algorithms are
// selected by the small integer IDs stored in the file header.
//
// Cipher 1 uses a fixed IV and hash/secure-hash 0 feed the same password to
// one hash state 1000 times instead of chaining digests. Both are kept for
// compatibility with existing files and give weak confidentiality; IDs 1 of
// the hash families switch to PBKDF2 and Argon2id but still use a fixed salt,
// because the header has no field for one.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Cipher IDs. 0 means the inner block is stored in the clear.
const (
	CipherNone      uint8 = 0
	CipherAES128CBC uint8 = 1
)

// Key-derivation hash IDs.
const (
	HashRepeatedSHA256 uint8 = 0
	HashPBKDF2SHA256   uint8 = 1
)

// Password-check hash IDs.
const (
	SecureHashRepeatedHMAC uint8 = 0
	SecureHashArgon2id     uint8 = 1
)

const (
	KeySize        = 16
	CheckSize      = 32
	hashIterations = 1000
	pbkdf2Rounds   = 10000
)

var (
	ivSeed    = []byte("lumi.notebook/cbc-iv")
	checkKey  = []byte("lumi.notebook/password-check")
	kdfSalt   = []byte("lumi.notebook/kdf-salt")
	checkSalt = []byte("lumi.notebook/check-salt")

	fixedIV = func() []byte {
		sum := sha256.Sum256(ivSeed)
		return sum[:aes.BlockSize]
	}()
)

var supportedCiphers = []uint8{CipherAES128CBC}

// SupportedCiphers lists the cipher IDs that Encrypt and Decrypt accept.
func SupportedCiphers() []uint8 {
	return append([]uint8(nil), supportedCiphers...)
}

func IsCipherSupported(id uint8) bool {
	for _, c := range supportedCiphers {
		if c == id {
			return true
		}
	}
	return false
}

func IsHashSupported(id uint8) bool {
	return id == HashRepeatedSHA256 || id == HashPBKDF2SHA256
}

func IsSecureHashSupported(id uint8) bool {
	return id == SecureHashRepeatedHMAC || id == SecureHashArgon2id
}

// Encrypt pads plaintext with PKCS#7 and encrypts it in CBC mode.
func Encrypt(plaintext, key []byte, cipherID uint8) ([]byte, error) {
	if !IsCipherSupported(cipherID) {
		return nil, fmt.Errorf("encrypt with cipher %d: %w", cipherID, ErrUnsupportedAlgorithm)
	}
	if len(plaintext) == 0 || len(key) == 0 {
		return nil, fmt.Errorf("encrypt: %w", ErrInputEmpty)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w: %v", ErrCipher, err)
	}
	padded := pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, fixedIV).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt reverses Encrypt. A ciphertext that is not block aligned, carries
// bad padding or decrypts to nothing fails with ErrCipher.
func Decrypt(ciphertext, key []byte, cipherID uint8) ([]byte, error) {
	if !IsCipherSupported(cipherID) {
		return nil, fmt.Errorf("decrypt with cipher %d: %w", cipherID, ErrUnsupportedAlgorithm)
	}
	if len(ciphertext) == 0 || len(key) == 0 {
		return nil, fmt.Errorf("decrypt: %w", ErrInputEmpty)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w: %v", ErrCipher, err)
	}
	if len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("decrypt: %w: %d bytes is not block aligned", ErrCipher, len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, fixedIV).CryptBlocks(out, ciphertext)
	out, err = unpad(out, block.BlockSize())
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("decrypt: %w: empty plaintext", ErrCipher)
	}
	return out, nil
}

// DeriveKey turns a password into a cipher key.
func DeriveKey(password []byte, hashID uint8) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("derive key: %w", ErrInputEmpty)
	}
	switch hashID {
	case HashRepeatedSHA256:
		h := sha256.New()
		for i := 0; i < hashIterations; i++ {
			h.Write(password)
		}
		return h.Sum(nil)[:KeySize], nil
	case HashPBKDF2SHA256:
		return pbkdf2.Key(password, kdfSalt, pbkdf2Rounds, KeySize, sha256.New), nil
	default:
		return nil, fmt.Errorf("derive key with hash %d: %w", hashID, ErrUnsupportedAlgorithm)
	}
}

// DerivePasswordCheck returns the value stored in the header to recognise
// the right password. It is independent of the cipher key.
func DerivePasswordCheck(password []byte, secureHashID uint8) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("derive password check: %w", ErrInputEmpty)
	}
	switch secureHashID {
	case SecureHashRepeatedHMAC:
		mac := hmac.New(sha256.New, checkKey)
		for i := 0; i < hashIterations; i++ {
			mac.Write(password)
		}
		return mac.Sum(nil), nil
	case SecureHashArgon2id:
		return argon2.IDKey(password, checkSalt, 1, 19*1024, 1, CheckSize), nil
	default:
		return nil, fmt.Errorf("derive password check with hash %d: %w", secureHashID, ErrUnsupportedAlgorithm)
	}
}

// CheckPassword reports whether candidate produces the stored check value.
// The comparison is a plain byte equality, not constant time.
func CheckPassword(candidate, stored []byte, secureHashID uint8) (bool, error) {
	check, err := DerivePasswordCheck(candidate, secureHashID)
	if err != nil {
		return false, err
	}
	return bytes.Equal(check, stored), nil
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("unpad: %w: bad length %d", ErrCipher, len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, fmt.Errorf("unpad: %w: bad padding", ErrCipher)
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, fmt.Errorf("unpad: %w: bad padding", ErrCipher)
		}
	}
	return b[:len(b)-n], nil
}
