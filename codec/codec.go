// notebook/codec/codec.go

// Package codec reads and writes notebook files.
//
// A file is a signature, a version, the compression and cipher settings, an
// optional password check, the inner data block and a trailing CRC32. The
// inner block holds nine length-prefixed sections. Entities are numbered
// with surrogate IDs while saving; loading first materialises every entity
// by ID and only then links folders, notes and tags through those IDs.
package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vinizap/lumi/notebook/compression"
	"github.com/vinizap/lumi/notebook/crypt"
	"github.com/vinizap/lumi/notebook/domain"
)

// CurrentVersion is the newest format this codec writes and fully reads.
var CurrentVersion = domain.Version{Major: 1, Minor: 0}

type Codec struct {
	policy  Policy
	logger  zerolog.Logger
	version domain.Version
}

type Option func(*Codec)

// WithPolicy sets the callbacks used for version confirmation and
// password entry. The default denies both.
func WithPolicy(p Policy) Option {
	return func(c *Codec) {
		if p == nil {
			c.policy = DenyPolicy{}
			return
		}
		c.policy = p
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// WithVersion makes the codec behave as a reader of version v.
func WithVersion(v domain.Version) Option {
	return func(c *Codec) { c.version = v }
}

func New(opts ...Option) *Codec {
	c := &Codec{
		policy:  DenyPolicy{},
		logger:  zerolog.Nop(),
		version: CurrentVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Version returns the format version the codec reads.
func (c *Codec) Version() domain.Version { return c.version }

// Open reads and decodes the notebook at path.
func (c *Codec) Open(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	doc, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	c.logger.Info().Str("path", path).Int("bytes", len(data)).
		Int("notes", len(doc.Notes())).Int("folders", len(doc.Folders())).
		Msg("notebook opened")
	return doc, nil
}

// Save encodes doc as version and replaces the file at path. The data is
// written to a temporary file next to path first; on any failure that file
// is removed and path is left untouched. doc itself is not modified.
func (c *Codec) Save(doc *domain.Document, path string, version domain.Version) error {
	data, err := c.Encode(doc, version)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := writeFileSync(tmp, data); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	c.logger.Info().Str("path", path).Int("bytes", len(data)).
		Str("version", version.String()).Msg("notebook saved")
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode produces the file bytes for doc using the document's compression,
// cipher and password settings.
func (c *Codec) Encode(doc *domain.Document, version domain.Version) ([]byte, error) {
	if err := checkSettings(doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}

	inner, err := encodeInner(doc, c.logger)
	if err != nil {
		return nil, err
	}

	h := &Header{
		Version:          version,
		CompressionLevel: uint8(doc.CompressionLevel),
		CipherID:         doc.CipherID,
		Data:             inner,
	}
	if doc.CompressionLevel != compression.LevelStore {
		if h.Data, err = compression.Compress(h.Data, doc.CompressionLevel); err != nil {
			return nil, err
		}
	}
	if h.Encrypted() {
		h.HashID = doc.HashID
		h.SecureHashID = doc.SecureHashID
		key, err := crypt.DeriveKey(doc.Password, doc.HashID)
		if err != nil {
			return nil, err
		}
		if h.PasswordCheck, err = crypt.DerivePasswordCheck(doc.Password, doc.SecureHashID); err != nil {
			return nil, err
		}
		if h.Data, err = crypt.Encrypt(h.Data, key, doc.CipherID); err != nil {
			return nil, err
		}
	}

	c.logger.Debug().Int("inner", len(inner)).Int("stored", len(h.Data)).
		Int("compression", doc.CompressionLevel).Uint8("cipher", doc.CipherID).
		Msg("inner block packed")
	return writeHeader(h)
}

func checkSettings(doc *domain.Document) error {
	if !compression.ValidLevel(doc.CompressionLevel) {
		return fmt.Errorf("compression level %d: %w", doc.CompressionLevel, compression.ErrLevel)
	}
	if doc.CipherID == crypt.CipherNone {
		return nil
	}
	if !crypt.IsCipherSupported(doc.CipherID) {
		return fmt.Errorf("cipher %d: %w", doc.CipherID, ErrUnsupportedAlgorithm)
	}
	if !crypt.IsHashSupported(doc.HashID) {
		return fmt.Errorf("hash %d: %w", doc.HashID, ErrUnsupportedAlgorithm)
	}
	if !crypt.IsSecureHashSupported(doc.SecureHashID) {
		return fmt.Errorf("secure hash %d: %w", doc.SecureHashID, ErrUnsupportedAlgorithm)
	}
	if len(doc.Password) == 0 {
		return fmt.Errorf("password: %w", ErrInputEmpty)
	}
	return nil
}

// Decode parses file bytes into a new document. No document is returned
// unless every step succeeds.
func (c *Codec) Decode(file []byte) (*domain.Document, error) {
	h, err := ReadHeader(file)
	if err != nil {
		return nil, err
	}
	if err := c.checkVersion(h.Version); err != nil {
		return nil, err
	}
	if !compression.ValidLevel(int(h.CompressionLevel)) {
		return nil, malformed("compression level %d", h.CompressionLevel)
	}

	data := h.Data
	var password []byte
	if h.Encrypted() {
		if password, data, err = c.unlock(h); err != nil {
			return nil, err
		}
	}
	if h.CompressionLevel != compression.LevelStore {
		if data, err = compression.Decompress(data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
		}
	}

	doc, err := decodeInner(data, c.logger)
	if err != nil {
		return nil, err
	}
	doc.Version = h.Version
	doc.CompressionLevel = int(h.CompressionLevel)
	doc.CipherID = h.CipherID
	doc.HashID = h.HashID
	doc.SecureHashID = h.SecureHashID
	doc.Password = password
	return doc, nil
}

func (c *Codec) checkVersion(v domain.Version) error {
	switch {
	case v.Major > c.version.Major:
		return fmt.Errorf("%w: file %s, reader %s", ErrUnsupportedVersion, v, c.version)
	case v.Major == c.version.Major && v.Minor > c.version.Minor:
		c.logger.Warn().Str("file", v.String()).Str("reader", c.version.String()).
			Msg("file written by a newer minor version")
		if !c.policy.ConfirmOpenNewerMinorVersion() {
			return fmt.Errorf("%w: newer minor version %s declined", ErrAborted, v)
		}
	}
	return nil
}

// unlock prompts until a password matches the stored check value, then
// decrypts the inner block with the key derived from it.
func (c *Codec) unlock(h *Header) (password, plain []byte, err error) {
	if !crypt.IsCipherSupported(h.CipherID) {
		return nil, nil, fmt.Errorf("cipher %d: %w", h.CipherID, ErrUnsupportedAlgorithm)
	}
	if !crypt.IsHashSupported(h.HashID) {
		return nil, nil, fmt.Errorf("hash %d: %w", h.HashID, ErrUnsupportedAlgorithm)
	}
	if !crypt.IsSecureHashSupported(h.SecureHashID) {
		return nil, nil, fmt.Errorf("secure hash %d: %w", h.SecureHashID, ErrUnsupportedAlgorithm)
	}

	for attempt := 1; ; attempt++ {
		pw, cancelled := c.policy.PromptPassword()
		if cancelled {
			return nil, nil, fmt.Errorf("%w: password entry cancelled", ErrAborted)
		}
		ok, err := crypt.CheckPassword(pw, h.PasswordCheck, h.SecureHashID)
		if err != nil && !errors.Is(err, crypt.ErrInputEmpty) {
			return nil, nil, err
		}
		if ok {
			password = append([]byte(nil), pw...)
			break
		}
		c.logger.Debug().Int("attempt", attempt).Msg("wrong password")
		c.policy.WarnWrongPassword()
	}

	key, err := crypt.DeriveKey(password, h.HashID)
	if err != nil {
		return nil, nil, err
	}
	plain, err = crypt.Decrypt(h.Data, key, h.CipherID)
	if err != nil {
		if errors.Is(err, crypt.ErrInputEmpty) {
			return nil, nil, fmt.Errorf("%w: empty data block", ErrCipher)
		}
		return nil, nil, err
	}
	return password, plain, nil
}
