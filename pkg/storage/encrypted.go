package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption errors.
var (
	ErrInvalidKeySize    = errors.New("storage: encryption key must be 32 bytes")
	ErrPassphraseTooWeak = errors.New("storage: passphrase too weak (minimum 8 characters)")
	ErrSaltTooShort      = errors.New("storage: salt too short (minimum 16 bytes)")
	ErrDecryptionFailed  = errors.New("storage: decryption failed - wrong key or corrupted data")
)

// CipherType identifies the AEAD algorithm.
type CipherType string

const (
	CipherAuto     CipherType = ""
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// Argon2id parameters for passphrase-derived keys.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32

	minPassphraseLen = 8
	minSaltLen       = 16
)

// EncryptionConfig configures an Encrypted adapter.
//
// Exactly one of Key or Passphrase is used; Key wins when both are set.
// Passphrase-derived keys need a stable Salt so the same key can be
// derived again on the next run.
type EncryptionConfig struct {
	Key        []byte
	Passphrase string
	Salt       []byte
	Cipher     CipherType
}

// DeriveKey derives a 32-byte key from passphrase and salt with Argon2id.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(passphrase) < minPassphraseLen {
		return nil, ErrPassphraseTooWeak
	}
	if len(salt) < minSaltLen {
		return nil, ErrSaltTooShort
	}
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen), nil
}

// Encrypted wraps an adapter and seals every stored value.
//
// Stored strings are base64(tag || nonce || ciphertext), where tag names the
// cipher that sealed the value. Values open with whichever cipher their tag
// names, so a store written under one cipher stays readable under another.
// The atom key is bound as additional data, so a value copied under another
// key fails to open.
type Encrypted struct {
	inner      Adapter
	aeads      map[byte]cipher.AEAD
	sealTag    byte
	cipherType CipherType
}

// Cipher tags prefixed to sealed values.
const (
	tagAESGCM   byte = 1
	tagChaCha20 byte = 2
)

func cipherTag(cipherType CipherType) (byte, bool) {
	switch cipherType {
	case CipherAESGCM:
		return tagAESGCM, true
	case CipherChaCha20:
		return tagChaCha20, true
	default:
		return 0, false
	}
}

// NewEncrypted wraps inner with authenticated encryption.
func NewEncrypted(inner Adapter, cfg EncryptionConfig) (*Encrypted, error) {
	if inner == nil {
		return nil, ErrNilAdapter
	}

	key := cfg.Key
	if len(key) == 0 {
		derived, err := DeriveKey(cfg.Passphrase, cfg.Salt)
		if err != nil {
			return nil, err
		}
		key = derived
	}
	if len(key) != 32 {
		return nil, ErrInvalidKeySize
	}

	cipherType := cfg.Cipher
	if cipherType == CipherAuto {
		cipherType = preferredCipher()
	}

	sealTag, ok := cipherTag(cipherType)
	if !ok {
		return nil, fmt.Errorf("storage: unknown cipher type %q", cipherType)
	}

	aeads := make(map[byte]cipher.AEAD, 2)
	for _, ct := range []CipherType{CipherAESGCM, CipherChaCha20} {
		aead, err := newAEAD(key, ct)
		if err != nil {
			return nil, err
		}
		tag, _ := cipherTag(ct)
		aeads[tag] = aead
	}

	return &Encrypted{
		inner:      inner,
		aeads:      aeads,
		sealTag:    sealTag,
		cipherType: cipherType,
	}, nil
}

// Cipher returns the algorithm in use.
func (e *Encrypted) Cipher() CipherType {
	return e.cipherType
}

// GetItem reads and opens the value stored under key.
func (e *Encrypted) GetItem(key string) (string, bool, error) {
	raw, ok, err := e.inner.GetItem(key)
	if err != nil || !ok {
		return "", ok, err
	}

	sealed, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	if len(sealed) == 0 {
		return "", false, ErrDecryptionFailed
	}
	aead, ok := e.aeads[sealed[0]]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown cipher tag %d", ErrDecryptionFailed, sealed[0])
	}
	sealed = sealed[1:]

	nonceSize := aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", false, ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(key))
	if err != nil {
		return "", false, ErrDecryptionFailed
	}

	return string(plaintext), true, nil
}

// SetItem seals value and writes it under key.
func (e *Encrypted) SetItem(key, value string) error {
	aead := e.aeads[e.sealTag]

	buf := make([]byte, 1+aead.NonceSize())
	buf[0] = e.sealTag
	nonce := buf[1:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("storage: generate nonce: %w", err)
	}

	sealed := aead.Seal(buf, nonce, []byte(value), []byte(key))
	return e.inner.SetItem(key, base64.StdEncoding.EncodeToString(sealed))
}

// RemoveItem deletes key from the inner adapter.
func (e *Encrypted) RemoveItem(key string) error {
	return Remove(e.inner, key)
}

// Keys lists keys of the inner adapter. Keys are stored in the clear.
func (e *Encrypted) Keys(prefix string) ([]string, error) {
	return Keys(e.inner, prefix)
}

// newAEAD creates the AEAD for cipherType.
func newAEAD(key []byte, cipherType CipherType) (cipher.AEAD, error) {
	switch cipherType {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("storage: aes: %w", err)
		}
		return cipher.NewGCM(block)
	case CipherChaCha20:
		if len(key) != chacha20poly1305.KeySize {
			return nil, ErrInvalidKeySize
		}
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("storage: unknown cipher type %q", cipherType)
	}
}

// preferredCipher picks AES-GCM where Go uses hardware AES, ChaCha20 elsewhere.
func preferredCipher() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}
