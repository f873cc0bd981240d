// Package sealing encrypts values at rest for the file-backed secure store
// adapters. Values are sealed with AES-256-GCM; the key is either supplied
// directly or derived from a passphrase with argon2id.
package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// SaltSize is the argon2id salt length in bytes.
	SaltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Sealer encrypts and decrypts values. The zero value and a Sealer built
// with a nil key refuse every operation with driven.ErrEncryptionKeyNotSet.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer for key. key must be KeySize bytes, or nil to
// create a Sealer that reports driven.ErrEncryptionKeyNotSet.
func NewSealer(key []byte) (*Sealer, error) {
	if key == nil {
		return &Sealer{}, nil
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("sealing key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// Enabled reports whether the Sealer holds a key.
func (s *Sealer) Enabled() bool {
	return s != nil && s.aead != nil
}

// Seal encrypts plaintext and returns a base64-encoded string containing the
// nonce prepended to the ciphertext.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if !s.Enabled() {
		return "", driven.ErrEncryptionKeyNotSet
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(encoded string) (string, error) {
	if !s.Enabled() {
		return "", driven.ErrEncryptionKeyNotSet
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}

// NewSalt returns SaltSize random bytes for DeriveKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("rand salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches passphrase into a KeySize key with argon2id.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, driven.ErrEncryptionKeyNotSet
	}
	if len(salt) < SaltSize {
		return nil, fmt.Errorf("salt must be at least %d bytes, got %d", SaltSize, len(salt))
	}
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize), nil
}

// ResolveKey picks the sealing key: secretKey when set, otherwise a key
// derived from passphrase. salt is called only when a derivation is needed.
// It returns nil, nil when neither is configured.
func ResolveKey(secretKey []byte, passphrase string, salt func() ([]byte, error)) ([]byte, error) {
	if secretKey != nil {
		return secretKey, nil
	}
	if passphrase == "" {
		return nil, nil
	}
	s, err := salt()
	if err != nil {
		return nil, fmt.Errorf("load key salt: %w", err)
	}
	return DeriveKey(passphrase, s)
}
