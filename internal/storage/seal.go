package storage

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealing errors.
var (
	ErrPassphraseTooWeak = errors.New("storage: passphrase too weak (minimum 8 characters)")
	ErrNotSealed         = errors.New("storage: data is not a sealed credential")
	ErrOpenFailed        = errors.New("storage: open failed - wrong passphrase or corrupted data")
)

const (
	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	saltLength = 16

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// sealMagic prefixes every sealed payload and is bound as additional data.
var sealMagic = []byte("ECS1")

// Sealer encrypts the token at rest with a key derived from a passphrase.
//
// Layout: magic(4) | salt(16) | nonce(24) | ciphertext+tag.
// A fresh salt and nonce are drawn on every Seal.
type Sealer struct {
	passphrase []byte
}

// NewSealer creates a sealer for passphrase.
func NewSealer(passphrase []byte) (*Sealer, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}
	p := make([]byte, len(passphrase))
	copy(p, passphrase)
	return &Sealer{passphrase: p}, nil
}

// Seal encrypts plaintext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("storage: seal: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("storage: seal: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+saltLength+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, sealMagic), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	header := len(sealMagic) + saltLength + chacha20poly1305.NonceSizeX
	if len(data) < header || !bytes.Equal(data[:len(sealMagic)], sealMagic) {
		return nil, ErrNotSealed
	}

	salt := data[len(sealMagic) : len(sealMagic)+saltLength]
	nonce := data[len(sealMagic)+saltLength : header]

	aead, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, data[header:], sealMagic)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plaintext, nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(s.passphrase, salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("storage: init cipher: %w", err)
	}
	return aead, nil
}

// IsSealed reports whether data carries the sealed-credential header.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealMagic)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
