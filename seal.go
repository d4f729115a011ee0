package crate

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealing errors.
var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Sealer encrypts system-fields archives so that identity metadata held by
// untrusted callers cannot be read or forged.
type Sealer interface {
	// Algo names the algorithm for the archive header.
	Algo() SealAlgo

	// Seal encrypts plaintext and returns ciphertext.
	Seal(plaintext []byte) ([]byte, error)

	// Open decrypts ciphertext and returns plaintext.
	Open(ciphertext []byte) ([]byte, error)
}

// aeadSealer seals with any AEAD, prepending a random nonce.
type aeadSealer struct {
	algo SealAlgo
	aead cipher.AEAD
}

// AES returns an AES-GCM sealer.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Sealer, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &aeadSealer{algo: SealAES, aead: gcm}, nil
}

// XChaCha20 returns an XChaCha20-Poly1305 sealer. Key must be 32 bytes.
func XChaCha20(key []byte) (Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidKeySize, chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	return &aeadSealer{algo: SealXChaCha20, aead: aead}, nil
}

func (s *aeadSealer) Algo() SealAlgo { return s.algo }

func (s *aeadSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *aeadSealer) Open(ciphertext []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextShort
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}
