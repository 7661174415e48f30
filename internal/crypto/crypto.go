package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 16     // Salt size in bytes
	KeySize    = 32     // AES-256 key size
	NonceSize  = 12     // GCM nonce size
	TagSize    = 16     // GCM authentication tag size
	Iterations = 100000 // PBKDF2 iterations
)

var (
	ErrInvalidKey        = errors.New("invalid key size")
	ErrInvalidNonce      = errors.New("invalid nonce size")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
)

// NewSalt returns a fresh random salt
func NewSalt() ([]byte, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an AES-256 key from a password and salt using PBKDF2-HMAC-SHA256.
// The same password and salt always produce the same key.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, Iterations, KeySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext using AES-256-GCM under a freshly generated nonce.
// The returned ciphertext carries the authentication tag.
func Seal(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = GenerateRandom(NonceSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return nonce, sealWithNonce(gcm, nonce, plaintext), nil
}

// sealWithNonce encrypts without associated data
func sealWithNonce(gcm cipher.AEAD, nonce, plaintext []byte) []byte {
	return gcm.Seal(nil, nonce, plaintext, nil)
}

// Open decrypts and verifies ciphertext produced by Seal.
// No plaintext is returned unless the tag verifies.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonce
	}
	if len(ciphertext) < TagSize {
		return nil, ErrInvalidCiphertext
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
