package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// AEAD wraps an AES-256-GCM instance over a single key. Construct one per
// seal/open, then Close() to zero the key.
//
// CRITICAL: nonce must never repeat for the same key. ResQrypt satisfies
// this trivially: every encryption derives a fresh key from a fresh salt.
type AEAD struct {
	gcm cipher.AEAD
	key []byte
}

// NewAEAD builds an AES-256-GCM AEAD instance over key (must be 32 bytes).
func NewAEAD(key []byte) (*AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &AEAD{gcm: gcm, key: key}, nil
}

// Seal encrypts plaintext with nonce and binds aad, returning
// ciphertext ‖ 16-byte tag.
func (a *AEAD) Seal(nonce, aad, plaintext []byte) []byte {
	return a.gcm.Seal(nil, nonce, plaintext, aad)
}

// Open authenticates aad and decrypts ciphertextWithTag, returning the
// plaintext. Any tag mismatch returns a generic error — the caller (the
// pipeline orchestrator) is responsible for mapping that into
// errors.ErrAuthenticationFailed without further detail, per the
// container format's single-oracle design.
func (a *AEAD) Open(nonce, aad, ciphertextWithTag []byte) ([]byte, error) {
	return a.gcm.Open(nil, nonce, ciphertextWithTag, aad)
}

// NonceSize returns the nonce length the underlying GCM instance expects.
func (a *AEAD) NonceSize() int { return a.gcm.NonceSize() }

// Close securely zeros the AEAD's key material.
func (a *AEAD) Close() {
	if a == nil {
		return
	}
	SecureZero(a.key)
	a.key = nil
	a.gcm = nil
}
