// Package crypto provides cryptographic primitives for ResQrypt containers.
// This is AUDIT-CRITICAL code - changes here directly affect encryption/decryption.
package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/CXPhoenix/ResQrypt/internal/container"
)

// RandomBytes generates n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("fatal crypto/rand error: %w", err)
	}

	// Sanity check: bytes should not be all zeros
	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, errors.New("fatal crypto/rand error: produced zero bytes")
	}

	return b, nil
}

// KeySize is the output length of DeriveKey, and of the AEAD key it feeds.
const KeySize = 32

// DeriveKey derives a 32-byte key from password bytes and a salt using
// Argon2id, tuned by params. Callers MUST validate params (container.
// KDFParams.Validate) before calling DeriveKey — this function does not
// re-check ranges, so that a single validation point guards both the
// encrypt and decrypt paths against a malicious or malformed header.
func DeriveKey(password, salt []byte, params container.KDFParams) ([]byte, error) {
	key := argon2.IDKey(
		password,
		salt,
		params.Iterations,
		params.MemoryMiB*1024, // argon2 takes memory in KiB
		uint8(params.Parallelism),
		KeySize,
	)

	// Sanity check: key should not be all zeros
	if bytes.Equal(key, make([]byte, KeySize)) {
		return nil, errors.New("fatal crypto/argon2 error: produced zero key")
	}

	return key, nil
}
