// Package container implements the ResQrypt on-disk header: a fixed 66-byte
// self-describing block that precedes the AEAD ciphertext and doubles as the
// AEAD's additional authenticated data.
package container

import (
	"encoding/binary"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

const (
	// HeaderSize is the fixed, total size of the encoded header in bytes.
	HeaderSize = 66

	// SaltSize is the size of the Argon2id salt field.
	SaltSize = 32
	// NonceSize is the size of the AES-256-GCM nonce field.
	NonceSize = 12
	// TagSize is the size of the AES-256-GCM authentication tag.
	TagSize = 16
)

// Magic is the fixed 8-byte ASCII identifier at offset 0.
var Magic = [8]byte{'R', 'E', 'S', 'Q', 'R', 'Y', 'P', 'T'}

// CurrentVersion is the only version this implementation understands.
const CurrentVersion byte = 0x01

// Flag bits within the single flags byte at offset 9. All other bits are
// reserved and must be zero.
const (
	FlagCompressed byte = 1 << 0
	FlagArchive    byte = 1 << 1

	knownFlagsMask = FlagCompressed | FlagArchive
)

// KDFParams holds the Argon2id tuning parameters recorded in the header.
type KDFParams struct {
	MemoryMiB   uint32
	Iterations  uint32
	Parallelism uint32
}

// Allowed ranges for Argon2id parameters decoded from an untrusted header,
// per the container format's resource-exhaustion guard.
const (
	MinMemoryMiB   = 8
	MaxMemoryMiB   = 4096
	MinIterations  = 1
	MaxIterations  = 20
	MinParallelism = 1
	MaxParallelism = 16
)

// DefaultKDFParams are the parameters used when the caller does not override
// them on encrypt.
var DefaultKDFParams = KDFParams{MemoryMiB: 64, Iterations: 3, Parallelism: 4}

// Validate reports ErrInvalidKdfParams if any field falls outside the
// allowed range. This MUST be called before the parameters are ever handed
// to Argon2id, whether they came from a flag or from a decoded header.
func (p KDFParams) Validate() error {
	if p.MemoryMiB < MinMemoryMiB || p.MemoryMiB > MaxMemoryMiB {
		return rqerrors.ErrInvalidKdfParams
	}
	if p.Iterations < MinIterations || p.Iterations > MaxIterations {
		return rqerrors.ErrInvalidKdfParams
	}
	if p.Parallelism < MinParallelism || p.Parallelism > MaxParallelism {
		return rqerrors.ErrInvalidKdfParams
	}
	return nil
}

// Header is the decoded form of the 66-byte container header.
type Header struct {
	Version byte
	Flags   byte
	KDF     KDFParams
	Salt    [SaltSize]byte
	Nonce   [NonceSize]byte
}

// Compressed reports whether the compressed-payload flag bit is set.
func (h Header) Compressed() bool { return h.Flags&FlagCompressed != 0 }

// Archive reports whether the archive (directory) flag bit is set.
func (h Header) Archive() bool { return h.Flags&FlagArchive != 0 }

// New builds a Header from the supplied flags, KDF params, salt and nonce.
func New(flags byte, kdf KDFParams, salt [SaltSize]byte, nonce [NonceSize]byte) Header {
	return Header{
		Version: CurrentVersion,
		Flags:   flags,
		KDF:     kdf,
		Salt:    salt,
		Nonce:   nonce,
	}
}

// Encode serializes the header into its fixed 66-byte wire form. Encoding is
// total: any Header value, however constructed, encodes successfully.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], Magic[:])
	buf[8] = h.Version
	buf[9] = h.Flags
	binary.LittleEndian.PutUint32(buf[10:14], h.KDF.MemoryMiB)
	binary.LittleEndian.PutUint32(buf[14:18], h.KDF.Iterations)
	binary.LittleEndian.PutUint32(buf[18:22], h.KDF.Parallelism)
	copy(buf[22:54], h.Salt[:])
	copy(buf[54:66], h.Nonce[:])
	return buf
}

// Decode parses a 66-byte header, validating magic, version, and reserved
// flag bits, in that order, before any KDF parameter is read. Decoding never
// touches bytes beyond offset 66 (the caller's ciphertext).
func Decode(buf []byte) (Header, error) {
	var h Header

	if len(buf) < HeaderSize {
		return h, rqerrors.ErrTruncated
	}

	for i := range Magic {
		if buf[i] != Magic[i] {
			return h, rqerrors.ErrBadMagic
		}
	}

	if buf[8] != CurrentVersion {
		return h, rqerrors.ErrUnsupportedVersion
	}
	h.Version = buf[8]

	flags := buf[9]
	if flags&^knownFlagsMask != 0 {
		return h, rqerrors.ErrReservedFlag
	}
	h.Flags = flags

	h.KDF.MemoryMiB = binary.LittleEndian.Uint32(buf[10:14])
	h.KDF.Iterations = binary.LittleEndian.Uint32(buf[14:18])
	h.KDF.Parallelism = binary.LittleEndian.Uint32(buf[18:22])

	copy(h.Salt[:], buf[22:54])
	copy(h.Nonce[:], buf[54:66])

	return h, nil
}
