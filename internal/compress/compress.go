// Package compress implements the container format's smart-skip zstd
// compression layer.
package compress

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

// zstdMagic is the 4-byte frame magic at the start of every zstd stream.
var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

// level is the fixed compression level used for all encodes. It is never
// recorded in the container header because decompression does not need it.
const level = zstd.SpeedDefault

// MaybeCompress compresses data with zstd unless it already begins with the
// zstd frame magic, in which case it returns data unchanged. The returned
// bool reports whether compression was applied (the header's compressed
// flag).
func MaybeCompress(data []byte) ([]byte, bool, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], zstdMagic[:]) {
		return data, false, nil
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, false, fmt.Errorf("compress: new encoder: %w", err)
	}
	defer enc.Close()

	compressed := enc.EncodeAll(data, make([]byte, 0, len(data)))
	return compressed, true, nil
}

// Decompress reverses MaybeCompress. It is only ever called on data that has
// already passed AEAD authentication, so a malformed frame here indicates an
// internal format problem rather than tampering.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: new decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rqerrors.ErrCorruptCompressedStream, err)
	}
	return out, nil
}
