// Package keyfile derives supplemental key material from zero or more
// keyfile paths. The derived material is mixed into the password bytes
// before Argon2id, rather than verified separately, so that a wrong keyfile
// fails the same authentication oracle as a wrong password.
package keyfile

import (
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	"github.com/CXPhoenix/ResQrypt/internal/crypto"
	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

// Size is the length, in bytes, of the derived keyfile key.
const Size = 32

// Derive reads every path in order and returns a 32-byte SHA3-256 digest of
// their concatenated contents. With zero paths, it returns nil (no keyfile
// material to mix in).
func Derive(paths []string) ([]byte, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	h := sha3.New256()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, rqerrors.NewFileError("open", p, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return nil, rqerrors.NewFileError("read", p, err)
		}
	}
	sum := h.Sum(nil)
	crypto.SecureZeroHash(h)
	return sum, nil
}
