package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CXPhoenix/ResQrypt/internal/archive"
	"github.com/CXPhoenix/ResQrypt/internal/compress"
	"github.com/CXPhoenix/ResQrypt/internal/container"
	"github.com/CXPhoenix/ResQrypt/internal/crypto"
	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
	"github.com/CXPhoenix/ResQrypt/internal/keyfile"
	"github.com/CXPhoenix/ResQrypt/internal/log"
)

// Decrypt reverses Encrypt: read the container, validate its header,
// re-derive the key, open the AEAD, decompress and unarchive as the header
// flags indicate, and write the result to req.OutputPath.
func Decrypt(ctx context.Context, req *DecryptRequest) error {
	start := time.Now()
	reporter := reporterOrNull(req.Reporter)
	reporter.SetCanCancel(true)

	reporter.SetStatus("reading container")
	raw, err := os.ReadFile(req.InputPath)
	if err != nil {
		return rqerrors.NewFileError("read", req.InputPath, err)
	}
	if len(raw) < container.HeaderSize+container.TagSize {
		return rqerrors.ErrTruncated
	}

	hdr, err := container.Decode(raw[:container.HeaderSize])
	if err != nil {
		return err
	}
	if err := hdr.KDF.Validate(); err != nil {
		return err
	}

	if reporter.IsCancelled() {
		return context.Canceled
	}

	reporter.SetStatus("deriving key")
	cc := &crypto.CryptoContext{}
	defer cc.Close()

	keyfileKey, err := keyfile.Derive(req.Keyfiles)
	if err != nil {
		return err
	}
	cc.KeyfileKey = crypto.NewKeyMaterial(keyfileKey)
	crypto.SecureZero(keyfileKey)
	passwordMaterial := combinePasswordMaterial(req.Password, cc.KeyfileKey.Bytes())

	derivedKey, err := crypto.DeriveKey(passwordMaterial, hdr.Salt[:], hdr.KDF)
	crypto.SecureZero(passwordMaterial)
	if err != nil {
		return err
	}
	cc.Key = crypto.NewKeyMaterial(derivedKey)
	crypto.SecureZero(derivedKey)

	aead, err := crypto.NewAEAD(cc.Key.Bytes())
	if err != nil {
		return err
	}
	defer aead.Close()

	reporter.SetStatus("authenticating")
	headerBytes := raw[:container.HeaderSize]
	ciphertext := raw[container.HeaderSize:]
	totalBytes := int64(len(raw))
	plaintext, err := aead.Open(hdr.Nonce[:], headerBytes, ciphertext)
	if err != nil {
		return rqerrors.ErrAuthenticationFailed
	}
	reporter.SetProgress(int64(len(plaintext)), totalBytes)

	if hdr.Compressed() {
		reporter.SetStatus("decompressing")
		decompressed, err := compress.Decompress(plaintext)
		crypto.SecureZero(plaintext)
		if err != nil {
			return err
		}
		plaintext = decompressed
	}
	defer crypto.SecureZero(plaintext)

	if reporter.IsCancelled() {
		return context.Canceled
	}

	if err := checkOutputTypeCompatible(req.OutputPath, hdr.Archive()); err != nil {
		return err
	}

	reporter.SetStatus("writing output")
	if hdr.Archive() {
		if err := archive.Unpack(plaintext, req.OutputPath); err != nil {
			return err
		}
	} else {
		if err := checkOutputPath(req.OutputPath, req.ForceOverwrite); err != nil {
			return err
		}
		if err := writeAtomic(req.OutputPath, plaintext); err != nil {
			return err
		}
	}

	reporter.SetProgress(totalBytes, totalBytes)
	log.Info("decrypt complete",
		log.String("output", req.OutputPath),
		log.Int("bytes", len(plaintext)),
		log.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// checkOutputTypeCompatible rejects the case where the container's archive
// flag and the existing output path's type disagree: an archive container
// must unpack into a directory (or non-existent path, created as one), and
// a file container must not target an existing directory.
func checkOutputTypeCompatible(path string, isArchive bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil // does not exist yet; either case is fine, handled downstream
	}
	if isArchive && !info.IsDir() {
		return fmt.Errorf("%w: output %s exists and is not a directory", rqerrors.ErrIO, path)
	}
	if !isArchive && info.IsDir() {
		return fmt.Errorf("%w: output %s exists and is a directory", rqerrors.ErrIO, path)
	}
	return nil
}
