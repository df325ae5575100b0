package pipeline

import (
	"context"
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

// Encrypt runs the full encrypt pipeline described by req: materialize the
// input (archiving a directory if needed), compress, derive a key, seal,
// and write the container atomically to req.OutputPath.
func Encrypt(ctx context.Context, req *EncryptRequest) error {
	start := time.Now()
	reporter := reporterOrNull(req.Reporter)
	reporter.SetCanCancel(true)

	if err := checkOutputPath(req.OutputPath, req.ForceOverwrite); err != nil {
		return err
	}

	info, err := os.Stat(req.InputPath)
	if err != nil {
		return rqerrors.NewFileError("stat", req.InputPath, err)
	}

	reporter.SetStatus("reading input")
	var plaintext []byte
	var flags byte
	if info.IsDir() {
		flags |= container.FlagArchive
		plaintext, err = archive.Pack(req.InputPath)
		if err != nil {
			return err
		}
	} else {
		plaintext, err = os.ReadFile(req.InputPath)
		if err != nil {
			return rqerrors.NewFileError("read", req.InputPath, err)
		}
	}
	log.Debug("materialized input", log.String("path", req.InputPath), log.Int("bytes", len(plaintext)))

	if reporter.IsCancelled() {
		crypto.SecureZero(plaintext)
		return context.Canceled
	}

	reporter.SetStatus("compressing")
	compressed, didCompress, err := compress.MaybeCompress(plaintext)
	if err != nil {
		crypto.SecureZero(plaintext)
		return err
	}
	totalBytes := int64(len(plaintext))
	if didCompress {
		flags |= container.FlagCompressed
		// compressed is a freshly allocated buffer; plaintext is now stale.
		crypto.SecureZero(plaintext)
	}
	reporter.SetProgress(int64(len(compressed)), totalBytes)

	kdfParams := req.KDFParams
	if kdfParams == (container.KDFParams{}) {
		kdfParams = container.DefaultKDFParams
	}
	if err := kdfParams.Validate(); err != nil {
		crypto.SecureZero(compressed)
		return err
	}

	salt, err := crypto.RandomBytes(container.SaltSize)
	if err != nil {
		crypto.SecureZero(compressed)
		return err
	}
	nonce, err := crypto.RandomBytes(container.NonceSize)
	if err != nil {
		crypto.SecureZero(compressed)
		return err
	}

	reporter.SetStatus("deriving key")
	cc := &crypto.CryptoContext{}
	defer cc.Close()

	keyfileKey, err := keyfile.Derive(req.Keyfiles)
	if err != nil {
		crypto.SecureZero(compressed)
		return err
	}
	cc.KeyfileKey = crypto.NewKeyMaterial(keyfileKey)
	crypto.SecureZero(keyfileKey)
	passwordMaterial := combinePasswordMaterial(req.Password, cc.KeyfileKey.Bytes())

	derivedKey, err := crypto.DeriveKey(passwordMaterial, salt, kdfParams)
	crypto.SecureZero(passwordMaterial)
	if err != nil {
		crypto.SecureZero(compressed)
		return err
	}
	cc.Key = crypto.NewKeyMaterial(derivedKey)
	crypto.SecureZero(derivedKey)

	var saltArr [container.SaltSize]byte
	var nonceArr [container.NonceSize]byte
	copy(saltArr[:], salt)
	copy(nonceArr[:], nonce)
	crypto.SecureZeroMultiple(salt, nonce)

	hdr := container.New(flags, kdfParams, saltArr, nonceArr)
	headerBytes := hdr.Encode()

	aead, err := crypto.NewAEAD(cc.Key.Bytes())
	if err != nil {
		crypto.SecureZero(compressed)
		return err
	}
	defer aead.Close()

	reporter.SetStatus("sealing")
	ciphertext := aead.Seal(nonceArr[:], headerBytes, compressed)
	crypto.SecureZero(compressed)

	out := make([]byte, 0, len(headerBytes)+len(ciphertext))
	out = append(out, headerBytes...)
	out = append(out, ciphertext...)

	reporter.SetStatus("writing output")
	if err := writeAtomic(req.OutputPath, out); err != nil {
		return err
	}

	reporter.SetProgress(totalBytes, totalBytes)
	log.Info("encrypt complete",
		log.String("output", req.OutputPath),
		log.Int("bytes", len(out)),
		log.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// combinePasswordMaterial appends keyfile-derived material, if any, after
// the raw password bytes so a wrong keyfile and a wrong password fail the
// same AuthenticationFailed oracle.
func combinePasswordMaterial(password string, keyfileKey []byte) []byte {
	buf := make([]byte, 0, len(password)+len(keyfileKey))
	buf = append(buf, []byte(password)...)
	buf = append(buf, keyfileKey...)
	return buf
}
