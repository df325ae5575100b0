// Package archive packs a directory tree into a POSIX tar byte stream and
// unpacks it back, with path-traversal protection on the unpack side.
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

// Pack walks dir and writes every regular file, directory, and symlink under
// it into a tar stream, with paths relative to dir. Empty directories are
// preserved via their own tar header entries.
func Pack(dir string) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			link, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = rel

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := io.Copy(tw, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, rqerrors.Wrap(err, "archive: pack")
	}

	if err := tw.Close(); err != nil {
		return nil, rqerrors.Wrap(err, "archive: pack: close")
	}
	return buf.Bytes(), nil
}

// Unpack materializes the tar stream in data under destDir, creating destDir
// if it does not already exist. Every entry path is resolved against destDir
// and verified to remain under it before any file-system operation touches
// it; absolute paths and parent-escaping components are rejected with
// ErrUnsafeArchive.
func Unpack(data []byte, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return rqerrors.NewFileError("mkdir", destDir, err)
	}

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return rqerrors.Wrap(err, "archive: unpack")
	}

	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rqerrors.Wrap(err, "archive: unpack: read entry")
		}

		target, err := safeJoin(absDest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)|0o700); err != nil {
				return rqerrors.NewFileError("mkdir", target, err)
			}
		case tar.TypeSymlink:
			if err := checkSymlinkTarget(absDest, target, hdr.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return rqerrors.NewFileError("mkdir", filepath.Dir(target), err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return rqerrors.NewFileError("symlink", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return rqerrors.NewFileError("mkdir", filepath.Dir(target), err)
			}
			if err := writeRegularFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		default:
			// Skip device files, fifos, and anything else a hostile or
			// unusual archive might contain; they are not part of a
			// directory's logical file set.
		}
	}
	return nil
}

func writeRegularFile(target string, r io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return rqerrors.NewFileError("create", target, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return rqerrors.NewFileError("write", target, err)
	}
	return nil
}

// checkSymlinkTarget rejects a symlink entry whose target would resolve
// outside destDir, so a link can't be used to redirect a later entry's
// write to an arbitrary filesystem location. linkPath is the symlink's own
// (already-contained) path; linkname is its raw, unresolved target text.
func checkSymlinkTarget(destDir, linkPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: symlink %q has absolute target %q", rqerrors.ErrUnsafeArchive, linkPath, linkname)
	}

	resolved := filepath.Join(filepath.Dir(linkPath), linkname)
	rel, err := filepath.Rel(destDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: symlink %q target %q escapes destination", rqerrors.ErrUnsafeArchive, linkPath, linkname)
	}
	return nil
}

// safeJoin resolves name against destDir and verifies the result remains
// under destDir, rejecting absolute paths and ".."-escaping components.
func safeJoin(destDir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(filepath.ToSlash(name), "/") {
		return "", fmt.Errorf("%w: absolute path %q", rqerrors.ErrUnsafeArchive, name)
	}

	cleaned := filepath.Clean(name)
	for _, part := range strings.Split(filepath.ToSlash(cleaned), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: parent-escaping path %q", rqerrors.ErrUnsafeArchive, name)
		}
	}

	target := filepath.Join(destDir, cleaned)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes destination", rqerrors.ErrUnsafeArchive, name)
	}
	return target, nil
}
